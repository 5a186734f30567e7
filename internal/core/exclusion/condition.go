package exclusion

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"bat-ads/internal/core/domain"
)

// Conditions compiles and caches creative condition expressions. An
// expression is CEL evaluating to bool over:
//
//	segments    list(string)
//	subdivision string
//	country     string
//	hour        int, local hour of day
//	weekday     int, 0 is Sunday
type Conditions struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewConditions builds the expression environment.
func NewConditions() (*Conditions, error) {
	env, err := cel.NewEnv(
		cel.Variable("segments", cel.ListType(cel.StringType)),
		cel.Variable("subdivision", cel.StringType),
		cel.Variable("country", cel.StringType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("weekday", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("condition env: %w", err)
	}
	return &Conditions{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks expr and caches its program.
func (c *Conditions) Compile(expr string) (cel.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[expr]; ok {
		return p, nil
	}
	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile condition: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("condition %q is %s, want bool", expr, ast.OutputType())
	}
	p, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program condition: %w", err)
	}
	c.programs[expr] = p
	return p, nil
}

type conditionRule struct {
	conditions *Conditions
	vars       map[string]any
}

// NewConditionMatcherRule excludes creatives whose condition does not hold
// for the user. Creatives with a condition that fails to compile or evaluate
// are excluded.
func NewConditionMatcherRule(conditions *Conditions, h History, signals domain.UserSignals) Rule {
	now := h.Now()
	segments := signals.Segments
	if segments == nil {
		segments = []string{}
	}
	return &conditionRule{
		conditions: conditions,
		vars: map[string]any{
			"segments":    segments,
			"subdivision": signals.Subdivision,
			"country":     signals.Country(),
			"hour":        int64(now.Hour()),
			"weekday":     int64(now.Weekday()),
		},
	}
}

func (r *conditionRule) Name() string { return "condition_matcher" }

func (r *conditionRule) UUID(c domain.CreativeAd) string { return c.CreativeInstanceID }

func (r *conditionRule) ShouldInclude(c domain.CreativeAd) error {
	if c.Condition == "" {
		return nil
	}
	if r.conditions == nil {
		return excluded(r, c, "conditions unavailable")
	}
	p, err := r.conditions.Compile(c.Condition)
	if err != nil {
		return excluded(r, c, "invalid condition: %v", err)
	}
	out, _, err := p.Eval(r.vars)
	if err != nil {
		return excluded(r, c, "condition failed: %v", err)
	}
	if ok, _ := out.Value().(bool); !ok {
		return excluded(r, c, "condition not met")
	}
	return nil
}
