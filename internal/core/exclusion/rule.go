// Package exclusion holds the predicates that decide whether a creative may
// be served. Rules read a History snapshot and never write to it.
package exclusion

import (
	"fmt"
	"sort"
	"time"

	"bat-ads/internal/core/domain"
)

// Rule is one exclusion predicate. UUID returns the key the rule evaluates
// on, so creatives sharing it share the verdict.
type Rule interface {
	Name() string
	UUID(creative domain.CreativeAd) string
	ShouldInclude(creative domain.CreativeAd) error
}

// verdictKeyer is implemented by rules whose verdict depends on creative
// fields beyond their UUID. Creatives share a cached verdict only when their
// verdict keys match.
type verdictKeyer interface {
	verdictKey(creative domain.CreativeAd) string
}

func verdictKey(r Rule, c domain.CreativeAd) string {
	if k, ok := r.(verdictKeyer); ok {
		return k.verdictKey(c)
	}
	return r.UUID(c)
}

// ExcludedError is the reason a rule excluded a creative.
type ExcludedError struct {
	Rule   string
	UUID   string
	Reason string
}

func (e *ExcludedError) Error() string {
	return fmt.Sprintf("%s excluded %s: %s", e.Rule, e.UUID, e.Reason)
}

func excluded(r Rule, c domain.CreativeAd, format string, args ...any) error {
	return &ExcludedError{Rule: r.Name(), UUID: r.UUID(c), Reason: fmt.Sprintf(format, args...)}
}

// History is an immutable view of the ad event history at one instant.
type History struct {
	events []domain.AdEvent
	now    time.Time
}

// NewHistory copies events and orders them oldest first.
func NewHistory(events []domain.AdEvent, now time.Time) History {
	cp := make([]domain.AdEvent, len(events))
	copy(cp, events)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].CreatedAt.Before(cp[j].CreatedAt) })
	return History{events: cp, now: now}
}

// Now is the evaluation time.
func (h History) Now() time.Time { return h.now }

// Len is the number of events.
func (h History) Len() int { return len(h.events) }

// Count returns how many events created within window before now satisfy
// match. A zero window counts the whole history. Events from the future are
// ignored.
func (h History) Count(window time.Duration, match func(domain.AdEvent) bool) int {
	n := 0
	for _, e := range h.events {
		if !h.inWindow(e, window) {
			continue
		}
		if match(e) {
			n++
		}
	}
	return n
}

// Any reports whether some event within window satisfies match.
func (h History) Any(window time.Duration, match func(domain.AdEvent) bool) bool {
	for i := len(h.events) - 1; i >= 0; i-- {
		e := h.events[i]
		if h.inWindow(e, window) && match(e) {
			return true
		}
	}
	return false
}

func (h History) inWindow(e domain.AdEvent, window time.Duration) bool {
	if e.CreatedAt.After(h.now) {
		return false
	}
	return window == 0 || h.now.Sub(e.CreatedAt) < window
}

// RuleSet combines rules with logical AND.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet returns a set evaluating rules in order.
func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Apply returns the candidates every rule includes, preserving order, and
// the first exclusion reason of each dropped candidate. Each rule is
// evaluated once per verdict key, so the result does not depend on
// candidate order.
func (rs *RuleSet) Apply(candidates []domain.CreativeAd) ([]domain.CreativeAd, []*ExcludedError) {
	verdicts := make([]map[string]error, len(rs.rules))
	for i := range verdicts {
		verdicts[i] = make(map[string]error)
	}

	var (
		eligible []domain.CreativeAd
		reasons  []*ExcludedError
	)
	for _, c := range candidates {
		var reason error
		for i, r := range rs.rules {
			key := verdictKey(r, c)
			err, seen := verdicts[i][key]
			if !seen {
				err = r.ShouldInclude(c)
				verdicts[i][key] = err
			}
			if err != nil {
				reason = err
				break
			}
		}
		if reason == nil {
			eligible = append(eligible, c)
			continue
		}
		ex, ok := reason.(*ExcludedError)
		if !ok {
			ex = &ExcludedError{UUID: c.CreativeInstanceID, Reason: reason.Error()}
		}
		reasons = append(reasons, ex)
	}
	return eligible, reasons
}
