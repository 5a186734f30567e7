package exclusion

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

type splitTestGroupRule struct {
	group string
}

// NewSplitTestGroupRule excludes creatives bound to a study group other than
// the active one.
func NewSplitTestGroupRule(signals domain.UserSignals) Rule {
	return &splitTestGroupRule{group: signals.SplitTestGroup}
}

func (r *splitTestGroupRule) Name() string { return "split_test_group" }

func (r *splitTestGroupRule) UUID(c domain.CreativeAd) string { return c.CreativeSetID }

func (r *splitTestGroupRule) verdictKey(c domain.CreativeAd) string {
	return c.CreativeSetID + "#" + c.SplitTestGroup
}

func (r *splitTestGroupRule) ShouldInclude(c domain.CreativeAd) error {
	if c.SplitTestGroup == "" || c.SplitTestGroup == r.group {
		return nil
	}
	return excluded(r, c, "requires split test group %q", c.SplitTestGroup)
}

type antiTargetingRule struct {
	resource port.AntiTargetingResource
	visited  map[string]struct{}
}

// NewAntiTargetingRule excludes creative sets anti-targeted at a site the
// user visited. Sites are compared by registrable domain.
func NewAntiTargetingRule(resource port.AntiTargetingResource, signals domain.UserSignals) Rule {
	visited := make(map[string]struct{}, len(signals.VisitedSites))
	for _, s := range signals.VisitedSites {
		if d, ok := RegistrableDomain(s); ok {
			visited[d] = struct{}{}
		}
	}
	return &antiTargetingRule{resource: resource, visited: visited}
}

func (r *antiTargetingRule) Name() string { return "anti_targeting" }

func (r *antiTargetingRule) UUID(c domain.CreativeAd) string { return c.CreativeSetID }

func (r *antiTargetingRule) ShouldInclude(c domain.CreativeAd) error {
	if r.resource == nil || len(r.visited) == 0 {
		return nil
	}
	for _, site := range r.resource.SitesForCreativeSet(c.CreativeSetID) {
		d, ok := RegistrableDomain(site)
		if !ok {
			continue
		}
		if _, hit := r.visited[d]; hit {
			return excluded(r, c, "visited anti-targeted site %s", d)
		}
	}
	return nil
}

// RegistrableDomain reduces a URL or host to its registrable domain, e.g.
// "https://news.example.co.uk/a" to "example.co.uk".
func RegistrableDomain(site string) (string, bool) {
	site = strings.TrimSpace(strings.ToLower(site))
	if site == "" {
		return "", false
	}
	if !strings.Contains(site, "://") {
		site = "http://" + site
	}
	u, err := url.Parse(site)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host := u.Hostname()
	if !strings.Contains(host, ".") {
		return "", false
	}
	d, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return d, true
}

type subdivisionTargetingRule struct {
	subdivision string
	country     string
}

// NewSubdivisionTargetingRule excludes geo targeted creatives whose targets
// miss the user's subdivision and country. A user with no known region sees
// only untargeted creatives.
func NewSubdivisionTargetingRule(signals domain.UserSignals) Rule {
	return &subdivisionTargetingRule{
		subdivision: strings.ToUpper(signals.Subdivision),
		country:     strings.ToUpper(signals.Country()),
	}
}

func (r *subdivisionTargetingRule) Name() string { return "subdivision_targeting" }

func (r *subdivisionTargetingRule) UUID(c domain.CreativeAd) string { return c.CreativeSetID }

func (r *subdivisionTargetingRule) verdictKey(c domain.CreativeAd) string {
	return c.CreativeSetID + "#" + strings.ToUpper(strings.Join(c.GeoTargets, ","))
}

func (r *subdivisionTargetingRule) ShouldInclude(c domain.CreativeAd) error {
	if len(c.GeoTargets) == 0 {
		return nil
	}
	if r.subdivision == "" {
		return excluded(r, c, "region unknown")
	}
	for _, g := range c.GeoTargets {
		g = strings.ToUpper(g)
		if g == r.subdivision || g == r.country {
			return nil
		}
	}
	return excluded(r, c, "not targeted at %s", r.subdivision)
}

type daypartRule struct {
	history History
}

// NewDaypartRule excludes creatives outside all of their dayparts at the
// evaluation time, in its location.
func NewDaypartRule(h History) Rule {
	return &daypartRule{history: h}
}

func (r *daypartRule) Name() string { return "daypart" }

func (r *daypartRule) UUID(c domain.CreativeAd) string { return c.CreativeInstanceID }

func (r *daypartRule) ShouldInclude(c domain.CreativeAd) error {
	if len(c.Dayparts) == 0 {
		return nil
	}
	now := r.history.Now()
	for _, d := range c.Dayparts {
		if d.Contains(now) {
			return nil
		}
	}
	return excluded(r, c, "outside dayparts at %s", now.Format("Mon 15:04"))
}
