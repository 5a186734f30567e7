package exclusion

import (
	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

// Resources are the out-of-band inputs some rules read.
type Resources struct {
	AntiTargeting port.AntiTargetingResource
	Conditions    *Conditions
}

// DefaultRules returns the full rule set for one serve request. Cheap
// targeting checks run before history scans.
func DefaultRules(h History, signals domain.UserSignals, res Resources) *RuleSet {
	return NewRuleSet(
		NewSplitTestGroupRule(signals),
		NewSubdivisionTargetingRule(signals),
		NewDaypartRule(h),
		NewConditionMatcherRule(res.Conditions, h, signals),
		NewAntiTargetingRule(res.AntiTargeting, signals),
		NewConversionRule(h),
		NewMarkedAsInappropriateRule(h),
		NewMarkedToNoLongerReceiveRule(h),
		NewDismissedRule(h),
		NewTransferredRule(h),
		NewPerHourRule(h),
		NewDailyCapRule(h),
		NewPerDayRule(h),
		NewPerWeekRule(h),
		NewPerMonthRule(h),
		NewTotalMaxRule(h),
	)
}
