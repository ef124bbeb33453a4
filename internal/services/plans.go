package services

import "time"

// Plan identifiers selectable at checkout
const (
	PlanMonthly    = "monthly"
	PlanFiveMonths = "fiveMonths"
	PlanYearly     = "yearly"
)

// planPrices maps a plan to its price in whole currency units
var planPrices = map[string]int{
	PlanMonthly:    299,
	PlanFiveMonths: 999,
	PlanYearly:     2000,
}

// PlanPrice returns the price for a plan, or 0 for an unknown plan
func PlanPrice(plan string) int {
	return planPrices[plan]
}

// NextBillingDate computes the billing date that follows a subscription
// starting at start. Unknown plans return ok=false and the caller decides
// what to do with the existing value.
func NextBillingDate(start time.Time, plan string) (time.Time, bool) {
	switch plan {
	case PlanMonthly:
		return start.AddDate(0, 1, 0), true
	case PlanFiveMonths:
		return start.AddDate(0, 5, 0), true
	case PlanYearly:
		return start.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
