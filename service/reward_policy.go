package service

import "github.com/shopspring/decimal"

var (
	firstChanceThreshold  = decimal.NewFromInt(1)
	secondChanceThreshold = decimal.NewFromInt(5)
	recurringChanceStep   = decimal.NewFromInt(15)
)

// ChancesGained returns how many chances a donation of delta unlocks for a donor
// whose cumulative donations were previous before it.
//
// Thresholds are 1, 5 and every multiple of 15. A donation earns at most one
// chance no matter how many thresholds it crosses.
func ChancesGained(previous, delta decimal.Decimal) int64 {
	next := previous.Add(delta)

	if crosses(previous, next, firstChanceThreshold) || crosses(previous, next, secondChanceThreshold) {
		return 1
	}

	if next.GreaterThanOrEqual(recurringChanceStep) && multiplesOf(next).GreaterThan(multiplesOf(previous)) {
		return 1
	}

	return 0
}

func crosses(previous, next, threshold decimal.Decimal) bool {
	return previous.LessThan(threshold) && next.GreaterThanOrEqual(threshold)
}

// multiplesOf counts whole recurring steps contained in a non-negative total
func multiplesOf(total decimal.Decimal) decimal.Decimal {
	if total.IsNegative() {
		return decimal.Zero
	}
	q, _ := total.QuoRem(recurringChanceStep, 0)
	return q
}
