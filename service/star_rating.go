package service

import "github.com/shopspring/decimal"

// starTier maps an inclusive upper bound on a donation amount to the stars it adds
type starTier struct {
	upTo  decimal.Decimal
	stars int64
}

const maxStarsPerDonation int64 = 5

var starTiers = []starTier{
	{upTo: decimal.NewFromInt(25), stars: 1},
	{upTo: decimal.NewFromInt(50), stars: 2},
	{upTo: decimal.NewFromInt(100), stars: 3},
	{upTo: decimal.NewFromInt(200), stars: 4},
}

// StarsForAmount returns the stars a single donation adds to a dream's rating
func StarsForAmount(amount decimal.Decimal) int64 {
	for _, tier := range starTiers {
		if amount.LessThanOrEqual(tier.upTo) {
			return tier.stars
		}
	}
	return maxStarsPerDonation
}
