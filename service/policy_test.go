package service

import (
	"testing"

	"dreamchain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestChancesGained(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		delta    string
		expected int64
	}{
		{"first threshold", "0", "1", 1},
		{"several thresholds collapse to one", "0", "20", 1},
		{"no threshold between 6 and 8", "6", "2", 0},
		{"first multiple of fifteen", "14", "1", 1},
		{"second multiple of fifteen", "29", "1", 1},
		{"second fixed threshold", "3", "2", 1},
		{"below first threshold", "0", "0.5", 0},
		{"fractional crossing of first threshold", "0.5", "0.5", 1},
		{"already past fifteen without new multiple", "16", "10", 0},
		{"jump across several multiples", "20", "100", 1},
		{"exactly on a multiple before donating", "15", "14.99", 0},
		{"landing exactly on next multiple", "15", "15", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChancesGained(dec(tt.previous), dec(tt.delta)))
		})
	}
}

func TestStarsForAmount(t *testing.T) {
	tests := []struct {
		amount   string
		expected int64
	}{
		{"0.01", 1},
		{"25", 1},
		{"25.01", 2},
		{"26", 2},
		{"50", 2},
		{"100", 3},
		{"200", 4},
		{"200.5", 5},
		{"201", 5},
		{"100000", 5},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, StarsForAmount(dec(tt.amount)))
		})
	}
}

func TestComputeRating(t *testing.T) {
	tests := []struct {
		name     string
		inputs   models.RatingInputs
		expected int64
	}{
		{
			name:     "empty history",
			inputs:   models.RatingInputs{TotalDonated: decimal.Zero, TotalReceived: decimal.Zero},
			expected: 0,
		},
		{
			name:     "donor only",
			inputs:   models.RatingInputs{TotalDonated: dec("15"), TotalReceived: decimal.Zero},
			expected: 7,
		},
		{
			name:     "creator with one dream",
			inputs:   models.RatingInputs{TotalDonated: decimal.Zero, TotalReceived: dec("105"), DreamsCreated: 1},
			expected: 31,
		},
		{
			name:     "dream count alone rounds down",
			inputs:   models.RatingInputs{TotalDonated: decimal.Zero, TotalReceived: decimal.Zero, DreamsCreated: 4},
			expected: 0,
		},
		{
			name:     "weights without float drift",
			inputs:   models.RatingInputs{TotalDonated: dec("2"), TotalReceived: dec("10"), DreamsCreated: 5},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeRating(tt.inputs))
		})
	}
}
