package service

import (
	"context"
	"fmt"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	donatedWeight  = decimal.RequireFromString("0.5")
	receivedWeight = decimal.RequireFromString("0.3")
	dreamsWeight   = decimal.RequireFromString("0.2")
)

// ComputeRating derives a user's reputation from their full history:
// floor(0.5*totalDonated + 0.3*totalReceived + 0.2*dreamsCreated)
func ComputeRating(inputs models.RatingInputs) int64 {
	score := inputs.TotalDonated.Mul(donatedWeight).
		Add(inputs.TotalReceived.Mul(receivedWeight)).
		Add(decimal.NewFromInt(inputs.DreamsCreated).Mul(dreamsWeight))

	return score.Floor().IntPart()
}

// refreshRating recomputes a user's rating inside the caller's unit of work.
// The stored totals are overwritten with freshly summed values. The user row
// is locked before summing, so a donation still in flight for this user
// commits first and is included. Returns nil without error if the user does
// not exist.
func refreshRating(ctx context.Context, uow UnitOfWork, userID int64) (*models.User, error) {
	userRepo := uow.UserRepository()

	user, err := userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user == nil {
		log.WithField("userID", userID).Warn("Skipping rating refresh for missing user")
		return nil, nil
	}

	inputs, err := userRepo.GetRatingInputs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating inputs for user %d: %w", userID, err)
	}

	rating := ComputeRating(*inputs)

	updated, err := userRepo.UpdateRating(ctx, userID, rating, inputs.TotalDonated, inputs.TotalReceived)
	if err != nil {
		return nil, fmt.Errorf("failed to update rating for user %d: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"oldRating":     user.Rating,
		"newRating":     rating,
		"totalDonated":  inputs.TotalDonated.String(),
		"totalReceived": inputs.TotalReceived.String(),
		"dreamsCreated": inputs.DreamsCreated,
	}).Debug("Refreshed user rating")

	if rating != user.Rating {
		uow.EventBus().Publish(events.RatingUpdatedEvent{
			UserID:    userID,
			OldRating: user.Rating,
			NewRating: rating,
		})
	}

	return updated, nil
}
