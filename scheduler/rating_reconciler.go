package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// RatingRefresher recomputes every user's rating from full history
type RatingRefresher interface {
	RefreshAllRatings(ctx context.Context) (int, error)
}

// RatingReconciler periodically re-runs the rating policy for every user
type RatingReconciler struct {
	cron      *cron.Cron
	refresher RatingRefresher
	schedule  string
	timeout   time.Duration

	mu      sync.Mutex
	running bool
}

// NewRatingReconciler creates a reconciler for a six-field cron schedule
func NewRatingReconciler(refresher RatingRefresher, schedule string) *RatingReconciler {
	return &RatingReconciler{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		schedule:  schedule,
		timeout:   10 * time.Minute,
	}
}

// Start registers the job and starts the cron loop
func (r *RatingReconciler) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.run); err != nil {
		return fmt.Errorf("invalid rating reconcile schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	log.WithField("schedule", r.schedule).Info("Rating reconciler started")
	return nil
}

// Stop waits for a running sweep to finish
func (r *RatingReconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("Rating reconciler stopped")
}

// RunOnce performs a single sweep, skipping if one is already in progress
func (r *RatingReconciler) RunOnce(ctx context.Context) (int, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		log.Warn("Rating reconciliation already running, skipping")
		return 0, nil
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	start := time.Now()
	refreshed, err := r.refresher.RefreshAllRatings(ctx)
	if err != nil {
		return refreshed, fmt.Errorf("failed to reconcile ratings: %w", err)
	}

	log.WithFields(log.Fields{
		"refreshed": refreshed,
		"duration":  time.Since(start),
	}).Info("Rating reconciliation completed")
	return refreshed, nil
}

func (r *RatingReconciler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.RunOnce(ctx); err != nil {
		log.WithError(err).Error("Rating reconciliation failed")
	}
}
