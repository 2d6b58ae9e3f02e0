package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRatingRefresher struct {
	mock.Mock
}

func (m *MockRatingRefresher) RefreshAllRatings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestRatingReconciler_RunOnce(t *testing.T) {
	refresher := new(MockRatingRefresher)
	refresher.On("RefreshAllRatings", mock.Anything).Return(12, nil).Once()

	reconciler := NewRatingReconciler(refresher, "0 */15 * * * *")
	refreshed, err := reconciler.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, refreshed)
	refresher.AssertExpectations(t)
}

func TestRatingReconciler_RunOnce_WrapsError(t *testing.T) {
	refresher := new(MockRatingRefresher)
	refresher.On("RefreshAllRatings", mock.Anything).Return(3, errors.New("context canceled")).Once()

	reconciler := NewRatingReconciler(refresher, "0 */15 * * * *")
	refreshed, err := reconciler.RunOnce(context.Background())

	assert.ErrorContains(t, err, "failed to reconcile ratings")
	assert.Equal(t, 3, refreshed)
}

func TestRatingReconciler_SkipsOverlappingRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	refresher := new(MockRatingRefresher)
	refresher.On("RefreshAllRatings", mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(1, nil).Once()

	reconciler := NewRatingReconciler(refresher, "0 */15 * * * *")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = reconciler.RunOnce(context.Background())
	}()

	<-started
	refreshed, err := reconciler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed)

	close(release)
	wg.Wait()
	refresher.AssertNumberOfCalls(t, "RefreshAllRatings", 1)
}

func TestRatingReconciler_InvalidSchedule(t *testing.T) {
	reconciler := NewRatingReconciler(new(MockRatingRefresher), "every now and then")
	assert.Error(t, reconciler.Start())
}

func TestRatingReconciler_StartRunsOnSchedule(t *testing.T) {
	called := make(chan struct{}, 1)

	refresher := new(MockRatingRefresher)
	refresher.On("RefreshAllRatings", mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		}).
		Return(0, nil)

	reconciler := NewRatingReconciler(refresher, "* * * * * *")
	require.NoError(t, reconciler.Start())
	t.Cleanup(reconciler.Stop)

	select {
	case <-called:
	case <-time.After(3 * time.Second):
		t.Fatal("reconciliation did not run on schedule")
	}
}
