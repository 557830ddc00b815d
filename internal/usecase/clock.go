package usecase

import (
	"context"
	"time"

	drepo "TrafficLight/internal/domain/repository"
)

// SystemClock is the wall clock. Sleep returns early with ctx.Err() on cancellation.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ drepo.Clock = SystemClock{}
