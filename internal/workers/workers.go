package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"manoLogAPI/internal/apperrors"
)

// Sweeper runs one streak repair pass.
type Sweeper interface {
	RepairAll(ctx context.Context) error
}

// SweepFunc adapts a function to Sweeper.
type SweepFunc func(ctx context.Context) error

func (f SweepFunc) RepairAll(ctx context.Context) error { return f(ctx) }

// StartStreakRepairWorker runs the sweep every interval until ctx is done.
// The returned channel closes when the worker has stopped.
func StartStreakRepairWorker(ctx context.Context, sweeper Sweeper, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSweep(ctx, sweeper, interval)
			}
		}
	}()

	log.Printf("Streak repair worker started, interval %s", interval)
	return done
}

func runSweep(ctx context.Context, sweeper Sweeper, budget time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	err := sweeper.RepairAll(ctx)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRepairPartialFailure):
		log.Printf("Streak repair sweep finished with failures: %v", err)
	default:
		log.Printf("Streak repair sweep failed: %v", err)
	}
}
