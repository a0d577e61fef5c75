// Package sweeper closes out stale bookings in the background: past pending
// bookings become no-shows, past confirmed or seated ones completed.
package sweeper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Store interface {
	MarkPastNoShows(ctx context.Context, before time.Time) (int64, error)
	MarkPastCompleted(ctx context.Context, before time.Time) (int64, error)
}

type Sweeper struct {
	Store    Store
	Interval time.Duration
	Log      *zap.Logger

	wg sync.WaitGroup
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	today := time.Now().UTC().Truncate(24 * time.Hour)

	noShows, err := s.Store.MarkPastNoShows(ctx, today)
	if err != nil {
		s.Log.Warn("sweep no-shows failed", zap.Error(err))
		return
	}
	completed, err := s.Store.MarkPastCompleted(ctx, today)
	if err != nil {
		s.Log.Warn("sweep completions failed", zap.Error(err))
		return
	}
	if noShows > 0 || completed > 0 {
		s.Log.Info("swept past bookings",
			zap.Int64("no_shows", noShows),
			zap.Int64("completed", completed),
		)
	}
}
