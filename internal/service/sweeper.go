package service

import (
	"context"
	"log"
	"time"

	"github.com/vayhout/notesphere/internal/metrics"
	"github.com/vayhout/notesphere/internal/repository"
)

// RetentionSweeper periodically hard-deletes notes that have sat in the
// trash past the retention window. One instance runs for the whole process,
// separate from request handling.
type RetentionSweeper struct {
	notes         repository.NoteRepository
	retentionDays int
	interval      time.Duration
	grace         time.Duration
}

func NewRetentionSweeper(notes repository.NoteRepository, retentionDays int, interval, grace time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		notes:         notes,
		retentionDays: retentionDays,
		interval:      interval,
		grace:         grace,
	}
}

// Run blocks until ctx is canceled: one sweep after the grace delay, then
// one per interval. A failed sweep is logged and the loop carries on with
// the next cycle. Cancellation is observed between iterations only; a sweep
// already underway finishes, since the bulk purge is a single atomic
// statement not worth interrupting.
func (s *RetentionSweeper) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.grace):
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(context.WithoutCancel(ctx))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	count, err := s.notes.PurgeExpired(ctx, s.retentionDays)
	if err != nil {
		log.Printf("Retention sweep failed: %v", err)
		return
	}
	if count > 0 {
		metrics.NotesPurgedTotal.Add(float64(count))
		log.Printf("Purged %d soft-deleted notes older than %d days", count, s.retentionDays)
	}
}
