package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/service"
)

func deletedNote(id string, userID int, deletedDaysAgo int) *models.Note {
	at := time.Now().UTC().AddDate(0, 0, -deletedDaysAgo)
	return &models.Note{
		ID:        id,
		UserID:    userID,
		Title:     "t",
		Content:   "c",
		IsDeleted: true,
		DeletedAt: &at,
		CreatedAt: at.AddDate(0, 0, -1),
		UpdatedAt: at,
	}
}

func TestSweeperPurgesOnlyExpired(t *testing.T) {
	repo := newFakeNoteRepo()
	repo.notes["old"] = deletedNote("old", 1, 31)
	repo.notes["fresh"] = deletedNote("fresh", 1, 29)
	repo.notes["other-user"] = deletedNote("other-user", 2, 40)

	sweeper := service.NewRetentionSweeper(repo, 30, time.Hour, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.purgeExpiredCalls >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NotContains(t, repo.notes, "old")
	assert.NotContains(t, repo.notes, "other-user", "sweep spans all users")
	assert.Contains(t, repo.notes, "fresh")
}

func TestSweeperContinuesAfterFailure(t *testing.T) {
	repo := newFakeNoteRepo()
	repo.purgeExpiredErrs = []error{errors.New("storage unreachable")}

	sweeper := service.NewRetentionSweeper(repo, 30, 5*time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// First run fails, later runs still happen on schedule.
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.purgeExpiredCalls >= 3
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestSweeperStopsDuringGrace(t *testing.T) {
	repo := newFakeNoteRepo()
	sweeper := service.NewRetentionSweeper(repo, 30, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not observe cancellation")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Zero(t, repo.purgeExpiredCalls, "no sweep before the grace delay elapses")
}
