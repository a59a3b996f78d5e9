package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/domain"
)

func TestProgressStoreSingleSlot(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	if _, err := store.Get(ctx, "quiz-1", "u1"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}

	first := domain.PersistedProgress{
		QuizID: "quiz-1", UserID: "u1", Completed: true,
		Percentage: 50, Score: 1, AttemptedAt: time.Now(),
	}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := first
	second.Percentage = 100
	second.Score = 2
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}

	got, err := store.Get(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Percentage != 100 || got.Score != 2 {
		t.Fatalf("expected latest attempt only, got %+v", got)
	}

	// Records are keyed per user.
	if _, err := store.Get(ctx, "quiz-1", "u2"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Fatalf("expected no record for other user, got %v", err)
	}
}
