package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore, one slot
// per (quiz, user), overwritten on every submission.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]domain.PersistedProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]domain.PersistedProgress)}
}

func (s *ProgressStore) Get(_ context.Context, quizID, userID string) (domain.PersistedProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.records[key(quizID, userID)]
	if !ok {
		return domain.PersistedProgress{}, domain.ErrProgressNotFound
	}
	return progress, nil
}

func (s *ProgressStore) Put(_ context.Context, progress domain.PersistedProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key(progress.QuizID, progress.UserID)] = progress
	return nil
}

func key(quizID, userID string) string {
	return quizID + "|" + userID
}
