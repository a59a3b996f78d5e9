package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/domain"
)

// ProgressStore keeps the latest attempt record per (quiz, user) in Redis.
// Records are stored as: SET quiz_progress_{quizID}_{userID} {json}
// with no expiry: the slot lives until the next submission overwrites it.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) Get(ctx context.Context, quizID, userID string) (domain.PersistedProgress, error) {
	raw, err := s.client.Get(ctx, s.key(quizID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PersistedProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.PersistedProgress{}, fmt.Errorf("read quiz progress: %w", err)
	}

	var progress domain.PersistedProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return domain.PersistedProgress{}, fmt.Errorf("unmarshal quiz progress: %w", err)
	}
	return progress, nil
}

func (s *ProgressStore) Put(ctx context.Context, progress domain.PersistedProgress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal quiz progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key(progress.QuizID, progress.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("write quiz progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) key(quizID, userID string) string {
	return "quiz_progress_" + quizID + "_" + userID
}
