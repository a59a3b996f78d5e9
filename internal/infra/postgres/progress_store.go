package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// ProgressStore keeps attempt records in Postgres as one JSONB row per
// (quiz, user), upserted on every submission.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) Get(ctx context.Context, quizID, userID string) (domain.PersistedProgress, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM quiz_progress WHERE quiz_id=$1 AND user_id=$2`,
		quizID, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_progress (quiz_id, user_id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (quiz_id, user_id) DO UPDATE SET data = EXCLUDED.data`,
		progress.QuizID, progress.UserID, raw)
	if err != nil {
		return fmt.Errorf("write quiz progress: %w", err)
	}
	return nil
}
