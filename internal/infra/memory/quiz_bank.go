package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// QuizBank caches quiz listings with TTL so repeated dashboard loads do not
// hammer the remote question bank. Concurrent misses for the same (user, course)
// collapse into a single upstream fetch.
type QuizBank struct {
	source app.QuizSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedListing
}

type cachedListing struct {
	quizzes   []domain.Quiz
	expiresAt time.Time
}

func NewQuizBank(source app.QuizSource, ttl time.Duration) *QuizBank {
	return &QuizBank{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedListing),
	}
}

func (b *QuizBank) FetchQuizzes(ctx context.Context, userID, courseID string) ([]domain.Quiz, error) {
	key := userID + "|" + courseID
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return cloneQuizzes(entry.quizzes), nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.quizzes, nil
		}
		b.mu.RUnlock()

		quizzes, err := b.source.FetchQuizzes(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[key] = cachedListing{
			quizzes:   quizzes,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuizzes(result.([]domain.Quiz)), nil
}

// cloneQuizzes keeps cached entries immutable: progress decoration happens on
// the caller's copy, never on the shared cache.
func cloneQuizzes(quizzes []domain.Quiz) []domain.Quiz {
	out := make([]domain.Quiz, len(quizzes))
	copy(out, quizzes)
	return out
}

func (b *QuizBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticQuizSource serves a fixed quiz set (useful for tests and for running
// without a remote backend).
type StaticQuizSource struct {
	quizzes []domain.Quiz
}

func NewStaticQuizSource(quizzes []domain.Quiz) *StaticQuizSource {
	return &StaticQuizSource{quizzes: quizzes}
}

func (s *StaticQuizSource) FetchQuizzes(_ context.Context, _, _ string) ([]domain.Quiz, error) {
	return cloneQuizzes(s.quizzes), nil
}
