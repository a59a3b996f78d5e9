package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/domain"
)

// State is the lifecycle position of a Session.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
)

// RemoteScorer grades a completed answer set on the backend. Implementations
// return an error for any transport failure or unusable response; the session
// recovers by scoring locally.
type RemoteScorer interface {
	ScoreAttempt(ctx context.Context, quizID, userID string, answers map[string]string) (domain.AttemptResult, error)
}

// ProgressStore persists the latest attempt outcome per (quiz, user).
type ProgressStore interface {
	Get(ctx context.Context, quizID, userID string) (domain.PersistedProgress, error)
	Put(ctx context.Context, progress domain.PersistedProgress) error
}

// SessionEvents are optional hooks fired from the session's timer goroutine.
// They let a transport push countdown ticks and forced-submit results without
// polling. Both may be nil.
type SessionEvents struct {
	OnTick      func(remaining int)
	OnSubmitted func(result domain.AttemptResult)
}

// Session sequences one quiz attempt: Idle -> InProgress -> Submitted. It owns
// the answer ledger, the current question index and the countdown for the
// duration of the attempt. All mutation goes through its methods; transition
// guards (not locks held by callers) keep a late timer tick from touching a
// submitted attempt.
type Session struct {
	userID             string
	quiz               domain.Quiz
	remote             RemoteScorer
	store              ProgressStore
	logger             *zap.Logger
	secondsPerQuestion int
	now                func() time.Time
	events             SessionEvents

	mu        sync.Mutex
	state     State
	ledger    *Ledger
	index     int
	remaining int
	timer     *Countdown
	result    *domain.AttemptResult
}

// SessionOption customizes a session at construction time.
type SessionOption func(*Session)

// WithSecondsPerQuestion overrides the default 60-second-per-question budget.
func WithSecondsPerQuestion(seconds int) SessionOption {
	return func(s *Session) {
		if seconds > 0 {
			s.secondsPerQuestion = seconds
		}
	}
}

// WithTimerInterval is test-only: it shrinks the tick interval so expiry-driven
// paths run in milliseconds.
func WithTimerInterval(interval time.Duration) SessionOption {
	return func(s *Session) { s.timer = NewCountdownWithInterval(interval) }
}

// WithClock is test-only for deterministic attempt timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithEvents registers transport hooks for tick and forced-submit pushes.
func WithEvents(events SessionEvents) SessionOption {
	return func(s *Session) { s.events = events }
}

func NewSession(quiz domain.Quiz, userID string, remote RemoteScorer, store ProgressStore, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		userID:             userID,
		quiz:               quiz,
		remote:             remote,
		store:              store,
		logger:             logger,
		secondsPerQuestion: 60,
		now:                time.Now,
		state:              StateIdle,
		ledger:             NewLedger(),
		timer:              NewCountdown(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new attempt. Valid from Idle or from Submitted (a retake): the
// ledger is emptied, the index returns to the first question and the countdown
// starts at totalQuestions * secondsPerQuestion.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state == StateInProgress {
		s.mu.Unlock()
		return domain.ErrAttemptInProgress
	}
	s.ledger.Reset()
	s.index = 0
	s.result = nil
	s.state = StateInProgress
	total := s.quiz.TotalQuestions * s.secondsPerQuestion
	s.remaining = total
	s.mu.Unlock()

	s.timer.Start(total, s.handleTick, s.handleExpire)
	return nil
}

// SelectAnswer records the user's current selection for a question. Valid only
// while the attempt is in progress; it changes neither index nor state.
func (s *Session) SelectAnswer(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.ErrNoActiveAttempt
	}
	s.ledger.Set(questionID, option)
	return nil
}

// Next advances to the following question, clamped at the last one.
func (s *Session) Next() { s.jump(func(i int) int { return i + 1 }) }

// Previous steps back one question, clamped at the first one.
func (s *Session) Previous() { s.jump(func(i int) int { return i - 1 }) }

// JumpTo moves directly to a question index, clamped to the valid range.
func (s *Session) JumpTo(index int) { s.jump(func(int) int { return index }) }

func (s *Session) jump(next func(int) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	i := next(s.index)
	if i < 0 {
		i = 0
	}
	if max := s.quiz.TotalQuestions - 1; i > max {
		i = max
	}
	if i < 0 {
		i = 0
	}
	s.index = i
}

// Submit finishes the attempt. The countdown is stopped before anything else so
// no further tick can race the submission. Scoring is attempted remotely first;
// any failure falls back to the local scorer, which produces an identical shape.
// The result is persisted as the (quiz, user) progress slot, overwriting any
// prior record, and the session becomes Submitted. A submit with zero answered
// questions is valid and scores 0%.
func (s *Session) Submit(ctx context.Context) (domain.AttemptResult, error) {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return domain.AttemptResult{}, domain.ErrNoActiveAttempt
	}
	s.timer.Stop()
	// Entering Submitted now makes every mutation guard reject stale events
	// while the scoring call is in flight.
	s.state = StateSubmitted
	answers := s.ledger.Answers()
	quiz := s.quiz
	s.mu.Unlock()

	result := s.scoreAttempt(ctx, quiz, answers)

	progress := domain.ProgressFrom(result, s.userID, s.now())
	if err := s.store.Put(ctx, progress); err != nil {
		// The attempt still completes; only the durable mirror is stale.
		s.logger.Warn("persist quiz progress failed",
			zap.String("quizId", quiz.ID),
			zap.String("userId", s.userID),
			zap.Error(err))
	}

	s.mu.Lock()
	s.result = &result
	s.mu.Unlock()
	return result, nil
}

func (s *Session) scoreAttempt(ctx context.Context, quiz domain.Quiz, answers map[string]string) domain.AttemptResult {
	if s.remote != nil {
		result, err := s.remote.ScoreAttempt(ctx, quiz.ID, s.userID, answers)
		if err == nil {
			return result
		}
		s.logger.Warn("remote scoring failed, falling back to local scorer",
			zap.String("quizId", quiz.ID),
			zap.Error(err))
	}
	return Score(quiz, answers)
}

// Reset returns a submitted session to Idle. The persisted progress record from
// the attempt is left untouched.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted {
		return domain.ErrNoActiveAttempt
	}
	s.ledger.Reset()
	s.index = 0
	s.result = nil
	s.remaining = 0
	s.state = StateIdle
	return nil
}

func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	if s.state != StateInProgress {
		// A tick scheduled before cancellation landed after submission.
		s.mu.Unlock()
		return
	}
	s.remaining = remaining
	onTick := s.events.OnTick
	s.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}

func (s *Session) handleExpire() {
	result, err := s.Submit(context.Background())
	if err != nil {
		// The user submitted between the final tick and expiry; nothing to force.
		return
	}
	s.logger.Info("attempt auto-submitted on timer expiry",
		zap.String("quizId", s.quiz.ID),
		zap.String("userId", s.userID))
	if s.events.OnSubmitted != nil {
		s.events.OnSubmitted(result)
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quiz returns the quiz this session was built for.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

// CurrentIndex reports the question the user is positioned on.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Remaining reports the seconds left on the countdown as of the last tick.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// AnsweredCount reports how many questions currently have a selection.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AnsweredCount()
}

// Answer returns the current selection for a question, if any.
func (s *Session) Answer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(questionID)
}

// Result returns the fixed attempt result once the session is Submitted.
func (s *Session) Result() (domain.AttemptResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.AttemptResult{}, false
	}
	return *s.result, true
}
