package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/domain"
)

// QuizSource loads quiz definitions for a user and course (from the remote
// question bank, a cache in front of it, or a static set).
type QuizSource interface {
	FetchQuizzes(ctx context.Context, userID, courseID string) ([]domain.Quiz, error)
}

// AttemptService contains the quiz attempt use cases: listing quizzes with
// prior-attempt decoration, and constructing sessions for new attempts.
type AttemptService struct {
	source             QuizSource
	store              ProgressStore
	remote             RemoteScorer
	logger             *zap.Logger
	secondsPerQuestion int
}

func NewAttemptService(source QuizSource, store ProgressStore, remote RemoteScorer, logger *zap.Logger, secondsPerQuestion int) *AttemptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if secondsPerQuestion <= 0 {
		secondsPerQuestion = 60
	}
	return &AttemptService{
		source:             source,
		store:              store,
		remote:             remote,
		logger:             logger,
		secondsPerQuestion: secondsPerQuestion,
	}
}

// ListQuizzes returns the quizzes available to a user on a course. Each quiz is
// normalized and decorated with the user's persisted progress for display. A
// source failure is swallowed: the fixed fallback set is substituted so the
// caller never sees a hard error for this step.
func (s *AttemptService) ListQuizzes(ctx context.Context, userID, courseID string) []domain.Quiz {
	quizzes, err := s.source.FetchQuizzes(ctx, userID, courseID)
	if err != nil {
		s.logger.Warn("quiz source unavailable, serving fallback set",
			zap.String("userId", userID),
			zap.String("courseId", courseID),
			zap.Error(err))
		quizzes = FallbackQuizzes()
	}

	for i := range quizzes {
		quizzes[i] = domain.Normalize(quizzes[i])
		s.decorate(ctx, &quizzes[i], userID)
	}
	return quizzes
}

// decorate mirrors the persisted progress onto the quiz for display purposes
// only; it plays no role in starting a new attempt.
func (s *AttemptService) decorate(ctx context.Context, quiz *domain.Quiz, userID string) {
	progress, err := s.store.Get(ctx, quiz.ID, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProgressNotFound) {
			s.logger.Warn("read quiz progress failed",
				zap.String("quizId", quiz.ID),
				zap.String("userId", userID),
				zap.Error(err))
		}
		return
	}
	quiz.Completed = progress.Completed
	quiz.Score = progress.Percentage
	attemptedAt := progress.AttemptedAt
	quiz.AttemptDate = &attemptedAt
}

// NewSession builds a session for one attempt at the given quiz. The quiz is
// looked up through the source (or the fallback set) so the session always
// works from a normalized definition.
func (s *AttemptService) NewSession(ctx context.Context, userID, courseID, quizID string, opts ...SessionOption) (*Session, error) {
	quiz, err := s.findQuiz(ctx, userID, courseID, quizID)
	if err != nil {
		return nil, err
	}

	opts = append([]SessionOption{WithSecondsPerQuestion(s.secondsPerQuestion)}, opts...)
	return NewSession(quiz, userID, s.remote, s.store, s.logger, opts...), nil
}

func (s *AttemptService) findQuiz(ctx context.Context, userID, courseID, quizID string) (domain.Quiz, error) {
	quizzes, err := s.source.FetchQuizzes(ctx, userID, courseID)
	if err != nil {
		quizzes = FallbackQuizzes()
	}
	for _, quiz := range quizzes {
		if quiz.ID == quizID {
			return domain.Normalize(quiz), nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Progress returns the persisted attempt record for a quiz and user.
func (s *AttemptService) Progress(ctx context.Context, quizID, userID string) (domain.PersistedProgress, error) {
	return s.store.Get(ctx, quizID, userID)
}
