package domain

import (
	"math"
	"time"
)

// Question models an MCQ question with a single correct option string.
// Options are the literal strings rendered to the user; CorrectAnswer must be
// compared against them without any normalization.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        int      `json:"points"` // defaults to 1 if zero or negative
}

// Quiz is an ordered collection of questions, immutable for the duration of an attempt.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`

	// Derived at load time by Normalize.
	TotalQuestions int `json:"totalQuestions"`
	TotalPoints    int `json:"totalPoints"`

	// Display-only mirror of a prior attempt; never consulted when starting a new one.
	Completed   bool       `json:"completed,omitempty"`
	Score       int        `json:"score,omitempty"`
	AttemptDate *time.Time `json:"attemptDate,omitempty"`
}

// Outcome classifies a single question within an attempt.
type Outcome string

const (
	OutcomeCorrect      Outcome = "correct"
	OutcomeIncorrect    Outcome = "incorrect"
	OutcomeNotAttempted Outcome = "not_attempted"
)

// QuestionResult is the per-question detail of an attempt.
type QuestionResult struct {
	QuestionID    string  `json:"questionId"`
	Outcome       Outcome `json:"outcome"`
	UserAnswer    string  `json:"userAnswer,omitempty"`
	CorrectAnswer string  `json:"correctAnswer"`
	Points        int     `json:"points"`
	Earned        int     `json:"earned"`
}

// AttemptResult is the outcome of one completed attempt. It is produced either by
// the local scorer or by the remote scoring endpoint; the two shapes are identical.
type AttemptResult struct {
	QuizID         string           `json:"quizId"`
	TotalQuestions int              `json:"totalQuestions"`
	Attempted      int              `json:"attempted"`
	Correct        int              `json:"correct"`
	Incorrect      int              `json:"incorrect"`
	EarnedPoints   int              `json:"earnedPoints"`
	PossiblePoints int              `json:"possiblePoints"`
	Percentage     int              `json:"percentage"`
	Grade          string           `json:"grade"`
	Results        []QuestionResult `json:"results"`
}

// PersistedProgress is the single-slot durable record of the most recent attempt
// for a (quiz, user) pair. Each submission overwrites it wholesale.
type PersistedProgress struct {
	QuizID         string           `json:"quizId"`
	UserID         string           `json:"userId"`
	Completed      bool             `json:"completed"`
	Percentage     int              `json:"percentage"`
	Score          int              `json:"score"`
	Correct        int              `json:"correct"`
	TotalQuestions int              `json:"totalQuestions"`
	AttemptedAt    time.Time        `json:"attemptedAt"`
	Results        []QuestionResult `json:"results"`
}

// Normalize applies load-time defaulting to a quiz fetched from an external source:
// missing point values become 1 and the derived totals are recomputed. Defaulting
// happens exactly once here so downstream code never re-checks optional fields.
func Normalize(quiz Quiz) Quiz {
	total := 0
	for i := range quiz.Questions {
		if quiz.Questions[i].Points <= 0 {
			quiz.Questions[i].Points = 1
		}
		total += quiz.Questions[i].Points
	}
	quiz.TotalQuestions = len(quiz.Questions)
	quiz.TotalPoints = total
	return quiz
}

// Percentage computes round(earned/possible * 100), or 0 when nothing was possible.
func Percentage(earned, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}

// GradeFor bands a percentage into a letter grade.
func GradeFor(percentage int) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	default:
		return "D"
	}
}

// ProgressFrom converts an attempt result into the durable record for a user.
func ProgressFrom(result AttemptResult, userID string, attemptedAt time.Time) PersistedProgress {
	return PersistedProgress{
		QuizID:         result.QuizID,
		UserID:         userID,
		Completed:      true,
		Percentage:     result.Percentage,
		Score:          result.EarnedPoints,
		Correct:        result.Correct,
		TotalQuestions: result.TotalQuestions,
		AttemptedAt:    attemptedAt,
		Results:        result.Results,
	}
}
