package app

import "quiz-attempt-service/internal/domain"

// Score grades a set of answers against a quiz. It is a pure function: no side
// effects, deterministic for a given quiz and answer set. Callers use it both as
// the local scoring fallback and as the reference shape for remote responses, so
// its result must be identical on every path.
//
// Comparison between a selected option and the question's correct answer is an
// exact, case-sensitive match of the same strings the options were rendered from.
// Any normalization here would silently turn correct answers into incorrect ones.
func Score(quiz domain.Quiz, answers map[string]string) domain.AttemptResult {
	result := domain.AttemptResult{
		QuizID:         quiz.ID,
		TotalQuestions: len(quiz.Questions),
		Results:        make([]domain.QuestionResult, 0, len(quiz.Questions)),
	}

	for _, q := range quiz.Questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		result.PossiblePoints += points

		qr := domain.QuestionResult{
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswer,
			Points:        points,
		}

		selected, answered := answers[q.ID]
		switch {
		case !answered:
			qr.Outcome = domain.OutcomeNotAttempted
		case len(q.Options) > 0 && selected == q.CorrectAnswer:
			qr.Outcome = domain.OutcomeCorrect
			qr.UserAnswer = selected
			qr.Earned = points
			result.Correct++
			result.EarnedPoints += points
		default:
			// A question without options can never be answered correctly.
			qr.Outcome = domain.OutcomeIncorrect
			qr.UserAnswer = selected
		}
		if answered {
			result.Attempted++
		}
		result.Results = append(result.Results, qr)
	}

	result.Incorrect = result.Attempted - result.Correct
	result.Percentage = domain.Percentage(result.EarnedPoints, result.PossiblePoints)
	result.Grade = domain.GradeFor(result.Percentage)
	return result
}
