// Package api talks to the remote learning-platform backend. The backend is an
// opaque collaborator: this client consumes its two quiz endpoints and validates
// the shapes it gets back, but owns none of them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-attempt-service/internal/domain"
)

// Client fetches quiz definitions and submits attempts for remote scoring.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type quizListResponse struct {
	Quizzes []domain.Quiz `json:"quizzes"`
}

// FetchQuizzes loads the quiz definitions for a user and course. Quizzes are
// normalized here, once, so every caller works from defaulted data.
func (c *Client) FetchQuizzes(ctx context.Context, userID, courseID string) ([]domain.Quiz, error) {
	endpoint := fmt.Sprintf("%s/quizzes?user=%s&course=%s",
		c.base, url.QueryEscape(userID), url.QueryEscape(courseID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build quiz request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quizzes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch quizzes: unexpected status %d", resp.StatusCode)
	}

	var payload quizListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quiz list: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(payload.Quizzes))
	for _, quiz := range payload.Quizzes {
		quizzes = append(quizzes, domain.Normalize(quiz))
	}
	return quizzes, nil
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

// ScoreAttempt submits a completed answer set for server-side grading. Any
// non-2xx status, decode failure or shape mismatch is returned as an error so
// the caller can fall back to local scoring.
func (c *Client) ScoreAttempt(ctx context.Context, quizID, userID string, answers map[string]string) (domain.AttemptResult, error) {
	endpoint := fmt.Sprintf("%s/submit-quiz/%s/%s",
		c.base, url.PathEscape(quizID), url.PathEscape(userID))

	body, err := json.Marshal(submitRequest{Answers: answers})
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("encode answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("submit attempt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.AttemptResult{}, fmt.Errorf("submit attempt: unexpected status %d", resp.StatusCode)
	}

	var result domain.AttemptResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.AttemptResult{}, fmt.Errorf("decode attempt result: %w", err)
	}
	if err := validateResult(result); err != nil {
		return domain.AttemptResult{}, fmt.Errorf("attempt result shape: %w", err)
	}
	return result, nil
}

// validateResult rejects payloads that do not hold the scorer's own accounting
// invariants; a mismatch means the response cannot be trusted for display or
// persistence.
func validateResult(result domain.AttemptResult) error {
	if result.TotalQuestions <= 0 {
		return fmt.Errorf("missing question count")
	}
	if len(result.Results) != result.TotalQuestions {
		return fmt.Errorf("expected %d per-question results, got %d", result.TotalQuestions, len(result.Results))
	}
	if result.Attempted != result.Correct+result.Incorrect {
		return fmt.Errorf("attempted %d does not equal correct %d + incorrect %d",
			result.Attempted, result.Correct, result.Incorrect)
	}
	if result.Percentage < 0 || result.Percentage > 100 {
		return fmt.Errorf("percentage %d out of range", result.Percentage)
	}
	return nil
}
