package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mscript-quiz-client/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client talks to the quiz collaborators: the question-fetch endpoint, the
// grading endpoint, and the liveness endpoint. It implements
// app.QuestionSource and app.Grader.
type Client struct {
	baseURL       string
	sessionCookie string
	httpClient    *http.Client
	sf            singleflight.Group
	log           *zap.Logger
}

// NewClient builds a client for the given base URL. sessionCookie carries
// the authenticated session to the collaborator; empty means anonymous.
func NewClient(baseURL, sessionCookie string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:       baseURL,
		sessionCookie: sessionCookie,
		httpClient:    &http.Client{Timeout: timeout},
		log:           log,
	}
}

type wireQuestion struct {
	ID         json.Number `json:"id"`
	Question   string      `json:"question"`
	Options    []string    `json:"options"`
	IsMultiple bool        `json:"is_multiple"`
}

type questionsResponse struct {
	Questions       []wireQuestion `json:"questions"`
	DurationMinutes int            `json:"duration_minutes"`
}

// FetchQuestionSet loads the question set for this attempt. Concurrent
// callers share one request. An absent duration field leaves
// QuestionSet.Duration zero so the caller keeps its compiled-in default.
func (c *Client) FetchQuestionSet(ctx context.Context) (domain.QuestionSet, error) {
	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		return c.fetchQuestionSet(ctx)
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (c *Client) fetchQuestionSet(ctx context.Context) (domain.QuestionSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/questions", nil)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.QuestionSet{}, domain.ErrSessionExpired
	case resp.StatusCode != http.StatusOK:
		return domain.QuestionSet{}, fmt.Errorf("questions endpoint returned status %d", resp.StatusCode)
	}

	var payload questionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("decode questions: %w", err)
	}

	set := domain.QuestionSet{
		Questions: make([]domain.Question, 0, len(payload.Questions)),
		Duration:  time.Duration(payload.DurationMinutes) * time.Minute,
	}
	for _, q := range payload.Questions {
		set.Questions = append(set.Questions, domain.Question{
			ID:       q.ID.String(),
			Prompt:   q.Question,
			Options:  q.Options,
			Multiple: q.IsMultiple,
		})
	}
	c.log.Info("question set fetched",
		zap.Int("questions", len(set.Questions)),
		zap.Duration("duration", set.Duration))
	return set, nil
}

type wireResult struct {
	ID             json.Number `json:"id"`
	Question       string      `json:"question"`
	Options        []string    `json:"options"`
	IsCorrect      bool        `json:"is_correct"`
	CorrectAnswers []string    `json:"correct_answers"`
	UserAnswers    []string    `json:"user_answers"`
}

type submitResponse struct {
	Score      int                            `json:"score"`
	Total      int                            `json:"total"`
	Percentage float64                        `json:"percentage"`
	Sections   map[string]domain.SectionScore `json:"sections"`
	Results    []wireResult                   `json:"results"`
}

// Grade sends the frozen submission to the grading endpoint. Unauthorized
// maps to domain.ErrSessionExpired (terminal, redirect); no response maps to
// a domain.ErrUnavailable-wrapped transport error (retryable by a deliberate
// user action only).
func (c *Client) Grade(ctx context.Context, sub domain.Submission) (domain.GradedResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return domain.GradedResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit", bytes.NewReader(body))
	if err != nil {
		return domain.GradedResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		c.log.Warn("grading request failed", zap.Error(err))
		return domain.GradedResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.GradedResult{}, domain.ErrSessionExpired
	case resp.StatusCode != http.StatusOK:
		return domain.GradedResult{}, fmt.Errorf("grading endpoint returned status %d", resp.StatusCode)
	}

	var payload submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.GradedResult{}, fmt.Errorf("decode graded result: %w", err)
	}

	graded := domain.GradedResult{
		Score:      payload.Score,
		Total:      payload.Total,
		Percentage: payload.Percentage,
		Sections:   payload.Sections,
		Results:    make([]domain.QuestionResult, 0, len(payload.Results)),
	}
	for _, r := range payload.Results {
		graded.Results = append(graded.Results, domain.QuestionResult{
			ID:             r.ID.String(),
			Question:       r.Question,
			Options:        r.Options,
			Correct:        r.IsCorrect,
			CorrectAnswers: r.CorrectAnswers,
			UserAnswers:    r.UserAnswers,
		})
	}
	c.log.Info("attempt graded",
		zap.Int("score", graded.Score),
		zap.Int("total", graded.Total))
	return graded, nil
}

// Ping hits the liveness endpoint. The caller ignores the error except for
// debug logging.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: c.sessionCookie})
	}
	return c.httpClient.Do(req)
}
