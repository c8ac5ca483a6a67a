// Package platform is the typed client for the non-auth REST surface the
// dashboards consume: materials, progress, quizzes and streaks. Every call
// goes through the authenticated transport, so bearer injection and
// refresh-and-retry on 401 come for free.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eduhub/go-edu-client/internal/apiutil"
)

// Client calls the platform's dashboard endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        zerolog.Logger
}

// Option modifies a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client. httpClient should carry the authenticated
// transport; a bare client will see nothing but 401s.
func New(baseURL string, httpClient *http.Client, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[platform.New] baseURL is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("[platform.New] http client is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		validate:   validator.New(),
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Materials lists all study materials.
func (c *Client) Materials(ctx context.Context) ([]Material, error) {
	var out []Material
	if err := c.get(ctx, "/material/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

type updateProgressRequest struct {
	UserEmail  string         `json:"user_email"`
	MaterialID string         `json:"material_id"`
	Status     ProgressStatus `json:"status"`
}

// UpdateProgress sets the status of one material for a user.
func (c *Client) UpdateProgress(ctx context.Context, userEmail, materialID string, status ProgressStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid progress status %q", status)
	}
	req := updateProgressRequest{UserEmail: userEmail, MaterialID: materialID, Status: status}
	return apiutil.DoJSON(ctx, c.httpClient, c.validate, http.MethodPost, c.baseURL+"/progress/update", &req, nil)
}

// UserProgress lists a user's per-material progress, most recent first.
func (c *Client) UserProgress(ctx context.Context, userEmail string) ([]ProgressEntry, error) {
	var out []ProgressEntry
	if err := c.get(ctx, "/progress/"+url.PathEscape(userEmail), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProgressSummary returns per-subject completion totals for a user.
func (c *Client) ProgressSummary(ctx context.Context, userEmail string) ([]SubjectSummary, error) {
	var out []SubjectSummary
	if err := c.get(ctx, "/progress/summary/"+url.PathEscape(userEmail), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// quizEnvelope is the status/count/data wrapper the quiz endpoints use.
type quizEnvelope struct {
	Status string         `json:"status" validate:"required"`
	Count  int            `json:"count"`
	Data   []QuizQuestion `json:"data"`
}

// QuizQuestions lists the quiz questions for a topic.
func (c *Client) QuizQuestions(ctx context.Context, topic string) ([]QuizQuestion, error) {
	var envelope quizEnvelope
	if err := c.get(ctx, "/quiz/questions/"+url.PathEscape(topic), &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// SubmitQuiz records a quiz attempt.
func (c *Client) SubmitQuiz(ctx context.Context, submission QuizSubmission) error {
	if err := c.validate.Struct(&submission); err != nil {
		return fmt.Errorf("invalid quiz submission: %w", err)
	}
	return apiutil.DoJSON(ctx, c.httpClient, c.validate, http.MethodPost, c.baseURL+"/quiz/submit", &submission, nil)
}

// Streak returns a user's study streak.
func (c *Client) Streak(ctx context.Context, userID string) (*Streak, error) {
	var out Streak
	if err := c.get(ctx, "/streak/"+url.PathEscape(userID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	err := apiutil.DoJSON(ctx, c.httpClient, c.validate, http.MethodGet, c.baseURL+path, nil, out)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("platform call failed")
	}
	return err
}
