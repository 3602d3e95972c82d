// Package trivia talks to the Open Trivia DB API: session tokens,
// question batches, and normalization into the engine's question shape.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quizzle/internal/domain"
)

const (
	// DefaultBaseURL is the public Open Trivia DB endpoint.
	DefaultBaseURL = "https://opentdb.com"

	responseCodeSuccess      = 0
	responseCodeTokenExpired = 4
)

// RawQuestion mirrors the provider's question payload. Texts are
// HTML-entity escaped until the supplier decodes them.
type RawQuestion struct {
	Type             string `json:"type"`
	Difficulty       string `json:"difficulty"`
	Category         string `json:"category"`
	Question         string `json:"question"`
	CorrectAnswer    string `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type tokenResponse struct {
	ResponseCode int    `json:"response_code"`
	Token        string `json:"token"`
}

// Client is a thin wire client for the trivia provider.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: hc}
}

// RequestToken fetches a fresh opaque session token.
func (c *Client) RequestToken(ctx context.Context) (string, error) {
	var payload tokenResponse
	if err := c.getJSON(ctx, c.baseURL+"/api_token.php?command=request", &payload); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenAcquisition, err)
	}
	if payload.ResponseCode != responseCodeSuccess || payload.Token == "" {
		return "", fmt.Errorf("%w: response_code=%d", domain.ErrTokenAcquisition, payload.ResponseCode)
	}
	return payload.Token, nil
}

// FetchQuestions requests a question batch for the given options and
// session token. A response_code of 4 maps to domain.ErrTokenExpired so
// the caller can coordinate a token regeneration; any other non-zero
// code, network error, or parse error maps to domain.ErrQuestionFetch.
func (c *Client) FetchQuestions(ctx context.Context, opts domain.QuizOptions, token string) ([]RawQuestion, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(opts.QuestionCount))
	q.Set("token", token)
	if opts.Difficulty != domain.DifficultyAll && opts.Difficulty != "" {
		q.Set("difficulty", string(opts.Difficulty))
	}
	if opts.CategoryID != 0 {
		q.Set("category", strconv.Itoa(opts.CategoryID))
	}

	var payload questionsResponse
	if err := c.getJSON(ctx, c.baseURL+"/api.php?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionFetch, err)
	}

	switch payload.ResponseCode {
	case responseCodeSuccess:
		return payload.Results, nil
	case responseCodeTokenExpired:
		return nil, domain.ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: response_code=%d", domain.ErrQuestionFetch, payload.ResponseCode)
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
