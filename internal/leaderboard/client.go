package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quizzle/internal/domain"
)

// Client posts quiz results to the leaderboard API and reads boards.
// Used by the play command; failures wrap domain.ErrLeaderboardSubmit so
// the caller can keep showing the local result.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) SubmitScore(ctx context.Context, username string, score, categoryID int) (domain.SubmitResult, error) {
	body, err := json.Marshal(domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		CategoryID: categoryID,
	})
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrLeaderboardSubmit, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/leaderboard", bytes.NewReader(body))
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrLeaderboardSubmit, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrLeaderboardSubmit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SubmitResult{}, fmt.Errorf("%w: status %d", domain.ErrLeaderboardSubmit, resp.StatusCode)
	}

	var result domain.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrLeaderboardSubmit, err)
	}
	return result, nil
}

func (c *Client) Top(ctx context.Context, categoryID int, username string) ([]domain.LeaderboardEntry, error) {
	q := url.Values{}
	q.Set("category", strconv.Itoa(categoryID))
	if username != "" {
		q.Set("username", username)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leaderboard?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard returned status %d", resp.StatusCode)
	}

	var entries []domain.LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
