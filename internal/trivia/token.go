package trivia

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TokenManager owns the provider session token. Acquisition is
// single-flight: concurrent callers share one in-flight request and its
// result, so the stored token can never flap between two racing fetches.
// There is no background refresh; Regenerate is called reactively when a
// question fetch reports the token expired.
type TokenManager struct {
	client *Client
	sf     singleflight.Group

	mu    sync.RWMutex
	token string
}

func NewTokenManager(client *Client) *TokenManager {
	return &TokenManager{client: client}
}

// Acquire returns the current token, fetching one if none is held yet.
func (m *TokenManager) Acquire(ctx context.Context) (string, error) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return m.fetch(ctx)
}

// Current returns the last acquired token, if any.
func (m *TokenManager) Current() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Regenerate discards the held token and acquires a fresh one.
func (m *TokenManager) Regenerate(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return m.fetch(ctx)
}

func (m *TokenManager) fetch(ctx context.Context) (string, error) {
	v, err, _ := m.sf.Do("token", func() (any, error) {
		// Re-check under the flight: a racing caller may have stored one.
		m.mu.RLock()
		token := m.token
		m.mu.RUnlock()
		if token != "" {
			return token, nil
		}

		token, err := m.client.RequestToken(ctx)
		if err != nil {
			return "", err
		}

		m.mu.Lock()
		m.token = token
		m.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
