package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizzle/internal/domain"
)

func TestClientSubmitScore(t *testing.T) {
	var got domain.LeaderboardEntry
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/leaderboard" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(domain.SubmitResult{Position: 2, IsPersonalRecord: true})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	result, err := client.SubmitScore(context.Background(), "ada", 500, 9)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Position != 2 || !result.IsPersonalRecord {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got.Username != "ada" || got.Score != 500 || got.CategoryID != 9 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClientSubmitScoreWrapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	if _, err := client.SubmitScore(context.Background(), "ada", 500, 9); !errors.Is(err, domain.ErrLeaderboardSubmit) {
		t.Fatalf("expected ErrLeaderboardSubmit, got %v", err)
	}

	// Unreachable server also wraps, so the caller can fall back to the
	// local result.
	server.Close()
	if _, err := client.SubmitScore(context.Background(), "ada", 500, 9); !errors.Is(err, domain.ErrLeaderboardSubmit) {
		t.Fatalf("expected ErrLeaderboardSubmit on network failure, got %v", err)
	}
}

func TestClientTop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "9" || r.URL.Query().Get("username") != "ada" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]domain.LeaderboardEntry{{Username: "ada", Score: 500, CategoryID: 9}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	entries, err := client.Top(context.Background(), 9, "ada")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(entries) != 1 || entries[0].Score != 500 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
