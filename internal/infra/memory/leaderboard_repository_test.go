package memory

import (
	"context"
	"fmt"
	"testing"

	"quizzle/internal/domain"
	"quizzle/internal/leaderboard"
)

func TestSubmitScoreSnapshotSeesOwnWrite(t *testing.T) {
	repo := NewLeaderboardRepository()
	ctx := context.Background()

	snap, err := repo.SubmitScore(ctx, domain.LeaderboardEntry{Username: "ada", Score: 500, CategoryID: 9})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(snap.Top) != 1 || snap.Top[0].Username != "ada" {
		t.Fatalf("snapshot must include the inserted entry, got %+v", snap.Top)
	}
	if snap.BestScore != 500 {
		t.Fatalf("best score must include the new entry, got %d", snap.BestScore)
	}
}

func TestBestScoreIsPerUserAndCategory(t *testing.T) {
	repo := NewLeaderboardRepository()
	ctx := context.Background()

	seeds := []domain.LeaderboardEntry{
		{Username: "ada", Score: 800, CategoryID: 9},
		{Username: "ada", Score: 950, CategoryID: 17}, // other category
		{Username: "bob", Score: 990, CategoryID: 9},  // other user
	}
	for _, e := range seeds {
		if _, err := repo.SubmitScore(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	snap, err := repo.SubmitScore(ctx, domain.LeaderboardEntry{Username: "ada", Score: 100, CategoryID: 9})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.BestScore != 800 {
		t.Fatalf("best must ignore other users and categories, got %d", snap.BestScore)
	}
}

func TestTopScoresOrderingAndLimit(t *testing.T) {
	repo := NewLeaderboardRepository()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		entry := domain.LeaderboardEntry{
			Username:   fmt.Sprintf("player%d", i),
			Score:      i * 100,
			CategoryID: 9,
		}
		if _, err := repo.SubmitScore(ctx, entry); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	top, err := repo.TopScores(ctx, 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != leaderboard.TopSize {
		t.Fatalf("expected %d entries, got %d", leaderboard.TopSize, len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Fatalf("entries not sorted descending at %d: %+v", i, top)
		}
	}
	if top[0].Score != 1400 {
		t.Fatalf("expected highest score first, got %d", top[0].Score)
	}
}

func TestEqualScoresKeepInsertionOrder(t *testing.T) {
	repo := NewLeaderboardRepository()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := repo.SubmitScore(ctx, domain.LeaderboardEntry{Username: name, Score: 600, CategoryID: 9}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	top, err := repo.TopScores(ctx, 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if top[i].Username != name {
			t.Fatalf("position %d: got %q, want %q", i, top[i].Username, name)
		}
	}
}

func TestUserTopScoresFilters(t *testing.T) {
	repo := NewLeaderboardRepository()
	ctx := context.Background()

	entries := []domain.LeaderboardEntry{
		{Username: "ada", Score: 300, CategoryID: 9},
		{Username: "bob", Score: 900, CategoryID: 9},
		{Username: "ada", Score: 500, CategoryID: 9},
		{Username: "ada", Score: 700, CategoryID: 17},
	}
	for _, e := range entries {
		if _, err := repo.SubmitScore(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.UserTopScores(ctx, 9, "ada", leaderboard.TopSize)
	if err != nil {
		t.Fatalf("user top: %v", err)
	}
	if len(got) != 2 || got[0].Score != 500 || got[1].Score != 300 {
		t.Fatalf("unexpected user entries: %+v", got)
	}
}
