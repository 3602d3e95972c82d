package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quizzle/internal/domain"
	"quizzle/internal/infra/memory"
	"quizzle/internal/leaderboard"
)

type countingLoader struct {
	*memory.LeaderboardRepository
	calls int
}

func (l *countingLoader) TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error) {
	l.calls++
	return l.LeaderboardRepository.TopScores(ctx, categoryID, limit)
}

func newTestCache(t *testing.T) (*LeaderboardCache, *countingLoader, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	loader := &countingLoader{LeaderboardRepository: memory.NewLeaderboardRepository()}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewLeaderboardCache(client, loader, time.Minute), loader, mr
}

func seed(t *testing.T, repo *memory.LeaderboardRepository, username string, score, category int) {
	t.Helper()
	if _, err := repo.SubmitScore(context.Background(), domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		CategoryID: category,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestTopScoresCachesInRedis(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	seed(t, loader.LeaderboardRepository, "ada", 500, 9)

	first, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(first) != 1 || first[0].Username != "ada" {
		t.Fatalf("unexpected board: %+v", first)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second read is served from Redis, loader not incremented.
	second, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top again: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(second) != 1 || second[0].Score != 500 {
		t.Fatalf("cached board differs: %+v", second)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	seed(t, loader.LeaderboardRepository, "ada", 500, 9)

	if _, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize); err != nil {
		t.Fatalf("top: %v", err)
	}

	// A new score lands; the stale cached board must not survive.
	seed(t, loader.LeaderboardRepository, "bob", 900, 9)
	if err := cache.Invalidate(context.Background(), 9); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	top, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls=%d", loader.calls)
	}
	if len(top) != 2 || top[0].Username != "bob" {
		t.Fatalf("expected bob leading after reload, got %+v", top)
	}
}

func TestCategoriesCacheSeparately(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	seed(t, loader.LeaderboardRepository, "ada", 500, 9)
	seed(t, loader.LeaderboardRepository, "bob", 700, 17)

	nine, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top 9: %v", err)
	}
	seventeen, err := cache.TopScores(context.Background(), 17, leaderboard.TopSize)
	if err != nil {
		t.Fatalf("top 17: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("each category loads once, got %d calls", loader.calls)
	}
	if len(nine) != 1 || nine[0].Username != "ada" {
		t.Fatalf("category 9 board: %+v", nine)
	}
	if len(seventeen) != 1 || seventeen[0].Username != "bob" {
		t.Fatalf("category 17 board: %+v", seventeen)
	}
}

func TestExpiredKeyReloads(t *testing.T) {
	cache, loader, mr := newTestCache(t)
	seed(t, loader.LeaderboardRepository, "ada", 500, 9)

	if _, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize); err != nil {
		t.Fatalf("top: %v", err)
	}

	// TTL plus jitter stays under 2x the configured TTL.
	mr.FastForward(2 * time.Minute)

	if _, err := cache.TopScores(context.Background(), 9, leaderboard.TopSize); err != nil {
		t.Fatalf("top after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after TTL, loader calls=%d", loader.calls)
	}
}
