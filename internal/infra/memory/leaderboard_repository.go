package memory

import (
	"context"
	"sort"
	"sync"

	"quizzle/internal/domain"
	"quizzle/internal/leaderboard"
)

// LeaderboardRepository is an in-memory implementation of
// leaderboard.Repository. Entries are append-only; ties keep insertion
// order, matching the durable store's id ordering.
type LeaderboardRepository struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{}
}

func (r *LeaderboardRepository) SubmitScore(_ context.Context, entry domain.LeaderboardEntry) (leaderboard.ScoreSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)

	best := 0
	for _, e := range r.entries {
		if e.CategoryID == entry.CategoryID && e.Username == entry.Username && e.Score > best {
			best = e.Score
		}
	}

	return leaderboard.ScoreSnapshot{
		Top:       r.topLocked(entry.CategoryID, "", leaderboard.TopSize),
		BestScore: best,
	}, nil
}

func (r *LeaderboardRepository) TopScores(_ context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topLocked(categoryID, "", limit), nil
}

func (r *LeaderboardRepository) UserTopScores(_ context.Context, categoryID int, username string, limit int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topLocked(categoryID, username, limit), nil
}

func (r *LeaderboardRepository) topLocked(categoryID int, username string, limit int) []domain.LeaderboardEntry {
	matched := make([]domain.LeaderboardEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.CategoryID != categoryID {
			continue
		}
		if username != "" && e.Username != username {
			continue
		}
		matched = append(matched, e)
	}

	// Stable keeps insertion order among equal scores.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
