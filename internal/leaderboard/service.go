// Package leaderboard persists submitted scores and computes category
// rankings and personal records.
package leaderboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"quizzle/internal/domain"
)

// TopSize is how many entries a category board exposes.
const TopSize = 10

// ScoreSnapshot is what the repository observed immediately after an
// insert: the category's top entries and the submitter's best score in
// that category. BestScore includes the just-inserted row.
type ScoreSnapshot struct {
	Top       []domain.LeaderboardEntry
	BestScore int
}

// Repository stores leaderboard entries. SubmitScore must guarantee the
// returned snapshot observes the inserted entry (read-your-writes).
type Repository interface {
	SubmitScore(ctx context.Context, entry domain.LeaderboardEntry) (ScoreSnapshot, error)
	TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error)
	UserTopScores(ctx context.Context, categoryID int, username string, limit int) ([]domain.LeaderboardEntry, error)
}

// Cache is an optional read-path cache for the global per-category
// board. It is invalidated on every submit for that category.
type Cache interface {
	TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error)
	Invalidate(ctx context.Context, categoryID int) error
}

type Config struct {
	Repo   Repository
	Cache  Cache
	Logger *zap.Logger
}

type Service struct {
	repo  Repository
	cache Cache
	log   *zap.Logger

	mu          sync.Mutex
	subscribers map[int]map[chan []domain.LeaderboardEntry]struct{}
}

func NewService(c Config) *Service {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &Service{
		repo:        c.Repo,
		cache:       c.Cache,
		log:         c.Logger,
		subscribers: make(map[int]map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// SubmitScore appends a new entry and reports where it landed. The rank
// is the 1-based position of the first top-10 entry matching this
// username and exact score, or -1 when the score missed the board.
// IsPersonalRecord is true when the score ties or beats the user's best
// in the category (the best is read after the insert, so a submission
// equal to the all-time max always counts as a record).
func (s *Service) SubmitScore(ctx context.Context, username string, score, categoryID int) (domain.SubmitResult, error) {
	if username == "" {
		return domain.SubmitResult{}, errors.New("leaderboard: username is required")
	}
	if score < 0 {
		return domain.SubmitResult{}, errors.New("leaderboard: score must be non-negative")
	}

	snap, err := s.repo.SubmitScore(ctx, domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		CategoryID: categoryID,
	})
	if err != nil {
		return domain.SubmitResult{}, err
	}

	position := -1
	for i, e := range snap.Top {
		if e.Username == username && e.Score == score {
			position = i + 1
			break
		}
	}

	result := domain.SubmitResult{
		Position:         position,
		IsPersonalRecord: score >= snap.BestScore,
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, categoryID); err != nil {
			s.log.Warn("leaderboard cache invalidation failed",
				zap.Int("category", categoryID), zap.Error(err))
		}
	}

	s.broadcast(categoryID, snap.Top)

	s.log.Info("score submitted",
		zap.String("username", username),
		zap.Int("score", score),
		zap.Int("category", categoryID),
		zap.Int("position", result.Position),
		zap.Bool("personal_record", result.IsPersonalRecord))
	return result, nil
}

// GetLeaderboard returns the category's top 10 sorted by score
// descending; with a username it returns only that user's top entries.
func (s *Service) GetLeaderboard(ctx context.Context, categoryID int, username string) ([]domain.LeaderboardEntry, error) {
	if username != "" {
		return s.repo.UserTopScores(ctx, categoryID, username, TopSize)
	}
	if s.cache != nil {
		return s.cache.TopScores(ctx, categoryID, TopSize)
	}
	return s.repo.TopScores(ctx, categoryID, TopSize)
}

// Subscribe streams the category's top entries whenever a new score
// lands there. The caller must invoke cancel to avoid leaks.
func (s *Service) Subscribe(categoryID int) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	s.mu.Lock()
	subs, ok := s.subscribers[categoryID]
	if !ok {
		subs = make(map[chan []domain.LeaderboardEntry]struct{})
		s.subscribers[categoryID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[categoryID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, categoryID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Service) broadcast(categoryID int, top []domain.LeaderboardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[categoryID] {
		select {
		case ch <- top:
		default:
			// Drop the stale board so a slow client never blocks a submit.
			select {
			case <-ch:
			default:
			}
			ch <- top
		}
	}
}
