package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizzle/internal/domain"
	"quizzle/internal/leaderboard"
)

// LeaderboardRepository persists entries in Postgres. The submit path
// runs insert and rank reads in one transaction so the snapshot always
// observes the just-written row.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

func (r *LeaderboardRepository) SubmitScore(ctx context.Context, entry domain.LeaderboardEntry) (snap leaderboard.ScoreSnapshot, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return snap, fmt.Errorf("begin submit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO leaderboard_entries (username, score, category) VALUES ($1, $2, $3)`,
		entry.Username, entry.Score, entry.CategoryID)
	if err != nil {
		return snap, fmt.Errorf("insert entry: %w", err)
	}

	snap.Top, err = queryTop(ctx, tx, entry.CategoryID, "", leaderboard.TopSize)
	if err != nil {
		return snap, fmt.Errorf("read top: %w", err)
	}

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(score), 0) FROM leaderboard_entries WHERE username = $1 AND category = $2`,
		entry.Username, entry.CategoryID).Scan(&snap.BestScore)
	if err != nil {
		return snap, fmt.Errorf("read best score: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return snap, fmt.Errorf("commit submit: %w", err)
	}
	return snap, nil
}

func (r *LeaderboardRepository) TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error) {
	return queryTop(ctx, r.pool, categoryID, "", limit)
}

func (r *LeaderboardRepository) UserTopScores(ctx context.Context, categoryID int, username string, limit int) ([]domain.LeaderboardEntry, error) {
	return queryTop(ctx, r.pool, categoryID, username, limit)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// queryTop orders by score descending with id as the tie-break, so
// equal scores rank in insertion order.
func queryTop(ctx context.Context, q querier, categoryID int, username string, limit int) ([]domain.LeaderboardEntry, error) {
	const stmt = `
SELECT username, score, category
FROM leaderboard_entries
WHERE category = $1 AND ($2 = '' OR username = $2)
ORDER BY score DESC, id ASC
LIMIT $3;`

	rows, err := q.Query(ctx, stmt, categoryID, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Score, &e.CategoryID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
