package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/pkg/database"
)

// ScoreRepository provides data access for per-season game scores using pgx.
type ScoreRepository struct {
	pool PoolInterface
}

// NewScoreRepository creates a new ScoreRepository with the given pool.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// NewScoreRepositoryWithPool creates a ScoreRepository with a custom pool
// interface. This is primarily used for testing.
func NewScoreRepositoryWithPool(pool PoolInterface) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// UpsertScore adds amount to the user's score for the season, creating the
// row with the amount as its initial value when absent. The increment runs
// in SQL, never as an application-level read-modify-write, so concurrent
// contributions serialize without lost updates. Must run inside the same
// transaction as the coin increment.
func (r *ScoreRepository) UpsertScore(ctx context.Context, tx database.TxQuerier, userID, week, game string, amount int64) error {
	query := `
		INSERT INTO game_seasons (user_id, week, game, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, week) DO UPDATE
		SET score = game_seasons.score + EXCLUDED.score, updated_at = NOW()`

	_, err := tx.Exec(ctx, query, userID, week, game, amount)
	if err != nil {
		return fmt.Errorf("upsert season score: %w", err)
	}
	return nil
}

// GetScore retrieves the user's score row for the season.
// Returns nil, nil if the user has not contributed this season; a missing
// row is not the same as a zero score.
func (r *ScoreRepository) GetScore(ctx context.Context, userID, week string) (*model.SeasonScore, error) {
	query := `
		SELECT id, user_id, week, game, score, created_at, updated_at
		FROM game_seasons
		WHERE user_id = $1 AND week = $2`

	var s model.SeasonScore
	err := r.pool.QueryRow(ctx, query, userID, week).Scan(
		&s.ID, &s.UserID, &s.Week, &s.Game, &s.Score, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get season score: %w", err)
	}
	return &s, nil
}

// CountHigher counts season rows for the same game with a strictly greater
// score. The caller's rank is this count plus one; ties therefore share a
// rank value.
func (r *ScoreRepository) CountHigher(ctx context.Context, week, game string, score int64) (int, error) {
	query := `SELECT COUNT(*) FROM game_seasons WHERE week = $1 AND game = $2 AND score > $3`

	var n int
	if err := r.pool.QueryRow(ctx, query, week, game, score).Scan(&n); err != nil {
		return 0, fmt.Errorf("count higher scores: %w", err)
	}
	return n, nil
}

// Leaderboard returns one page of the season's scores in descending order,
// with the owning user attached.
func (r *ScoreRepository) Leaderboard(ctx context.Context, week string, limit, offset int) ([]model.LeaderboardRow, error) {
	query := `
		SELECT g.user_id, u.name, u.email, g.score, u.game_coin
		FROM game_seasons g
		JOIN users u ON u.id = g.user_id
		WHERE g.week = $1
		ORDER BY g.score DESC, g.updated_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, week, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []model.LeaderboardRow
	for rows.Next() {
		var row model.LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.Name, &row.Email, &row.Score, &row.GameCoin); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	if board == nil {
		board = []model.LeaderboardRow{}
	}
	return board, nil
}

// CountSeason counts all score rows for the season, for pagination.
func (r *ScoreRepository) CountSeason(ctx context.Context, week string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_seasons WHERE week = $1`, week).Scan(&n); err != nil {
		return 0, fmt.Errorf("count season rows: %w", err)
	}
	return n, nil
}
