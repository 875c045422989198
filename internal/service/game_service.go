package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/season"
	"github.com/hackmart/storefront/pkg/database"
)

// ScoreRepositoryInterface defines the interface for season score data access.
type ScoreRepositoryInterface interface {
	UpsertScore(ctx context.Context, tx database.TxQuerier, userID, week, game string, amount int64) error
	GetScore(ctx context.Context, userID, week string) (*model.SeasonScore, error)
	CountHigher(ctx context.Context, week, game string, score int64) (int, error)
	Leaderboard(ctx context.Context, week string, limit, offset int) ([]model.LeaderboardRow, error)
	CountSeason(ctx context.Context, week string) (int, error)
}

// CoinUpdaterInterface is the slice of the user repository the game service
// needs: the transactional coin increment and an existence check.
type CoinUpdaterInterface interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	AddGameCoin(ctx context.Context, tx database.TxQuerier, userID string, amount int64) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// GameService provides business logic for the game score ledger, rank
// computation and the guess mini-game.
type GameService struct {
	pool      TxBeginner
	scoreRepo ScoreRepositoryInterface
	userRepo  CoinUpdaterInterface
	loc       *time.Location
}

// NewGameService creates a new GameService with the given pool and repositories.
func NewGameService(pool *pgxpool.Pool, scoreRepo ScoreRepositoryInterface, userRepo CoinUpdaterInterface, loc *time.Location) *GameService {
	return newGameService(pool, scoreRepo, userRepo, loc)
}

// NewGameServiceWithTxBeginner creates a GameService with a custom TxBeginner.
// Primarily used for testing.
func NewGameServiceWithTxBeginner(pool TxBeginner, scoreRepo ScoreRepositoryInterface, userRepo CoinUpdaterInterface, loc *time.Location) *GameService {
	return newGameService(pool, scoreRepo, userRepo, loc)
}

func newGameService(pool TxBeginner, scoreRepo ScoreRepositoryInterface, userRepo CoinUpdaterInterface, loc *time.Location) *GameService {
	if loc == nil {
		loc = time.UTC
	}
	return &GameService{
		pool:      pool,
		scoreRepo: scoreRepo,
		userRepo:  userRepo,
		loc:       loc,
	}
}

// SeasonLocation returns the timezone season codes are derived in.
func (s *GameService) SeasonLocation() *time.Location {
	return s.loc
}

// CurrentSeason returns the season code for now, or for the given date when
// one is supplied.
func (s *GameService) CurrentSeason(date *time.Time) string {
	if date != nil {
		return season.Code(date.In(s.loc))
	}
	return season.Current(s.loc)
}

// AddScore grants coins to the user: the all-time coin total and the
// per-season score row move together in one transaction, so a crash between
// the two effects cannot leave them out of step.
// Returns ErrUserNotFound if the user does not exist.
func (s *GameService) AddScore(ctx context.Context, userID, seasonCode, game string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRequest
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.userRepo.AddGameCoin(ctx, tx, userID, amount); err != nil {
		return fmt.Errorf("add coin: %w", err)
	}
	if err := s.scoreRepo.UpsertScore(ctx, tx, userID, seasonCode, game, amount); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return tx.Commit(ctx)
}

// GetScore returns the user's score for the season together with their
// all-time coin total.
// Returns ErrScoreNotFound when no contribution exists this season; callers
// must not read that as a zero score.
func (s *GameService) GetScore(ctx context.Context, userID, seasonCode string) (score, total int64, err error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return 0, 0, ErrUserNotFound
	}

	row, err := s.scoreRepo.GetScore(ctx, userID, seasonCode)
	if err != nil {
		return 0, 0, fmt.Errorf("get score: %w", err)
	}
	if row == nil {
		return 0, 0, ErrScoreNotFound
	}

	return row.Score, user.GameCoin, nil
}

// Rank returns the user's 1-based rank within the season: one more than the
// number of rows with a strictly greater score. Ties share a rank. The value
// is a snapshot; concurrent score writes can make it stale the moment it
// returns, so eligibility decisions re-check at commit time.
// Returns ErrScoreNotFound if the user has no score row this season; a user
// without a contribution has no rank at all, not a worst rank.
func (s *GameService) Rank(ctx context.Context, userID, seasonCode, game string) (int, error) {
	row, err := s.scoreRepo.GetScore(ctx, userID, seasonCode)
	if err != nil {
		return 0, fmt.Errorf("get score: %w", err)
	}
	if row == nil {
		return 0, ErrScoreNotFound
	}

	higher, err := s.scoreRepo.CountHigher(ctx, seasonCode, game, row.Score)
	if err != nil {
		return 0, fmt.Errorf("count higher: %w", err)
	}
	return higher + 1, nil
}

// Leaderboard returns one page of the season's standings.
func (s *GameService) Leaderboard(ctx context.Context, seasonCode string, page, limit int) ([]model.LeaderboardRow, model.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, err := s.scoreRepo.Leaderboard(ctx, seasonCode, limit, (page-1)*limit)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("leaderboard: %w", err)
	}
	total, err := s.scoreRepo.CountSeason(ctx, seasonCode)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("count season: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return rows, model.Pagination{
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Limit:      limit,
	}, nil
}

// PlayGuess draws one of the offered values at random and reports whether
// the guess matched. The guess must be among the offered values.
// Returns ErrInvalidRequest for fewer than two values or a guess outside
// them.
func (s *GameService) PlayGuess(values []int, guess int) (bool, error) {
	if len(values) < 2 {
		return false, ErrInvalidRequest
	}
	found := false
	for _, v := range values {
		if v == guess {
			found = true
			break
		}
	}
	if !found {
		return false, ErrInvalidRequest
	}

	drawn := values[rand.IntN(len(values))]
	return drawn == guess, nil
}
