package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/metrics"
	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
)

// GameServiceInterface defines the interface for game business logic.
type GameServiceInterface interface {
	CurrentSeason(date *time.Time) string
	SeasonLocation() *time.Location
	AddScore(ctx context.Context, userID, seasonCode, game string, amount int64) error
	GetScore(ctx context.Context, userID, seasonCode string) (score, total int64, err error)
	Rank(ctx context.Context, userID, seasonCode, game string) (int, error)
	Leaderboard(ctx context.Context, seasonCode string, page, limit int) ([]model.LeaderboardRow, model.Pagination, error)
	PlayGuess(values []int, guess int) (bool, error)
}

// GameHandler handles HTTP requests for the game endpoints.
type GameHandler struct {
	service   GameServiceInterface
	validator *validator.Validate
}

// NewGameHandler creates a new GameHandler with the given service and validator.
func NewGameHandler(svc GameServiceInterface, v *validator.Validate) *GameHandler {
	return &GameHandler{service: svc, validator: v}
}

// seasonOrCurrent resolves the season query param, defaulting to the current
// season code.
func (h *GameHandler) seasonOrCurrent(c *fiber.Ctx) string {
	if s := c.Query("season"); s != "" {
		return s
	}
	return h.service.CurrentSeason(nil)
}

// GetSeason handles GET /api/game/get-season. An optional RFC 3339 or
// YYYY-MM-DD date query selects the season containing that date.
func (h *GameHandler) GetSeason(c *fiber.Ctx) error {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			// A date-only value names a calendar day in the season timezone,
			// not a UTC instant.
			parsed, err = time.ParseInLocation("2006-01-02", raw, h.service.SeasonLocation())
		}
		if err == nil {
			date = &parsed
		}
		// An unparseable date falls through to the current season, matching
		// the lenient behavior clients already rely on.
	}

	return c.JSON(fiber.Map{"season": h.service.CurrentSeason(date)})
}

// GetScore handles GET /api/game/get-score.
func (h *GameHandler) GetScore(c *fiber.Ctx) error {
	seasonCode := h.seasonOrCurrent(c)

	score, total, err := h.service.GetScore(c.Context(), currentUserID(c), seasonCode)
	if err != nil {
		if errors.Is(err, service.ErrScoreNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "game score not found",
			})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "user not found",
			})
		}
		log.Error().Err(err).Str("season", seasonCode).Msg("failed to get score")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true, "score": score, "total": total})
}

// GetUserRank handles GET /api/game/get-user-rank.
func (h *GameHandler) GetUserRank(c *fiber.Ctx) error {
	seasonCode := h.seasonOrCurrent(c)
	game := c.Query("game", model.GameGuessTheNumber)

	rank, err := h.service.Rank(c.Context(), currentUserID(c), seasonCode, game)
	if err != nil {
		if errors.Is(err, service.ErrScoreNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "no rank this season",
			})
		}
		log.Error().Err(err).Str("season", seasonCode).Msg("failed to get rank")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true, "rank": rank})
}

// GetLeaderboard handles GET /api/game/get-leaderboard.
func (h *GameHandler) GetLeaderboard(c *fiber.Ctx) error {
	seasonCode := h.seasonOrCurrent(c)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	rows, pagination, err := h.service.Leaderboard(c.Context(), seasonCode, page, limit)
	if err != nil {
		log.Error().Err(err).Str("season", seasonCode).Msg("failed to get leaderboard")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"payload":    rows,
		"pagination": pagination,
	})
}

// AddCoin handles POST /api/game/add-coin. Coins land on the all-time total
// and the current season's score in one atomic step.
func (h *GameHandler) AddCoin(c *fiber.Ctx) error {
	var req model.AddCoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid values",
		})
	}

	seasonCode := h.service.CurrentSeason(nil)
	if err := h.service.AddScore(c.Context(), currentUserID(c), seasonCode, req.Game, req.Coin); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "user not found",
			})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "invalid values",
			})
		}
		log.Error().Err(err).
			Str("user_id", currentUserID(c)).
			Int64("coin", req.Coin).
			Msg("failed to add coin")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	metrics.CoinsGranted.Add(float64(req.Coin))
	return c.JSON(fiber.Map{"status": true})
}

// Guess handles POST /api/game/guess: the server draws one of the offered
// values and reports whether the guess matched.
func (h *GameHandler) Guess(c *fiber.Ctx) error {
	var req model.GuessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid guess",
		})
	}

	won, err := h.service.PlayGuess(req.Values, req.Guess)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid guess",
		})
	}

	return c.JSON(fiber.Map{"success": won})
}
