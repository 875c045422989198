package model

import "time"

// GameGuessTheNumber is the only game currently shipped. Scores are stored
// per game type so future games can share the leaderboard tables.
const GameGuessTheNumber = "GUESS_THE_NUMBER"

// SeasonScore is a per-user, per-season score row. One row per
// (user, week) pair; the score only ever grows.
type SeasonScore struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Week      string    `json:"week"`
	Game      string    `json:"game"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeaderboardRow is one leaderboard entry with the owning user attached.
type LeaderboardRow struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Score    int64  `json:"score"`
	GameCoin int64  `json:"gameCoin"`
}

// Pagination describes a leaderboard page.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Limit      int `json:"limit"`
}

// AddCoinRequest is the DTO for POST /api/game/add-coin.
type AddCoinRequest struct {
	Coin int64  `json:"coin" validate:"required,gt=0"`
	Game string `json:"game" validate:"required,oneof=GUESS_THE_NUMBER"`
}

// GuessRequest is the DTO for POST /api/game/guess. The server picks one of
// the offered values at random and reports whether the guess matched.
type GuessRequest struct {
	Values []int `json:"values" validate:"required,min=2,dive,gte=0"`
	Guess  int   `json:"guess" validate:"gte=0"`
}
