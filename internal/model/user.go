package model

import "time"

// Roles and auth providers stored on the user row.
const (
	RoleUser       = "USER"
	RoleSuperAdmin = "SUPER_ADMIN"

	ProviderCredentials = "CREDENTIALS"
	ProviderGoogle      = "GOOGLE"
)

// User represents an account. GameCoin is the all-time coin total; the
// per-season score lives in game_seasons and is partitioned by week.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"authProvider"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	GameCoin     int64     `json:"gameCoin"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// RegisterRequest is the DTO for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the DTO for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// PublicUser is the sanitized user shape returned by auth endpoints.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	GameCoin  int64  `json:"gameCoin"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Public converts a full user row into its API-safe shape.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		GameCoin:  u.GameCoin,
		AvatarURL: u.AvatarURL,
	}
}
