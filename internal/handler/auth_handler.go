package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/auth"
	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
)

// AuthServiceInterface defines the interface for auth business logic.
type AuthServiceInterface interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, *service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GoogleBegin(clientRedirectURI string) (string, error)
	GoogleCallback(ctx context.Context, code, state string) (string, error)
	GoogleAuthorize(ouid string) (*service.OAuthLogin, error)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service   AuthServiceInterface
	validator *validator.Validate
	secure    bool // mark cookies Secure in production
}

// NewAuthHandler creates a new AuthHandler with the given service and validator.
func NewAuthHandler(svc AuthServiceInterface, v *validator.Validate, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: svc, validator: v, secure: secureCookies}
}

func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, pair *service.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteNoneMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteNoneMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: name, email and a password of at least 6 characters are required",
		})
	}

	user, err := h.service.Register(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "user with this email exists",
			})
		}
		log.Error().Err(err).Msg("registration failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "registration failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: email and password are required",
		})
	}

	user, pair, err := h.service.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "invalid credentials",
			})
		}
		if errors.Is(err, service.ErrWrongAuthProvider) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "invalid channel of authentication for this user, try others",
			})
		}
		log.Error().Err(err).Msg("login failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "login failed",
		})
	}

	h.setTokenCookies(c, pair)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "login successful",
		"tokens":  pair,
		"user":    user.Public(),
	})
}

// Refresh handles POST /api/auth/refresh-token. The refresh token rotates on
// every use.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies("refreshToken")
	if token == "" {
		token = c.Cookies("auth_rf_token")
	}
	if token == "" {
		token = c.Get("x-refresh-token")
	}

	pair, err := h.service.Refresh(c.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "invalid refresh token",
			})
		}
		log.Error().Err(err).Msg("token refresh failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "token refresh failed",
		})
	}

	h.setTokenCookies(c, pair)
	return c.JSON(fiber.Map{"success": true, "message": "tokens refreshed successfully"})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie("accessToken", "refreshToken")
	return c.JSON(fiber.Map{"success": true, "message": "user logged out successfully"})
}

// WhoAmI handles POST /api/auth/me. Runs behind AuthRequired.
func (h *AuthHandler) WhoAmI(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "user not found",
			})
		}
		log.Error().Err(err).Msg("whoami failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}
	return c.JSON(fiber.Map{"success": true, "user": user.Public()})
}

// GoogleSignIn handles GET /api/auth/login/google: parks the handshake state
// and redirects to the consent page.
func (h *AuthHandler) GoogleSignIn(c *fiber.Ctx) error {
	redirectURI := c.Query("redirect_uri")
	url, err := h.service.GoogleBegin(redirectURI)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "missing the 'redirect_uri' or google sign-in is not configured",
		})
	}
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/callback/google.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "missing 'code' or 'state'",
		})
	}

	redirect, err := h.service.GoogleCallback(c.Context(), code, state)
	if err != nil {
		if errors.Is(err, auth.ErrStateNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "invalid state",
			})
		}
		if errors.Is(err, service.ErrWrongAuthProvider) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "invalid channel of authentication for this user, try others",
			})
		}
		log.Error().Err(err).Msg("google callback failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "google sign-in failed",
		})
	}

	return c.Redirect(redirect, fiber.StatusTemporaryRedirect)
}

// GoogleAuthorize handles POST /api/auth/oauth/authorize: the client trades
// the one-time ouid key for the parked login.
func (h *AuthHandler) GoogleAuthorize(c *fiber.Ctx) error {
	ouid := c.Query("ouid")
	login, err := h.service.GoogleAuthorize(ouid)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid or expired user data id",
		})
	}

	h.setTokenCookies(c, &login.Tokens)
	return c.JSON(fiber.Map{
		"success": true,
		"user":    login.User,
		"tokens":  login.Tokens,
	})
}
