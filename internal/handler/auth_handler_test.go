package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackmart/storefront/internal/auth"
	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
	"github.com/hackmart/storefront/internal/validator"
)

// mockAuthService is a mock implementation of AuthServiceInterface.
type mockAuthService struct {
	registerFn        func(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	loginFn           func(ctx context.Context, req *model.LoginRequest) (*model.User, *service.TokenPair, error)
	refreshFn         func(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	getUserFn         func(ctx context.Context, userID string) (*model.User, error)
	googleBeginFn     func(clientRedirectURI string) (string, error)
	googleCallbackFn  func(ctx context.Context, code, state string) (string, error)
	googleAuthorizeFn func(ouid string) (*service.OAuthLogin, error)
}

func (m *mockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return &model.User{ID: "user-001"}, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *service.TokenPair, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return nil, nil, service.ErrInvalidCredentials
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return nil, service.ErrInvalidRefreshToken
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return nil, service.ErrUserNotFound
}

func (m *mockAuthService) GoogleBegin(clientRedirectURI string) (string, error) {
	if m.googleBeginFn != nil {
		return m.googleBeginFn(clientRedirectURI)
	}
	return "", service.ErrInvalidRequest
}

func (m *mockAuthService) GoogleCallback(ctx context.Context, code, state string) (string, error) {
	if m.googleCallbackFn != nil {
		return m.googleCallbackFn(ctx, code, state)
	}
	return "", auth.ErrStateNotFound
}

func (m *mockAuthService) GoogleAuthorize(ouid string) (*service.OAuthLogin, error) {
	if m.googleAuthorizeFn != nil {
		return m.googleAuthorizeFn(ouid)
	}
	return nil, auth.ErrStateNotFound
}

func newAuthHandlerTestApp(svc AuthServiceInterface) *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(svc, validator.New(), false)

	grp := app.Group("/api/auth")
	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
	grp.Post("/refresh-token", h.Refresh)
	grp.Post("/logout", h.Logout)
	grp.Post("/me", asUser("user-001", model.RoleUser), h.WhoAmI)
	grp.Get("/login/google", h.GoogleSignIn)
	grp.Get("/callback/google", h.GoogleCallback)
	grp.Post("/oauth/authorize", h.GoogleAuthorize)

	return app
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name": "Ada", "email": "ada@example.com", "password": "pw123456"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "user-001", body["userId"])
}

func TestRegisterEndpoint_InvalidBody(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	tests := []struct {
		name    string
		payload string
	}{
		{name: "short password", payload: `{"name": "Ada", "email": "ada@example.com", "password": "pw"}`},
		{name: "bad email", payload: `{"name": "Ada", "email": "not-an-email", "password": "pw123456"}`},
		{name: "blank name", payload: `{"name": "   ", "email": "ada@example.com", "password": "pw123456"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.payload))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
			return nil, service.ErrUserExists
		},
	}
	app := newAuthHandlerTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name": "Ada", "email": "ada@example.com", "password": "pw123456"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "user with this email exists", body["message"])
}

func TestLoginEndpoint_SetsCookies(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, req *model.LoginRequest) (*model.User, *service.TokenPair, error) {
			return &model.User{ID: "user-001", Email: req.Email, Role: model.RoleUser},
				&service.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-uuid"},
				nil
		},
	}
	app := newAuthHandlerTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "ada@example.com", "password": "pw123456"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)
	assert.Equal(t, "access-jwt", access.Value)
	assert.True(t, access.HttpOnly, "tokens must not be readable by page scripts")

	refresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-uuid", refresh.Value)
}

func TestLoginEndpoint_WrongProvider(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, req *model.LoginRequest) (*model.User, *service.TokenPair, error) {
			return nil, nil, service.ErrWrongAuthProvider
		},
	}
	app := newAuthHandlerTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "ada@example.com", "password": "pw123456"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid channel of authentication for this user, try others", body["message"])
}

func TestRefreshEndpoint_ReadsCookieThenHeader(t *testing.T) {
	var gotToken string
	svc := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
			gotToken = refreshToken
			return &service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}
	app := newAuthHandlerTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "cookie-token"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cookie-token", gotToken)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.Header.Set("x-refresh-token", "header-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "header-token", gotToken)
}

func TestRefreshEndpoint_Invalid(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWhoAmI(t *testing.T) {
	svc := &mockAuthService{
		getUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Name: "Ada", Email: "ada@example.com", PasswordHash: "bcrypt-hash"}, nil
		},
	}
	app := newAuthHandlerTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/me", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	_, leaked := user["passwordHash"]
	assert.False(t, leaked, "the sanitized shape carries no secrets")
}

func TestGoogleSignIn_Redirects(t *testing.T) {
	svc := &mockAuthService{
		googleBeginFn: func(clientRedirectURI string) (string, error) {
			assert.Equal(t, "https://shop.example.com/done", clientRedirectURI)
			return "https://accounts.example.com/consent?state=abc", nil
		},
	}
	app := newAuthHandlerTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/auth/login/google?redirect_uri=https%3A%2F%2Fshop.example.com%2Fdone", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://accounts.example.com/consent?state=abc", resp.Header.Get(fiber.HeaderLocation))
}

func TestGoogleSignIn_MissingRedirectURI(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/login/google", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoogleCallback_InvalidState(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/auth/callback/google?code=auth-code&state=forged", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid state", body["message"])
}

func TestGoogleAuthorize(t *testing.T) {
	svc := &mockAuthService{
		googleAuthorizeFn: func(ouid string) (*service.OAuthLogin, error) {
			assert.Equal(t, "one-time-key", ouid)
			return &service.OAuthLogin{
				User:   model.PublicUser{ID: "user-001", Email: "g@example.com"},
				Tokens: service.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-uuid"},
			}, nil
		},
	}
	app := newAuthHandlerTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/oauth/authorize?ouid=one-time-key", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "g@example.com", user["email"])
	require.NotNil(t, cookieByName(resp, "accessToken"))
}

func TestGoogleAuthorize_SpentKey(t *testing.T) {
	app := newAuthHandlerTestApp(&mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/oauth/authorize?ouid=spent", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
