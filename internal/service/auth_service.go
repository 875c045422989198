package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/hackmart/storefront/internal/auth"
	"github.com/hackmart/storefront/internal/model"
)

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*model.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
}

// GoogleProviderInterface is the slice of the Google OAuth provider the
// service consumes. Nil when Google sign-in is not configured.
type GoogleProviderInterface interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, tok *oauth2.Token) (*auth.GoogleUser, error)
}

// TokenPair is an access token plus the opaque refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// OAuthState is the pending-handshake record keyed by the state nonce.
type OAuthState struct {
	ClientRedirectURI string
}

// OAuthLogin is a completed Google sign-in parked until the client collects
// it with the one-time ouid key.
type OAuthLogin struct {
	User   model.PublicUser
	Tokens TokenPair
}

// AuthService provides registration, credential login, token refresh and
// the Google OAuth flow.
type AuthService struct {
	userRepo UserRepositoryInterface
	tokens   *auth.TokenProvider
	google   GoogleProviderInterface
	states   *auth.StateStore[OAuthState]
	logins   *auth.StateStore[OAuthLogin]
}

// NewAuthService creates a new AuthService. google may be nil when Google
// sign-in is not configured; the two state stores hold the OAuth handshake
// state between redirects.
func NewAuthService(
	userRepo UserRepositoryInterface,
	tokens *auth.TokenProvider,
	google GoogleProviderInterface,
	states *auth.StateStore[OAuthState],
	logins *auth.StateStore[OAuthLogin],
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		google:   google,
		states:   states,
		logins:   logins,
	}
}

const bcryptCost = 12

// Register creates a credentials-backed account.
// Returns ErrUserExists if the email is taken.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		AuthProvider: model.ProviderCredentials,
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a token pair. The refresh token is
// persisted on the user row so it can be rotated.
// Returns ErrInvalidCredentials for a wrong email or password and
// ErrWrongAuthProvider when the account was created through OAuth.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *TokenPair, error) {
	if req == nil {
		return nil, nil, ErrInvalidRequest
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.AuthProvider != model.ProviderCredentials {
		return nil, nil, ErrWrongAuthProvider
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the refresh token and issues a fresh access token.
// Returns ErrInvalidRefreshToken when no user holds the presented token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("get user by refresh token: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueTokens(ctx, user)
}

// GetUser returns the account for an authenticated identity.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.tokens.Generate(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refresh := auth.NewRefreshToken()
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GoogleBegin starts the Google handshake: it parks the client's redirect
// URI under a fresh state nonce and returns the consent-page URL.
// Returns ErrInvalidRequest when Google sign-in is not configured or the
// redirect URI is missing.
func (s *AuthService) GoogleBegin(clientRedirectURI string) (string, error) {
	if s.google == nil || clientRedirectURI == "" {
		return "", ErrInvalidRequest
	}

	state := auth.NewRefreshToken()
	s.states.Put(state, OAuthState{ClientRedirectURI: clientRedirectURI})
	return s.google.AuthURL(state), nil
}

// GoogleCallback completes the handshake: verifies the state nonce,
// exchanges the code, finds or creates the account, parks the issued tokens
// under a one-time key and returns the client redirect carrying that key.
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (string, error) {
	if s.google == nil || code == "" || state == "" {
		return "", ErrInvalidRequest
	}

	pending, ok := s.states.Take(state)
	if !ok {
		return "", auth.ErrStateNotFound
	}

	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	info, err := s.google.FetchUserInfo(ctx, tok)
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user != nil && user.AuthProvider != model.ProviderGoogle {
		return "", ErrWrongAuthProvider
	}
	if user == nil {
		user = &model.User{
			Name:         info.DisplayName(),
			Email:        info.Email,
			AvatarURL:    info.Picture,
			Role:         model.RoleUser,
			AuthProvider: model.ProviderGoogle,
		}
		if err := s.userRepo.Insert(ctx, user); err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return "", err
	}

	ouid := auth.NewRefreshToken()
	s.logins.Put(ouid, OAuthLogin{User: user.Public(), Tokens: *pair})

	return fmt.Sprintf("%s?success=true&ouid=%s", pending.ClientRedirectURI, ouid), nil
}

// GoogleAuthorize hands the parked login to the client. The key is
// single-use; a second collection attempt fails.
func (s *AuthService) GoogleAuthorize(ouid string) (*OAuthLogin, error) {
	login, ok := s.logins.Take(ouid)
	if !ok {
		return nil, auth.ErrStateNotFound
	}
	return &login, nil
}
