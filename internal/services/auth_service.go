package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pollroom/internal/config"
	"pollroom/internal/domain/user"
	"pollroom/internal/repository"
	pollroom_errors "pollroom/pkg/errors"
)

// AuthCodeStore is the one-time OAuth code exchange boundary. The Redis
// implementation lives in internal/redis.
type AuthCodeStore interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Consume(ctx context.Context, code string) (uuid.UUID, error)
}

// AuthService is the identity provider boundary: it issues and verifies
// sessions and hands every other component an opaque stable user id.
type AuthService struct {
	users     repository.UserRepository
	codes     AuthCodeStore
	providers map[string]string
	baseURL   string
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(users repository.UserRepository, codes AuthCodeStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		codes:     codes,
		providers: cfg.Auth.OAuthProviders,
		baseURL:   cfg.Server.BaseURL,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		accessTTL: time.Duration(cfg.Auth.AccessTTLHours) * time.Hour,
	}
}

type Session struct {
	AccessToken string
	ExpiresIn   int64
	UserID      uuid.UUID
	Email       string
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// SignUp registers a new user and issues a session.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return Session{}, pollroom_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.issueSession(*u)
}

// SignInWithPassword verifies credentials and issues a session. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pollroom_errors.ErrNotFound) {
			return Session{}, pollroom_errors.ErrUnauthorized
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, pollroom_errors.ErrUnauthorized
	}
	return s.issueSession(u)
}

// SignInWithOAuth returns the provider's authorize URL carrying our
// callback with the post-login redirect preserved.
func (s *AuthService) SignInWithOAuth(provider, redirectTo string) (string, error) {
	authorize, ok := s.providers[provider]
	if !ok {
		return "", pollroom_errors.ErrInvalidInput
	}

	callback := s.baseURL + "/auth/callback"
	if redirectTo != "" {
		callback += "?redirect=" + url.QueryEscape(redirectTo)
	}

	u, err := url.Parse(authorize)
	if err != nil {
		return "", pollroom_errors.ErrInvalidInput
	}
	q := u.Query()
	q.Set("redirect_uri", callback)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeAuthCode turns a one-time code into a session.
func (s *AuthService) ExchangeAuthCode(ctx context.Context, code string) (Session, error) {
	if s.codes == nil {
		return Session{}, pollroom_errors.ErrUnavailable
	}
	userID, err := s.codes.Consume(ctx, code)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pollroom_errors.ErrNotFound) {
			return Session{}, pollroom_errors.ErrUnauthorized
		}
		return Session{}, err
	}
	return s.issueSession(u)
}

// ParseAccessToken validates a session token and returns its claims.
func (s *AuthService) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	if tokenStr == "" {
		return nil, pollroom_errors.ErrUnauthorized
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, pollroom_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueSession(u user.User) (Session, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return Session{}, err
	}

	return Session{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		UserID:      u.ID,
		Email:       u.Email,
	}, nil
}
