package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/auth"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// Session is an issued access token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService logs users in and out and authenticates bearer tokens.
type AuthService struct {
	users   repository.UserRepository
	hasher  Hasher
	tokens  *auth.JWTManager
	revoker auth.Revoker
	logger  *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users repository.UserRepository, hasher Hasher, tokens *auth.JWTManager, revoker auth.Revoker, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, revoker: revoker, logger: logger}
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, storeError("login", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, claims, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &Session{Token: token, UserID: user.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate validates a bearer token and rejects revoked ones. Failures
// to reach the revocation store reject the token too.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "token revocation check failed",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unauthorized("unable to verify token")
	}
	if revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	return claims, nil
}

// Logout revokes the token with the given id until it expires.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "token revocation failed",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		return apperrors.ServiceUnavailable("token revocation is unavailable", err)
	}
	s.logger.InfoContext(ctx, "token revoked", slog.String("token_id", tokenID))
	return nil
}
