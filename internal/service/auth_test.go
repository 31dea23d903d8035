package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/auth"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository/memory"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/logger"
)

type failingRevoker struct{}

func (failingRevoker) Revoke(context.Context, string, time.Time) error {
	return errors.New("redis down")
}

func (failingRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newTestAuthService(t *testing.T, revoker auth.Revoker) *AuthService {
	t.Helper()
	store := memory.NewStore()
	addUser(t, store, "u1", "vicki@example.com", domain.NoReviews())
	tokens := auth.NewJWTManager("test-secret-test-secret-test-secret", time.Hour)
	return NewAuthService(store.Users(), testHasher, tokens, revoker, logger.Discard())
}

func TestLogin_Success(t *testing.T) {
	svc := newTestAuthService(t, auth.NewMemoryRevoker())

	sess, err := svc.Login(context.Background(), "Vicki@Example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	claims, err := svc.Authenticate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestAuthService(t, auth.NewMemoryRevoker())

	_, err := svc.Login(context.Background(), "vicki@example.com", "wrong")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "password")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Login(context.Background(), "", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestLogout_RevokesToken(t *testing.T) {
	svc := newTestAuthService(t, auth.NewMemoryRevoker())
	sess, err := svc.Login(context.Background(), "vicki@example.com", "password")
	require.NoError(t, err)
	claims, err := svc.Authenticate(context.Background(), sess.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, err = svc.Authenticate(context.Background(), sess.Token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestAuthenticate_RevocationStoreDownRejects(t *testing.T) {
	ok := newTestAuthService(t, auth.NewMemoryRevoker())
	sess, err := ok.Login(context.Background(), "vicki@example.com", "password")
	require.NoError(t, err)

	down := newTestAuthService(t, failingRevoker{})
	down.tokens = ok.tokens
	_, err = down.Authenticate(context.Background(), sess.Token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestLogout_RevocationStoreDownIsUnavailable(t *testing.T) {
	svc := newTestAuthService(t, failingRevoker{})

	err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour))
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestAuthenticate_Garbage(t *testing.T) {
	svc := newTestAuthService(t, auth.NewMemoryRevoker())
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
