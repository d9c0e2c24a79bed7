package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	s, err := NewService(Config{
		Durable:  storage.NewMemoryBackend(),
		Secret:   []byte("test-secret"),
		DeviceID: "device_test",
		Logger:   logging.NewTextLogger(io.Discard, slog.LevelDebug),
		Now:      now,
	})
	require.NoError(t, err)
	require.NoError(t, s.Bootstrap(context.Background()))
	return s
}

func TestLogin_AdminRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil)

	token, err := s.Login(ctx, "admin", []byte("admin123"))
	require.NoError(t, err)

	session, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.True(t, session.IsAdmin())
	assert.True(t, session.Premium)
}

func TestLogin_RegularUserIsNotAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil)

	token, err := s.Login(ctx, "user", []byte("user123"))
	require.NoError(t, err)

	session, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.False(t, session.IsAdmin())
	assert.False(t, session.Premium)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil)

	_, err := s.Login(ctx, "admin", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = s.Login(ctx, "nobody", []byte("admin123"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	_, err := s.ParseToken("not.a.token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := &clock
	s := newTestService(t, func() time.Time { return *now })

	token, err := s.Login(ctx, "admin", []byte("admin123"))
	require.NoError(t, err)

	later := clock.Add(DefaultTokenTTL + time.Hour)
	now = &later

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestBootstrap_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil)

	// A second bootstrap must not clobber existing accounts.
	require.NoError(t, s.Bootstrap(ctx))

	accounts, err := s.loadAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestCanAccess(t *testing.T) {
	t.Parallel()

	premium := models.Video{IsPremium: true}
	public := models.Video{}

	premiumSession := &Session{Username: "admin", Role: RoleAdmin, Premium: true}
	freeSession := &Session{Username: "user", Role: RoleUser}

	assert.True(t, CanAccess(public, nil))
	assert.True(t, CanAccess(public, freeSession))
	assert.False(t, CanAccess(premium, nil))
	assert.False(t, CanAccess(premium, freeSession))
	assert.True(t, CanAccess(premium, premiumSession))
}
