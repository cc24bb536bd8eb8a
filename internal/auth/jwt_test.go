package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emailLookup map[string]*domain.Gamer

func (l emailLookup) FindByEmail(_ context.Context, email string) (*domain.Gamer, error) {
	if g, ok := l[email]; ok {
		return g, nil
	}
	return nil, domain.ErrUserNotFound
}

func newTestService(ttl time.Duration) *Service {
	return NewService(&config.AuthConfig{Secret: "test-secret", Issuer: "test", TokenTTL: ttl})
}

func TestIssueAndParse(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.IssueToken("alice@example.com")
	require.NoError(t, err)

	subject, err := svc.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, err := svc.IssueToken("alice@example.com")
	require.NoError(t, err)

	_, err = svc.Subject(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	token, err := newTestService(time.Hour).IssueToken("alice@example.com")
	require.NoError(t, err)

	other := NewService(&config.AuthConfig{Secret: "other", TokenTTL: time.Hour})
	_, err = other.Subject(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResolveCaller(t *testing.T) {
	svc := newTestService(time.Hour)
	resolver := NewResolver(svc, emailLookup{
		"alice@example.com": domain.NewGamer("g-1", "alice", "alice@example.com"),
	})
	ctx := context.Background()

	token, err := svc.IssueToken("alice@example.com")
	require.NoError(t, err)
	id, err := resolver.ResolveCaller(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "g-1", id)

	ghost, err := svc.IssueToken("ghost@example.com")
	require.NoError(t, err)
	_, err = resolver.ResolveCaller(ctx, ghost)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	_, err = resolver.ResolveCaller(ctx, "garbage")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
