package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/config"
	"invoicer/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(&config.AuthConfig{Secret: "s3cret", Issuer: "invoicer", TokenTTL: time.Minute})

	token, err := m.Issue("scheduler")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler", claims.Subject)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager(&config.AuthConfig{Secret: "one", Issuer: "invoicer"})
	verifier := NewTokenManager(&config.AuthConfig{Secret: "two", Issuer: "invoicer"})

	token, err := issuer.Issue("x")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(&config.AuthConfig{Secret: "s3cret", Issuer: "invoicer", TokenTTL: time.Minute})
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	token, err := m.Issue("x")
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := NewTokenManager(&config.AuthConfig{Secret: "s3cret"})
	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
