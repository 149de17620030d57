package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/todoapi-go/config"
)

// fakeClock is a settable clock for token tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTIssuer:     "todo-api",
		TokenDuration: 4 * time.Hour,
		TimeZone:      "America/Sao_Paulo",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	subjects := []string{"a@example.com", "john.doe@example.com", "ADMIN@example.org"}
	svc := NewTokenService(testAuthConfig())

	for _, subject := range subjects {
		token, err := svc.Issue(&Principal{ID: 1, Email: subject})
		require.NoError(t, err)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
	}
}

func TestTokenExpiresAfterFourHours(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService(testAuthConfig(), WithClock(clock.Now))

	token, err := svc.Issue(&Principal{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", subject)

	clock.Advance(3*time.Hour + 59*time.Minute)
	_, err = svc.Verify(token)
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenClaims(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService(testAuthConfig(), WithClock(func() time.Time { return issued }))

	token, err := svc.Issue(&Principal{ID: 7, Email: "a@example.com"})
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, "todo-api", claims.Issuer)
	assert.Equal(t, "a@example.com", claims.Subject)
	assert.True(t, claims.IssuedAt.Time.Equal(issued))
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Add(4*time.Hour)))
	assert.NotEmpty(t, claims.ID)

	again, err := svc.Issue(&Principal{ID: 7, Email: "a@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "tokens issued in the same second carry distinct IDs")
}

func TestTokenRejectsForeignSecretAndIssuer(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	otherSecret := testAuthConfig()
	otherSecret.JWTSecret = "another-secret"
	forged, err := NewTokenService(otherSecret).Issue(&Principal{Email: "a@example.com"})
	require.NoError(t, err)

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	otherIssuer := testAuthConfig()
	otherIssuer.JWTIssuer = "someone-else"
	foreign, err := NewTokenService(otherIssuer).Issue(&Principal{Email: "a@example.com"})
	require.NoError(t, err)

	_, err = svc.Verify(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRejectsGarbageAndOtherAlgorithms(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims := jwt.RegisteredClaims{
		Issuer:    "todo-api",
		Subject:   "a@example.com",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRejectsFutureIssuedAt(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := NewTokenService(testAuthConfig(), WithClock(clock.Now))
	token, err := issuer.Issue(&Principal{Email: "a@example.com"})
	require.NoError(t, err)

	earlier := NewTokenService(testAuthConfig(), WithClock(func() time.Time {
		return clock.current.Add(-time.Hour)
	}))
	_, err = earlier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCreationFailsWithoutSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	svc := NewTokenService(cfg)

	_, err := svc.Issue(&Principal{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrTokenCreation)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}
