package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carta-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("ONBOARDING_MODE", "")
	t.Setenv("SESSION_MODE", "")
	t.Setenv("VERIFICATION_CODE_TTL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, config.OnboardingVerify, cfg.OnboardingMode)
	require.Equal(t, config.SessionDescriptor, cfg.SessionMode)
	require.Equal(t, 15*time.Minute, cfg.VerificationTTL)
	require.True(t, cfg.RequiresVerification())
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	t.Setenv("ONBOARDING_MODE", "sometimes")
	_, err := config.Load()
	require.ErrorContains(t, err, "ONBOARDING_MODE")
}

func TestJWTModeNeedsLongSecret(t *testing.T) {
	t.Setenv("SESSION_MODE", "jwt")
	t.Setenv("JWT_SECRET", "short")
	_, err := config.Load()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.SessionJWT, cfg.SessionMode)
}

func TestDirectModeSkipsVerification(t *testing.T) {
	t.Setenv("ONBOARDING_MODE", "DIRECT")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.False(t, cfg.RequiresVerification())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	cases := map[string]string{
		"VERIFICATION_CODE_TTL": "abc",
		"SESSION_TTL":           "1 day",
		"SMTP_PORT":             "x",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := config.Load()
			require.ErrorContains(t, err, key)
		})
	}
}

func TestLoadParsesDurationsAndPort(t *testing.T) {
	t.Setenv("VERIFICATION_CODE_TTL", "30m")
	t.Setenv("SMTP_PORT", "2525")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.VerificationTTL)
	require.Equal(t, 2525, cfg.SMTPPort)
}
