package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OnboardingMode selects how self-service registrations are activated.
type OnboardingMode string

const (
	// OnboardingVerify creates unverified admins and emails them a code.
	OnboardingVerify OnboardingMode = "verify"
	// OnboardingDirect creates admins already verified; no email is sent.
	OnboardingDirect OnboardingMode = "direct"
)

// SessionMode selects what a successful login hands back to the client.
type SessionMode string

const (
	// SessionDescriptor returns the plain descriptor; the client re-presents
	// restaurantId on later calls and nothing binds it to the login.
	SessionDescriptor SessionMode = "descriptor"
	// SessionJWT adds a signed, expiring token required by privileged routes.
	SessionJWT SessionMode = "jwt"
)

type Config struct {
	Environment string
	HTTPPort    string

	DatabaseDriver string
	DatabaseDSN    string

	CORSOrigins string

	OnboardingMode  OnboardingMode
	VerificationTTL time.Duration

	SessionMode SessionMode
	JWTSecret   string
	SessionTTL  time.Duration

	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=carta port=5432 sslmode=disable"

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	verificationTTL, err := getDuration("VERIFICATION_CODE_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		OnboardingMode:  OnboardingMode(strings.ToLower(getEnv("ONBOARDING_MODE", string(OnboardingVerify)))),
		VerificationTTL: verificationTTL,
		SessionMode:     SessionMode(strings.ToLower(getEnv("SESSION_MODE", string(SessionDescriptor)))),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionTTL:      sessionTTL,
		MailFrom:        getEnv("MAIL_FROM", "no-reply@carta.local"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        smtpPort,
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the mode switches and the settings each mode depends on.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}

	switch c.OnboardingMode {
	case OnboardingVerify, OnboardingDirect:
	default:
		return fmt.Errorf("ONBOARDING_MODE must be verify or direct, got %q", c.OnboardingMode)
	}
	if c.VerificationTTL <= 0 {
		return fmt.Errorf("VERIFICATION_CODE_TTL must be positive")
	}

	switch c.SessionMode {
	case SessionDescriptor:
	case SessionJWT:
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when SESSION_MODE=jwt")
		}
		if c.SessionTTL <= 0 {
			return fmt.Errorf("SESSION_TTL must be positive")
		}
	default:
		return fmt.Errorf("SESSION_MODE must be descriptor or jwt, got %q", c.SessionMode)
	}

	return nil
}

// RequiresVerification reports whether new self-service admins must verify
// their email before logging in.
func (c Config) RequiresVerification() bool {
	return c.OnboardingMode == OnboardingVerify
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration returns def when key is unset or empty.
func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15m, got %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
