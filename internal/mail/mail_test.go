package mail_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carta-backend/internal/config"
	"carta-backend/internal/mail"
)

func TestVerificationMessageCarriesCode(t *testing.T) {
	msg := mail.VerificationMessage("owner@x.com", "012345", 15*time.Minute)
	require.Equal(t, "owner@x.com", msg.To)
	require.Contains(t, msg.Body, "012345")
	require.Contains(t, msg.Body, "15 minutes")
}

func TestNewFallsBackToLogSender(t *testing.T) {
	s, err := mail.New(config.Config{Environment: "development", OnboardingMode: config.OnboardingVerify}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &mail.LogSender{}, s)
	require.NoError(t, s.Send(context.Background(), mail.Message{To: "a@x.com"}))
}

func TestNewNeedsSMTPOutsideDevelopment(t *testing.T) {
	_, err := mail.New(config.Config{Environment: "production", OnboardingMode: config.OnboardingVerify}, zap.NewNop())
	require.ErrorContains(t, err, "SMTP_HOST")

	_, err = mail.New(config.Config{Environment: "staging", OnboardingMode: config.OnboardingVerify}, zap.NewNop())
	require.ErrorContains(t, err, "SMTP_HOST")

	// Direct onboarding never mails a code.
	s, err := mail.New(config.Config{Environment: "production", OnboardingMode: config.OnboardingDirect}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &mail.LogSender{}, s)
}

func TestNewBuildsSMTPSender(t *testing.T) {
	s, err := mail.New(config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, MailFrom: "no-reply@x.com"}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &mail.SMTPSender{}, s)
}

func TestRecorder(t *testing.T) {
	r := &mail.Recorder{}
	require.NoError(t, r.Send(context.Background(), mail.Message{To: "a@x.com", Body: "1"}))
	require.NoError(t, r.Send(context.Background(), mail.Message{To: "a@x.com", Body: "2"}))

	last, ok := r.Last("a@x.com")
	require.True(t, ok)
	require.Equal(t, "2", last.Body)
	require.Len(t, r.Sent(), 2)

	_, ok = r.Last("b@x.com")
	require.False(t, ok)

	r.Err = errors.New("relay down")
	require.Error(t, r.Send(context.Background(), mail.Message{To: "b@x.com"}))
	require.Len(t, r.Sent(), 3)
}
