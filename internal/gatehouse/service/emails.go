package service

import (
	"context"
	"log/slog"
)

// Emails is the outbound email boundary. Real delivery is an external
// collaborator; the service only depends on this interface and treats
// send failures as non-fatal.
type Emails interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendVerification(ctx context.Context, to, username, token string) error
}

// LogEmails is the default sender: it records what would have been
// sent. Useful in dev and tests, and a safe fallback when no real
// sender is configured.
type LogEmails struct {
	Logger *slog.Logger
}

func (s *LogEmails) SendWelcome(ctx context.Context, to, username string) error {
	s.Logger.Info("email: welcome", "to", to, "username", username)
	return nil
}

func (s *LogEmails) SendVerification(ctx context.Context, to, username, token string) error {
	s.Logger.Info("email: verification", "to", to, "username", username, "token", token)
	return nil
}
