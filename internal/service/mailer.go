package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
)

// Mailer is the boundary to the transactional email collaborator. Delivery
// itself is external to this service.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, rawToken string) error
}

// LogMailer records outbound mail instead of delivering it. It stands in for
// the external provider in development and tests.
type LogMailer struct {
	logger *zap.Logger
	cfg    config.MailConfig
}

// NewLogMailer constructs the stub mailer.
func NewLogMailer(logger *zap.Logger, cfg config.MailConfig) *LogMailer {
	return &LogMailer{logger: logger, cfg: cfg}
}

// SendPasswordReset logs the reset link that would be emailed.
func (m *LogMailer) SendPasswordReset(_ context.Context, toEmail, rawToken string) error {
	resetURL := fmt.Sprintf("%s?token=%s", m.cfg.ResetBaseURL, rawToken)
	m.logger.Info("password reset email",
		zap.String("from", m.cfg.From),
		zap.String("to", toEmail),
		zap.String("reset_url", resetURL),
	)
	return nil
}
