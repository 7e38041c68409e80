// Package email delivers transactional email for the sales pipeline.
package email

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/platform/config"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers the pipeline's transactional emails.
type Sender interface {
	SendLeadWelcomeEmail(ctx context.Context, toEmail, firstName, trackingURL string) error
	SendDealWonEmail(ctx context.Context, toEmail, firstName string, dealValueCents int64) error
}

// NewSender builds the configured sender, falling back to NoopSender when
// email delivery is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender is used when email delivery is disabled. Sends succeed without
// doing anything so the outbox drains normally in development.
type NoopSender struct{}

func (NoopSender) SendLeadWelcomeEmail(ctx context.Context, toEmail, firstName, trackingURL string) error {
	return nil
}

func (NoopSender) SendDealWonEmail(ctx context.Context, toEmail, firstName string, dealValueCents int64) error {
	return nil
}
