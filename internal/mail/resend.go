package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// ResendSender implements Sender using the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender authenticated with the given API key.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}
