package mail

import (
	"context"
	"log"
)

// LogSender is the development fallback used when no transport API key is
// configured. It records the message instead of delivering it.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("mail (not sent): to=%s subject=%q text=%d bytes html=%d bytes", msg.To, msg.Subject, len(msg.Text), len(msg.HTML))
	return nil
}
