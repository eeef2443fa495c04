// Package mail abstracts outbound email so transports can be swapped
// without touching business logic, and provides the fire-and-forget
// dispatcher used by request paths that must not block on delivery.
package mail

import "context"

// Message represents a single email to one recipient.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
