package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail map[string]bool
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To] {
		return errors.New("transport refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	emails := make([]string, 0, len(s.sent))
	for _, msg := range s.sent {
		emails = append(emails, msg.To)
	}
	return emails
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 2, 8)

	for i := 0; i < 5; i++ {
		d.Enqueue(Message{To: "subscriber@example.com", Subject: "hi"})
	}
	d.Close()

	if got := len(sender.recipients()); got != 5 {
		t.Fatalf("expected 5 deliveries, got %d", got)
	}
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"broken@example.com": true}}
	d := NewDispatcher(sender, 1, 4)

	d.Enqueue(Message{To: "broken@example.com"})
	d.Enqueue(Message{To: "fine@example.com"})
	d.Close()

	emails := sender.recipients()
	if len(emails) != 1 || emails[0] != "fine@example.com" {
		t.Fatalf("expected only the healthy recipient, got %v", emails)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	sender := &blockingSender{release: block}
	d := NewDispatcher(sender, 1, 1)

	// First message occupies the worker, second fills the queue, the
	// rest must be dropped without blocking the caller.
	for i := 0; i < 10; i++ {
		d.Enqueue(Message{To: "subscriber@example.com"})
	}
	close(block)
	d.Close()

	if sender.count > 2 {
		t.Fatalf("expected at most 2 deliveries, got %d", sender.count)
	}
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, 4)
	d.Close()

	// A late Enqueue must be dropped, not panic on the closed queue.
	d.Enqueue(Message{To: "late@example.com"})

	if got := len(sender.recipients()); got != 0 {
		t.Fatalf("expected no deliveries after close, got %d", got)
	}
}

type blockingSender struct {
	release chan struct{}
	count   int
}

func (s *blockingSender) Send(_ context.Context, _ Message) error {
	<-s.release
	s.count++
	return nil
}
