package service

import (
	"errors"
	"testing"
)

func TestSubscribeCreatesNewSubscriber(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))

	subscriber, created, err := svc.Subscribe("reader@example.com", "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true for a new email")
	}
	if subscriber.Source != DefaultSubscribeSource {
		t.Fatalf("expected default source, got %q", subscriber.Source)
	}
}

func TestSubscribeIsIdempotentAndKeepsFirstSource(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))

	if _, _, err := svc.Subscribe("reader@example.com", "landing"); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}

	subscriber, created, err := svc.Subscribe("reader@example.com", "popup")
	if err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for an existing email")
	}
	if subscriber.Source != "landing" {
		t.Fatalf("first-seen source must be kept, got %q", subscriber.Source)
	}

	count, err := svc.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestSubscribeRequiresEmail(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))

	_, _, err := svc.Subscribe("   ", "footer")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Error() != "email is required" {
		t.Fatalf("unexpected message %q", validation.Error())
	}
}

func TestListEmailsOldestFirst(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, _, err := svc.Subscribe(email, ""); err != nil {
			t.Fatalf("subscribe %s: %v", email, err)
		}
	}

	emails, err := svc.ListEmails()
	if err != nil {
		t.Fatalf("list emails: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
}
