package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/db"
)

// DefaultSubscribeSource tags subscribers that did not declare where
// they signed up.
const DefaultSubscribeSource = "footer"

// SubscriberService manages the newsletter subscriber list.
type SubscriberService struct {
	db *gorm.DB
}

// NewSubscriberService creates a SubscriberService instance.
func NewSubscriberService(gdb *gorm.DB) *SubscriberService {
	return &SubscriberService{db: gdb}
}

// Subscribe upserts a subscriber by email. The boolean reports whether
// the row was newly created; resubscribing is idempotent and keeps the
// first-seen source.
func (s *SubscriberService) Subscribe(email, source string) (*db.NewsletterSubscriber, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, &ValidationError{Field: "email"}
	}

	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSubscribeSource
	}

	var existing db.NewsletterSubscriber
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	subscriber := db.NewsletterSubscriber{Email: email, Source: source}
	if err := s.db.Create(&subscriber).Error; err != nil {
		// A concurrent subscribe may have won the unique index race;
		// treat the existing row as the idempotent outcome.
		var raced db.NewsletterSubscriber
		if lookupErr := s.db.Where("email = ?", email).First(&raced).Error; lookupErr == nil {
			return &raced, false, nil
		}
		return nil, false, err
	}

	return &subscriber, true, nil
}

// ListEmails returns every subscriber email, oldest first.
func (s *SubscriberService) ListEmails() ([]string, error) {
	var emails []string
	if err := s.db.Model(&db.NewsletterSubscriber{}).
		Order("created_at asc").
		Pluck("email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// Count returns the subscriber total for the admin overview.
func (s *SubscriberService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.NewsletterSubscriber{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
