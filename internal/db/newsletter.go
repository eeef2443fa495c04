package db

import (
	"time"

	"gorm.io/gorm"
)

// NewsletterContent holds the shared shape of every mailable record:
// a subject line, a rich HTML body, and an optional hero image stored
// as a media-relative path.
type NewsletterContent struct {
	Subject   string `gorm:"size:255;not null"`
	Body      string `gorm:"type:text"`
	HeroImage string `gorm:"size:255"`
}

// WelcomeMessage is the reusable template mailed to each new subscriber.
// Several rows may be flagged active; the most recently updated one wins.
type WelcomeMessage struct {
	gorm.Model
	NewsletterContent
	IsActive bool `gorm:"default:true"`
}

// TableName 返回自定义表名，避免冲突
func (WelcomeMessage) TableName() string {
	return "newsletter_welcome_messages"
}

// Campaign is a one-time bulk email. Once IsSent flips true it stays
// true and further send attempts are no-ops.
type Campaign struct {
	gorm.Model
	NewsletterContent
	IsSent       bool `gorm:"default:false"`
	ScheduledFor *time.Time
	SentAt       *time.Time
}

// TableName 返回自定义表名，避免冲突
func (Campaign) TableName() string {
	return "newsletter_campaigns"
}
