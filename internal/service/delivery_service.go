package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/db"
	"github.com/corvidian/backend/internal/mail"
)

var (
	ErrAdminEmailMissing = errors.New("acting admin has no email on file")
	ErrAdminNotFound     = errors.New("admin user not found")
)

// welcomeFallbackSubject and welcomeFallbackText are sent when no
// active welcome message is configured.
const (
	welcomeFallbackSubject = "Welcome to Corvidian"
	welcomeFallbackText    = "Welcome to the Corvidian newsletter. You're on the list. Expect practical insights in your inbox soon."
)

var notificationMarkdown = goldmark.New()

// DeliveryService orchestrates outbound email: synchronous bulk and
// test sends triggered by admins, and fire-and-forget welcome and
// operator-notification sends on the public API paths.
type DeliveryService struct {
	db          *gorm.DB
	composer    *Composer
	sender      mail.Sender
	dispatcher  *mail.Dispatcher
	subscribers *SubscriberService
	newsletters *NewsletterService
	fromEmail   string
	notifyEmail string
}

// NewDeliveryService creates a DeliveryService instance.
func NewDeliveryService(
	gdb *gorm.DB,
	composer *Composer,
	sender mail.Sender,
	dispatcher *mail.Dispatcher,
	subscribers *SubscriberService,
	newsletters *NewsletterService,
	fromEmail, notifyEmail string,
) *DeliveryService {
	return &DeliveryService{
		db:          gdb,
		composer:    composer,
		sender:      sender,
		dispatcher:  dispatcher,
		subscribers: subscribers,
		newsletters: newsletters,
		fromEmail:   fromEmail,
		notifyEmail: notifyEmail,
	}
}

// SendCampaign mails a campaign to every subscriber, one message per
// recipient. An already-sent campaign or an empty subscriber list
// returns 0 without touching state. Per-recipient failures are logged
// and skipped; after all attempts the campaign is marked sent even when
// nothing got through, persisting only the sent flag and timestamp.
// Returns the number of successful sends.
func (s *DeliveryService) SendCampaign(ctx context.Context, id uint, requestBaseURL string) (int, error) {
	campaign, err := s.newsletters.GetCampaign(id)
	if err != nil {
		return 0, err
	}
	if campaign.IsSent {
		return 0, nil
	}

	recipients, err := s.subscribers.ListEmails()
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	content := CampaignContent(campaign)
	htmlBody := s.composer.ComposeHTML(ctx, content, requestBaseURL)
	plainBody := s.composer.PlainText(content)
	if plainBody == "" {
		plainBody = PlainBody(htmlBody)
	}

	sentCount := 0
	for _, email := range recipients {
		msg := mail.Message{
			From:    s.fromEmail,
			To:      email,
			Subject: campaign.Subject,
			HTML:    htmlBody,
			Text:    plainBody,
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			log.Printf("campaign %d: failed to send to %s: %v", campaign.ID, email, err)
			continue
		}
		sentCount++
	}

	now := time.Now()
	if err := s.db.Model(campaign).
		Select("is_sent", "sent_at").
		Updates(map[string]any{"is_sent": true, "sent_at": now}).Error; err != nil {
		return sentCount, err
	}

	return sentCount, nil
}

// SendTest mails the composed content to the acting admin's own
// address, without mutating any sent state. The admin must have an
// email on file.
func (s *DeliveryService) SendTest(ctx context.Context, content EmailContent, adminID uint, requestBaseURL string) error {
	var admin db.User
	if err := s.db.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	if strings.TrimSpace(admin.Email) == "" {
		return ErrAdminEmailMissing
	}

	htmlBody := s.composer.ComposeHTML(ctx, content, requestBaseURL)
	plainBody := s.composer.PlainText(content)
	if plainBody == "" {
		plainBody = PlainBody(htmlBody)
	}

	return s.sender.Send(ctx, mail.Message{
		From:    s.fromEmail,
		To:      admin.Email,
		Subject: content.Subject,
		HTML:    htmlBody,
		Text:    plainBody,
	})
}

// QueueWelcome enqueues the welcome email for a new subscriber on the
// background path. The caller observes no result; failures are logged
// by the dispatcher.
func (s *DeliveryService) QueueWelcome(subscriberEmail, requestBaseURL string) {
	message, err := s.newsletters.ActiveWelcomeMessage()
	if err != nil {
		log.Printf("welcome send: failed to load active message: %v", err)
		message = nil
	}

	msg := mail.Message{
		From: s.fromEmail,
		To:   subscriberEmail,
	}
	if message != nil {
		content := WelcomeContent(message)
		msg.Subject = message.Subject
		msg.HTML = s.composer.ComposeHTML(context.Background(), content, requestBaseURL)
		msg.Text = s.composer.PlainText(content)
	} else {
		msg.Subject = welcomeFallbackSubject
		msg.Text = welcomeFallbackText
	}

	s.dispatcher.Enqueue(msg)
}

// QueueLeadNotification enqueues the operator notification for a new
// consultation lead.
func (s *DeliveryService) QueueLeadNotification(lead *db.ConsultationLead) {
	if s.notifyEmail == "" {
		return
	}

	markdown := fmt.Sprintf(
		"**New consultation lead**\n\n- Name: %s\n- Email: %s\n- Phone: %s\n- Company: %s\n\n%s\n",
		lead.Name, lead.Email, lead.Phone, lead.Company, lead.Question,
	)
	subject := fmt.Sprintf("New consultation lead: %s (%s)", lead.Name, lead.Company)
	s.queueNotification(subject, markdown)
}

// QueueSubscriberNotification enqueues the operator notification for a
// new newsletter subscriber.
func (s *DeliveryService) QueueSubscriberNotification(subscriber *db.NewsletterSubscriber) {
	if s.notifyEmail == "" {
		return
	}

	markdown := fmt.Sprintf(
		"**New newsletter subscriber**\n\n- Email: %s\n- Source: %s\n",
		subscriber.Email, subscriber.Source,
	)
	subject := fmt.Sprintf("New newsletter subscriber: %s", subscriber.Email)
	s.queueNotification(subject, markdown)
}

// queueNotification renders a markdown notification body into the
// shared email shell and enqueues it. Goldmark escapes embedded markup,
// so user-supplied values cannot inject HTML here.
func (s *DeliveryService) queueNotification(subject, markdown string) {
	var rendered bytes.Buffer
	if err := notificationMarkdown.Convert([]byte(markdown), &rendered); err != nil {
		log.Printf("notification render failed: %v", err)
		rendered.Reset()
	}

	s.dispatcher.Enqueue(mail.Message{
		From:    s.fromEmail,
		To:      s.notifyEmail,
		Subject: subject,
		HTML:    s.composer.Wrap(subject, rendered.String()),
		Text:    strings.TrimSpace(markdown),
	})
}
