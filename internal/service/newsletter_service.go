package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/db"
)

var (
	ErrWelcomeMessageNotFound = errors.New("welcome message not found")
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrSubjectRequired        = errors.New("subject is required")
)

// NewsletterService manages welcome messages and campaigns: CRUD, hero
// image post-processing on change, and composed-HTML cache
// invalidation on every save.
type NewsletterService struct {
	db        *gorm.DB
	composer  *Composer
	mediaRoot string
}

// NewsletterInput represents fields accepted when creating or updating
// newsletter content records.
type NewsletterInput struct {
	Subject      string
	Body         string
	HeroImage    string
	IsActive     bool       // welcome messages only
	ScheduledFor *time.Time // campaigns only
}

// NewNewsletterService creates a NewsletterService instance.
func NewNewsletterService(gdb *gorm.DB, composer *Composer, mediaRoot string) *NewsletterService {
	return &NewsletterService{db: gdb, composer: composer, mediaRoot: mediaRoot}
}

// ListWelcomeMessages returns welcome messages, most recently updated
// first.
func (s *NewsletterService) ListWelcomeMessages() ([]db.WelcomeMessage, error) {
	var messages []db.WelcomeMessage
	if err := s.db.Order("updated_at desc").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetWelcomeMessage fetches a welcome message by id.
func (s *NewsletterService) GetWelcomeMessage(id uint) (*db.WelcomeMessage, error) {
	var message db.WelcomeMessage
	if err := s.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWelcomeMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// ActiveWelcomeMessage returns the active welcome message, or nil when
// none is configured. Several rows may be flagged active; the most
// recently updated one wins.
func (s *NewsletterService) ActiveWelcomeMessage() (*db.WelcomeMessage, error) {
	var message db.WelcomeMessage
	err := s.db.Where("is_active = ?", true).Order("updated_at desc").First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// CreateWelcomeMessage persists a new welcome message.
func (s *NewsletterService) CreateWelcomeMessage(input NewsletterInput) (*db.WelcomeMessage, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	message := db.WelcomeMessage{
		NewsletterContent: db.NewsletterContent{
			Subject:   subject,
			Body:      input.Body,
			HeroImage: s.processHeroIfChanged("", input.HeroImage),
		},
		IsActive: input.IsActive,
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	s.composer.Invalidate(context.Background(), message.ID)
	return &message, nil
}

// UpdateWelcomeMessage modifies an existing welcome message and drops
// its composed-HTML cache entry.
func (s *NewsletterService) UpdateWelcomeMessage(id uint, input NewsletterInput) (*db.WelcomeMessage, error) {
	message, err := s.GetWelcomeMessage(id)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	message.Subject = subject
	message.Body = input.Body
	message.HeroImage = s.processHeroIfChanged(message.HeroImage, input.HeroImage)
	message.IsActive = input.IsActive

	if err := s.db.Save(message).Error; err != nil {
		return nil, err
	}

	s.composer.Invalidate(context.Background(), message.ID)
	return message, nil
}

// DeleteWelcomeMessage removes a welcome message.
func (s *NewsletterService) DeleteWelcomeMessage(id uint) error {
	message, err := s.GetWelcomeMessage(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(message).Error; err != nil {
		return err
	}
	s.composer.Invalidate(context.Background(), message.ID)
	return nil
}

// ListCampaigns returns campaigns newest first.
func (s *NewsletterService) ListCampaigns() ([]db.Campaign, error) {
	var campaigns []db.Campaign
	if err := s.db.Order("created_at desc").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetCampaign fetches a campaign by id.
func (s *NewsletterService) GetCampaign(id uint) (*db.Campaign, error) {
	var campaign db.Campaign
	if err := s.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign persists a new draft campaign.
func (s *NewsletterService) CreateCampaign(input NewsletterInput) (*db.Campaign, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	campaign := db.Campaign{
		NewsletterContent: db.NewsletterContent{
			Subject:   subject,
			Body:      input.Body,
			HeroImage: s.processHeroIfChanged("", input.HeroImage),
		},
		ScheduledFor: input.ScheduledFor,
	}

	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, err
	}

	s.composer.Invalidate(context.Background(), campaign.ID)
	return &campaign, nil
}

// UpdateCampaign modifies an existing campaign and drops its
// composed-HTML cache entry. The sent flag is not editable here.
func (s *NewsletterService) UpdateCampaign(id uint, input NewsletterInput) (*db.Campaign, error) {
	campaign, err := s.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	campaign.Subject = subject
	campaign.Body = input.Body
	campaign.HeroImage = s.processHeroIfChanged(campaign.HeroImage, input.HeroImage)
	campaign.ScheduledFor = input.ScheduledFor

	if err := s.db.Save(campaign).Error; err != nil {
		return nil, err
	}

	s.composer.Invalidate(context.Background(), campaign.ID)
	return campaign, nil
}

// DeleteCampaign removes a campaign.
func (s *NewsletterService) DeleteCampaign(id uint) error {
	campaign, err := s.GetCampaign(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(campaign).Error; err != nil {
		return err
	}
	s.composer.Invalidate(context.Background(), campaign.ID)
	return nil
}

// processHeroIfChanged compresses the hero image when it differs from
// the stored value. Failures keep the original upload; a save never
// fails because of its image.
func (s *NewsletterService) processHeroIfChanged(stored, next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next == stored {
		return next
	}

	processed, err := ProcessImage(s.mediaRoot, next, HeroMaxWidth)
	if err != nil {
		log.Printf("hero image processing failed for %s: %v", next, err)
		return next
	}
	return processed
}

// WelcomeContent adapts a welcome message for the composer.
func WelcomeContent(message *db.WelcomeMessage) EmailContent {
	return EmailContent{
		ID:        message.ID,
		Subject:   message.Subject,
		Body:      message.Body,
		HeroImage: message.HeroImage,
	}
}

// CampaignContent adapts a campaign for the composer.
func CampaignContent(campaign *db.Campaign) EmailContent {
	return EmailContent{
		ID:        campaign.ID,
		Subject:   campaign.Subject,
		Body:      campaign.Body,
		HeroImage: campaign.HeroImage,
	}
}
