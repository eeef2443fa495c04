package handler

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/cache"
	"github.com/corvidian/backend/internal/config"
	"github.com/corvidian/backend/internal/mail"
	"github.com/corvidian/backend/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	store       cache.Store
	articles    *service.ArticleService
	leads       *service.LeadService
	subscribers *service.SubscriberService
	newsletters *service.NewsletterService
	delivery    *service.DeliveryService

	cacheTTL       time.Duration
	siteBaseURL    string
	mediaRoot      string
	mediaURLPath   string
	whatsAppNumber string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, store cache.Store, sender mail.Sender, dispatcher *mail.Dispatcher, cfg config.AppConfig) *API {
	composer := service.NewComposer(store, cfg.MediaRoot, cfg.MediaURLPath, cfg.SiteBaseURL, cfg.CacheTTL)
	subscribers := service.NewSubscriberService(gdb)
	newsletters := service.NewNewsletterService(gdb, composer, cfg.MediaRoot)
	delivery := service.NewDeliveryService(
		gdb, composer, sender, dispatcher,
		subscribers, newsletters,
		cfg.DefaultFromEmail, cfg.NotifyEmail,
	)

	return &API{
		db:             gdb,
		store:          store,
		articles:       service.NewArticleService(gdb, store, cfg.MediaRoot),
		leads:          service.NewLeadService(gdb),
		subscribers:    subscribers,
		newsletters:    newsletters,
		delivery:       delivery,
		cacheTTL:       cfg.CacheTTL,
		siteBaseURL:    strings.TrimRight(cfg.SiteBaseURL, "/"),
		mediaRoot:      cfg.MediaRoot,
		mediaURLPath:   strings.TrimRight(cfg.MediaURLPath, "/"),
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

// DB exposes the underlying gorm instance for tests.
func (a *API) DB() *gorm.DB {
	return a.db
}
