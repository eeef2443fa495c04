package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corvidian/backend/internal/cache"
	"github.com/corvidian/backend/internal/db"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:corvidian-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Article{},
		&db.ConsultationLead{},
		&db.NewsletterSubscriber{},
		&db.WelcomeMessage{},
		&db.Campaign{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func newTestComposer(t *testing.T, siteBaseURL string) (*Composer, *cache.Memory, string) {
	t.Helper()
	store := cache.NewMemory(0)
	t.Cleanup(store.Close)
	mediaRoot := t.TempDir()
	composer := NewComposer(store, mediaRoot, "/media", siteBaseURL, 5*time.Minute)
	return composer, store, mediaRoot
}
