package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	MediaRoot         string
	MediaURLPath      string
	SiteBaseURL       string
	DefaultFromEmail  string
	NotifyEmail       string
	WhatsAppNumber    string
	RedisURL          string
	ResendAPIKey      string
	CacheTTL          time.Duration
	SuperRootUserName string
	SuperRootPassword string
	SuperRootEmail    string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "corvidian.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "corvidian-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	mediaRoot := strings.TrimSpace(os.Getenv("MEDIA_ROOT"))
	if mediaRoot == "" {
		mediaRoot = "media"
	}

	mediaURLPath := strings.TrimSpace(os.Getenv("MEDIA_URL_PATH"))
	if mediaURLPath == "" {
		mediaURLPath = "/media"
	}

	defaultFromEmail := strings.TrimSpace(os.Getenv("DEFAULT_FROM_EMAIL"))
	if defaultFromEmail == "" {
		defaultFromEmail = "newsletter@corvidian.io"
	}

	notifyEmail := strings.TrimSpace(os.Getenv("NOTIFY_EMAIL"))
	if notifyEmail == "" {
		notifyEmail = defaultFromEmail
	}

	cacheTTL := 300 * time.Second
	if raw := strings.TrimSpace(os.Getenv("CACHE_TTL")); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cacheTTL = time.Duration(seconds) * time.Second
		}
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      databasePath,
		SessionSecret:     sessionSecret,
		GinMode:           ginMode,
		MediaRoot:         mediaRoot,
		MediaURLPath:      mediaURLPath,
		SiteBaseURL:       strings.TrimSpace(os.Getenv("SITE_BASE_URL")),
		DefaultFromEmail:  defaultFromEmail,
		NotifyEmail:       notifyEmail,
		WhatsAppNumber:    strings.TrimSpace(os.Getenv("WHATSAPP_NUMBER")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		ResendAPIKey:      strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		CacheTTL:          cacheTTL,
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
		SuperRootEmail:    strings.TrimSpace(os.Getenv("SUPER_ROOT_EMAIL")),
	}
}
