package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/corvidian/backend/internal/cache"
	"github.com/corvidian/backend/internal/config"
	"github.com/corvidian/backend/internal/db"
	"github.com/corvidian/backend/internal/handler"
	"github.com/corvidian/backend/internal/mail"
	"github.com/corvidian/backend/internal/router"
)

func main() {
	// .env 缺失时直接使用进程环境变量
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保超级管理员账号存在
	if cfg.SuperRootUserName != "" && cfg.SuperRootPassword != "" {
		if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword, cfg.SuperRootEmail); err != nil {
			log.Fatalf("failed to ensure super root user: %v", err)
		}
	}

	store, err := newCacheStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}

	sender := newSender(cfg)
	dispatcher := mail.NewDispatcher(sender, 0, 0)
	defer dispatcher.Close()

	api := handler.NewAPI(db.DB, store, sender, dispatcher, cfg)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// newCacheStore 优先使用 Redis，未配置时退回进程内缓存。
func newCacheStore(cfg config.AppConfig) (cache.Store, error) {
	if cfg.RedisURL != "" {
		store, err := cache.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Println("cache: using redis backend")
		return store, nil
	}
	log.Println("cache: using in-memory backend")
	return cache.NewMemory(cfg.CacheTTL), nil
}

// newSender 在未配置 Resend 时退回日志发送器，方便本地开发。
func newSender(cfg config.AppConfig) mail.Sender {
	if cfg.ResendAPIKey != "" {
		return mail.NewResendSender(cfg.ResendAPIKey)
	}
	log.Println("mail: RESEND_API_KEY not set, logging outbound email instead")
	return mail.LogSender{}
}
