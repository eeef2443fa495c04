package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/corvidian/backend/internal/config"
	"github.com/corvidian/backend/internal/db"
)

// 测试数据生成器
func main() {
	_ = godotenv.Load()

	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createAdminUser()
	createArticles()
	createWelcomeMessage()
	createSubscribers()

	fmt.Println("测试数据生成完成！")
	fmt.Println("用户: admin (密码: admin123)")
	fmt.Println("文章: 3篇测试文章")
	fmt.Println("订阅者: 2个测试邮箱")
}

func createAdminUser() {
	if err := db.EnsureUser("admin", "admin123", "admin@corvidian.io"); err != nil {
		log.Fatal("创建管理员失败:", err)
	}
}

func createArticles() {
	articles := []db.Article{
		{
			Title:       "IPO Outlook 2026",
			Slug:        "ipo-outlook-2026",
			Author:      "Ayu Lestari",
			PublishedAt: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			Content:     "<p>Primary market pipeline for the coming year.</p>",
			Excerpt:     "Primary market pipeline for the coming year.",
		},
		{
			Title:       "Reading a Prospectus",
			Slug:        "reading-a-prospectus",
			Author:      "Ayu Lestari",
			PublishedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
			Content:     "<p>What to look for before subscribing to an offering.</p>",
			Excerpt:     "What to look for before subscribing to an offering.",
		},
		{
			Title:       "Dividend Season Primer",
			Slug:        "dividend-season-primer",
			Author:      "Budi Santoso",
			PublishedAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			Content:     "<p>Payout calendars and what ex-dates mean for your position.</p>",
			Excerpt:     "Payout calendars and what ex-dates mean for your position.",
		},
	}

	for _, article := range articles {
		var count int64
		db.DB.Model(&db.Article{}).Where("slug = ?", article.Slug).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.DB.Create(&article).Error; err != nil {
			log.Fatal("创建文章失败:", err)
		}
	}
}

func createWelcomeMessage() {
	var count int64
	db.DB.Model(&db.WelcomeMessage{}).Count(&count)
	if count > 0 {
		return
	}

	message := db.WelcomeMessage{
		NewsletterContent: db.NewsletterContent{
			Subject: "Welcome to the Corvidian Newsletter",
			Body:    "<p>Thanks for subscribing. Expect one digest per week.</p>",
		},
		IsActive: true,
	}
	if err := db.DB.Create(&message).Error; err != nil {
		log.Fatal("创建欢迎邮件失败:", err)
	}
}

func createSubscribers() {
	for _, email := range []string{"reader-one@example.com", "reader-two@example.com"} {
		var count int64
		db.DB.Model(&db.NewsletterSubscriber{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.DB.Create(&db.NewsletterSubscriber{Email: email, Source: "seed"}).Error; err != nil {
			log.Fatal("创建订阅者失败:", err)
		}
	}
}
