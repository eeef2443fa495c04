package db

import "time"

// NewsletterSubscriber 订阅者记录，邮箱唯一，重复订阅保持首次来源
type NewsletterSubscriber struct {
	ID        uint   `gorm:"primarykey"`
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	Source    string `gorm:"size:100;default:footer"`
	CreatedAt time.Time
}

// TableName 返回自定义表名，避免冲突
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
