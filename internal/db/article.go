package db

import (
	"time"

	"gorm.io/gorm"
)

// Article 定义了文章模型
type Article struct {
	gorm.Model
	Title       string    `gorm:"size:255;not null"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null"`
	Author      string    `gorm:"size:100;not null"`
	PublishedAt time.Time `gorm:"index"`
	CoverImage  string    `gorm:"size:255"`
	Content     string    `gorm:"type:text"`
	Excerpt     string    `gorm:"type:text"`
}
