package db

import "time"

// ConsultationLead 保存咨询表单提交的线索，只追加不修改
type ConsultationLead struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:150;not null"`
	Email     string `gorm:"size:254;not null"`
	Phone     string `gorm:"size:30;not null"`
	Company   string `gorm:"size:200;not null"`
	Question  string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName 返回自定义表名，避免冲突
func (ConsultationLead) TableName() string {
	return "consultation_leads"
}
