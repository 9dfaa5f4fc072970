package model

import "time"

// ClientFeedback 客户通过跟踪页提交的反馈
type ClientFeedback struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"not null;index" json:"project_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ClientFeedback) TableName() string {
	return "client_feedbacks"
}
