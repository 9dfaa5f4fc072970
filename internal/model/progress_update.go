package model

import (
	"time"

	"project-tracker/pkg/constants"
)

// ProgressUpdate 图文进度说明, 可挂在日志上, 也可独立存在
type ProgressUpdate struct {
	ID          int64                  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64                  `gorm:"not null;index" json:"project_id"`
	Description string                 `gorm:"type:text;not null" json:"description"`
	Phase       constants.ProjectPhase `gorm:"size:20;not null" json:"phase"`
	CreatedAt   time.Time              `gorm:"not null;autoCreateTime;index" json:"created_at"`

	Images []ProgressUpdateImage `gorm:"foreignKey:ProgressUpdateID" json:"images,omitempty"`
	Links  []ProgressUpdateLink  `gorm:"foreignKey:ProgressUpdateID" json:"links,omitempty"`
}

func (ProgressUpdate) TableName() string {
	return "progress_updates"
}

// ProgressUpdateImage 进度图片, SortOrder 保持上传顺序
type ProgressUpdateImage struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProgressUpdateID int64     `gorm:"not null;index" json:"progress_update_id"`
	FileURL          string    `gorm:"column:file_url;size:1024;not null" json:"file_url"`
	ObjectKey        string    `gorm:"size:512;not null;default:''" json:"-"`
	FileName         string    `gorm:"size:255" json:"file_name"`
	MimeType         string    `gorm:"size:100" json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	SortOrder        int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProgressUpdateImage) TableName() string {
	return "progress_update_images"
}

// ProgressUpdateLink 进度外链
type ProgressUpdateLink struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProgressUpdateID int64     `gorm:"not null;index" json:"progress_update_id"`
	Label            string    `gorm:"size:200;not null" json:"label"`
	URL              string    `gorm:"column:url;size:2048;not null" json:"url"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProgressUpdateLink) TableName() string {
	return "progress_update_links"
}
