package model

import (
	"time"

	"project-tracker/pkg/constants"
)

const ProjectLogTableName = "project_logs"

// ProjectLog 项目时间线条目, 创建后不可修改
type ProjectLog struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID        int64               `gorm:"not null;index:idx_log_project_created,priority:1" json:"project_id"`
	Title            string              `gorm:"size:200;not null" json:"title"`
	Description      string              `gorm:"type:text;not null" json:"description"`
	Percentage       int                 `gorm:"not null" json:"percentage"`
	Phase            constants.WorkPhase `gorm:"size:20;not null" json:"phase"`
	ProgressUpdateID *int64              `gorm:"index" json:"progress_update_id"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime;index:idx_log_project_created,priority:2" json:"created_at"`

	ProgressUpdate *ProgressUpdate `gorm:"foreignKey:ProgressUpdateID" json:"progress_update,omitempty"`
}

func (ProjectLog) TableName() string {
	return ProjectLogTableName
}
