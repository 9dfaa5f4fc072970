package model

import (
	"time"

	"gorm.io/datatypes"

	"project-tracker/pkg/constants"
)

const ProjectTableName = "projects"

// Project 客户项目, 阶段与进度只由进度日志流水线修改
type Project struct {
	BaseModel
	AccessToken            string                  `gorm:"size:64;not null;uniqueIndex" json:"access_token"`
	ClientName             string                  `gorm:"size:100;not null" json:"client_name"`
	ClientPhone            string                  `gorm:"size:20;not null" json:"client_phone"`
	ProjectName            string                  `gorm:"size:150;not null;index" json:"project_name"`
	Deadline               datatypes.Date          `gorm:"not null" json:"deadline"`
	Status                 constants.ProjectStatus `gorm:"size:20;not null" json:"status"`
	CurrentPhase           constants.WorkPhase     `gorm:"size:20;not null" json:"current_phase"`
	DevelopmentProgress    int                     `gorm:"not null;default:0" json:"development_progress"`
	MaintenanceProgress    int                     `gorm:"not null;default:0" json:"maintenance_progress"`
	DevelopmentCompletedAt *time.Time              `json:"development_completed_at"`
	Version                int64                   `gorm:"not null;default:0" json:"-"` // 乐观锁

	Logs []ProjectLog `gorm:"foreignKey:ProjectID" json:"logs,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// PhaseProgress 当前阶段对应的进度
func (p *Project) PhaseProgress() int {
	if p.CurrentPhase == constants.WorkPhaseMaintenance {
		return p.MaintenanceProgress
	}
	return p.DevelopmentProgress
}
