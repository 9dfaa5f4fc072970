package dto

import (
	"time"

	"project-tracker/internal/core/phase"
	"project-tracker/internal/model"
)

const DateLayout = "2006-01-02"

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ClientName  string `json:"clientName" binding:"required,max=100"`
	ClientPhone string `json:"clientPhone" binding:"required,max=30"`
	ProjectName string `json:"projectName" binding:"required,max=150"`
	Deadline    string `json:"deadline" binding:"required,datetime=2006-01-02"`
}

// UpdateProjectRequest 更新客户信息, 不涉及阶段与进度
type UpdateProjectRequest struct {
	ClientName                 *string `json:"clientName" binding:"omitempty,min=1,max=100"`
	ClientPhone                *string `json:"clientPhone" binding:"omitempty,min=1,max=30"`
	ProjectName                *string `json:"projectName" binding:"omitempty,min=1,max=150"`
	Deadline                   *string `json:"deadline" binding:"omitempty,datetime=2006-01-02"`
	SendNotificationToNewPhone bool    `json:"sendNotificationToNewPhone"`
}

// ChangePhaseRequest 直接切换阶段
type ChangePhaseRequest struct {
	Phase string `json:"phase" binding:"required,work_phase"`
}

// NotificationResult 通知发送结果
type NotificationResult struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// ProjectResponse 项目响应, status 与 overallProgress 为读取时推导
type ProjectResponse struct {
	ID                     int64      `json:"id"`
	AccessToken            string     `json:"accessToken"`
	ClientName             string     `json:"clientName"`
	ClientPhone            string     `json:"clientPhone"`
	ProjectName            string     `json:"projectName"`
	Deadline               string     `json:"deadline"`
	Status                 string     `json:"status"`
	CurrentPhase           string     `json:"currentPhase"`
	DevelopmentProgress    int        `json:"developmentProgress"`
	MaintenanceProgress    int        `json:"maintenanceProgress"`
	OverallProgress        int        `json:"overallProgress"`
	StatusText             string     `json:"statusText"`
	LatestPercentage       *int       `json:"latestPercentage,omitempty"`
	DevelopmentCompletedAt *time.Time `json:"developmentCompletedAt"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// ProjectMutationResponse 创建/更新结果, 附带通知结果
type ProjectMutationResponse struct {
	Project  *ProjectResponse    `json:"project"`
	WhatsApp *NotificationResult `json:"whatsapp,omitempty"`
}

// ToProjectResponse 模型转响应
func ToProjectResponse(p *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:                     p.ID,
		AccessToken:            p.AccessToken,
		ClientName:             p.ClientName,
		ClientPhone:            p.ClientPhone,
		ProjectName:            p.ProjectName,
		Deadline:               time.Time(p.Deadline).Format(DateLayout),
		Status:                 string(phase.DeriveOverallStatus(p)),
		CurrentPhase:           string(p.CurrentPhase),
		DevelopmentProgress:    p.DevelopmentProgress,
		MaintenanceProgress:    p.MaintenanceProgress,
		OverallProgress:        phase.CalculateOverallProgress(p.DevelopmentProgress, p.MaintenanceProgress, p.CurrentPhase),
		StatusText:             phase.StatusText(p.CurrentPhase, p.PhaseProgress()),
		DevelopmentCompletedAt: p.DevelopmentCompletedAt,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}
