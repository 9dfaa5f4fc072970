package dto

import (
	"time"

	"github.com/samber/lo"

	"project-tracker/internal/model"
)

// CreateArtifactRequest 创建讨论资料, 文件与链接二选一
type CreateArtifactRequest struct {
	Title         string `json:"title" form:"title" binding:"required,max=200"`
	Description   string `json:"description" form:"description"`
	Phase         string `json:"phase" form:"phase" binding:"required,project_phase"`
	Type          string `json:"type" form:"type" binding:"omitempty,artifact_type"`
	SourceLinkURL string `json:"sourceLinkUrl" form:"sourceLinkUrl"`
}

// UpdateArtifactRequest 部分更新
type UpdateArtifactRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Phase       *string `json:"phase" binding:"omitempty,project_phase"`
	Type        *string `json:"type" binding:"omitempty,artifact_type"`
}

// ArtifactResponse 讨论资料
type ArtifactResponse struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"projectId"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Phase         string    `json:"phase"`
	Type          *string   `json:"type"`
	FileURL       *string   `json:"fileUrl"`
	SourceLinkURL *string   `json:"sourceLinkUrl"`
	FileName      *string   `json:"fileName"`
	MimeType      *string   `json:"mimeType"`
	FileSize      *int64    `json:"fileSize"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToArtifactResponse 文件类只暴露 fileUrl, 链接类只暴露 sourceLinkUrl
func ToArtifactResponse(a *model.DiscussionArtifact) *ArtifactResponse {
	resp := &ArtifactResponse{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		Title:       a.Title,
		Description: a.Description,
		Phase:       string(a.Phase),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Type != nil {
		resp.Type = lo.ToPtr(string(*a.Type))
	}
	if a.HasFile() {
		resp.FileURL = a.FileURL
		resp.FileName = a.FileName
		resp.MimeType = a.MimeType
		resp.FileSize = a.FileSize
	} else {
		resp.SourceLinkURL = a.SourceLinkURL
	}
	return resp
}

func ToArtifactResponses(artifacts []*model.DiscussionArtifact) []*ArtifactResponse {
	return lo.Map(artifacts, func(a *model.DiscussionArtifact, _ int) *ArtifactResponse {
		return ToArtifactResponse(a)
	})
}
