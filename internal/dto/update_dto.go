package dto

import (
	"github.com/samber/lo"

	"project-tracker/internal/model"
)

// CreateProgressUpdateRequest 独立图文进度说明
type CreateProgressUpdateRequest struct {
	Description string      `json:"description" form:"description" binding:"required"`
	Phase       string      `json:"phase" form:"phase" binding:"omitempty,project_phase"`
	Links       []LinkInput `json:"links" form:"-"`
}

func ToProgressUpdateResponses(updates []*model.ProgressUpdate) []*ProgressUpdateResponse {
	return lo.Map(updates, func(u *model.ProgressUpdate, _ int) *ProgressUpdateResponse {
		return ToProgressUpdateResponse(u)
	})
}
