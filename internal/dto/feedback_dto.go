package dto

import (
	"time"

	"github.com/samber/lo"

	"project-tracker/internal/model"
)

// SubmitFeedbackRequest 客户反馈
type SubmitFeedbackRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

// FeedbackResponse 反馈
type FeedbackResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToFeedbackResponses(feedbacks []*model.ClientFeedback) []*FeedbackResponse {
	return lo.Map(feedbacks, func(f *model.ClientFeedback, _ int) *FeedbackResponse {
		return &FeedbackResponse{ID: f.ID, ProjectID: f.ProjectID, Message: f.Message, CreatedAt: f.CreatedAt}
	})
}
