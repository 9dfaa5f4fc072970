package handler

import (
	"github.com/gin-gonic/gin"

	"project-tracker/internal/service"
	"project-tracker/pkg/utils"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// List 获取客户反馈
// @Summary 获取项目的客户反馈
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {array} dto.FeedbackResponse
// @Router /projects/{id}/feedbacks [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	feedbacks, err := h.feedbackService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, feedbacks)
}
