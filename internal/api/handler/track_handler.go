package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/dto"
	"project-tracker/internal/service"
	pkgErrors "project-tracker/pkg/errors"
	"project-tracker/pkg/utils"
)

// TrackHandler 客户公开跟踪页接口, 以访问令牌代替登录
type TrackHandler struct {
	trackService    service.TrackService
	feedbackService service.FeedbackService
}

func NewTrackHandler(trackService service.TrackService, feedbackService service.FeedbackService) *TrackHandler {
	return &TrackHandler{
		trackService:    trackService,
		feedbackService: feedbackService,
	}
}

// Validate 校验访问令牌
// @Summary 校验客户访问令牌
// @Tags Track
// @Accept json
// @Produce json
// @Param request body dto.ValidateTokenRequest true "令牌"
// @Success 200 {object} dto.ValidateTokenResponse
// @Failure 404 {object} dto.ValidateTokenResponse
// @Router /track/validate [post]
func (h *TrackHandler) Validate(c *gin.Context) {
	var req dto.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	if err := h.trackService.Validate(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, pkgErrors.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, dto.ValidateTokenResponse{Valid: false})
			return
		}
		utils.Error(c, err)
		return
	}

	utils.Success(c, dto.ValidateTokenResponse{Valid: true})
}

// Get 跟踪页数据
// @Summary 获取客户跟踪页数据
// @Description 项目概况、进度日志、图文说明与讨论资料
// @Tags Track
// @Produce json
// @Param token path string true "访问令牌"
// @Success 200 {object} dto.TrackResponse
// @Failure 404 {object} utils.Response
// @Router /track/{token} [get]
func (h *TrackHandler) Get(c *gin.Context) {
	var param dto.TokenParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.BindError(c, err)
		return
	}

	resp, err := h.trackService.Get(c.Request.Context(), param.Token)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, resp)
}

// Feedback 提交反馈
// @Summary 客户提交反馈
// @Tags Track
// @Accept json
// @Produce json
// @Param token path string true "访问令牌"
// @Param request body dto.SubmitFeedbackRequest true "反馈内容"
// @Success 201 {object} dto.FeedbackResponse
// @Router /track/{token}/feedback [post]
func (h *TrackHandler) Feedback(c *gin.Context) {
	var param dto.TokenParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.BindError(c, err)
		return
	}
	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	feedback, err := h.feedbackService.Submit(c.Request.Context(), param.Token, req.Message)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, feedback)
}

// Image 图片跳转
// @Summary 跟踪页图片跳转
// @Tags Track
// @Param token path string true "访问令牌"
// @Param imageId path int true "图片ID"
// @Success 302
// @Router /track/{token}/updates/images/{imageId} [get]
func (h *TrackHandler) Image(c *gin.Context) {
	var param dto.TokenParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.BindError(c, err)
		return
	}
	imageID, ok := bindID(c, "imageId")
	if !ok {
		return
	}

	url, err := h.trackService.ImageURL(c.Request.Context(), param.Token, imageID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}
