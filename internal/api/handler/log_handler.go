package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/service"
	"project-tracker/pkg/constants"
	"project-tracker/pkg/utils"
)

type LogHandler struct {
	logService service.LogService
	limits     UploadLimits
}

func NewLogHandler(logService service.LogService, limits UploadLimits) *LogHandler {
	return &LogHandler{
		logService: logService,
		limits:     limits,
	}
}

// Create 提交进度日志
// @Summary 提交进度日志
// @Description 支持 JSON 与 multipart. multipart 时 links 为 JSON 字符串, images 最多 5 个文件.
// @Description 开发进度达到 100 时自动进入维护阶段; 维护阶段日志需开发进度先达到 100.
// @Tags Log
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.CreateLogRequest false "JSON 请求"
// @Param images formData file false "进度截图"
// @Success 201 {object} dto.LogResponse
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /projects/{id}/logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateLogRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	sub := &pipeline.Submission{
		Title:          req.Title,
		Description:    req.Description,
		Percentage:     req.Percentage.Raw,
		WorkPhase:      constants.WorkPhase(req.WorkPhase),
		Narrative:      req.VisualDescription,
		NarrativePhase: constants.ProjectPhase(req.Phase),
		Notify:         req.SendNotification,
	}
	percentageSet := req.Percentage.Set
	links := req.Links

	if isMultipart(c) {
		raw, exists := c.GetPostForm("percentage")
		sub.Percentage, percentageSet = raw, exists
		links = dto.ParseLinks(c.PostForm("links"))

		images, err := formFiles(c, "images", h.limits)
		if err != nil {
			utils.Error(c, err)
			return
		}
		sub.Images = images
	}
	if !percentageSet || strings.TrimSpace(sub.Percentage) == "" {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", "percentage 为必填字段")
		return
	}
	sub.Links = lo.Map(links, func(l dto.LinkInput, _ int) pipeline.Link {
		return pipeline.Link{Label: l.Label, URL: l.URL}
	})

	entry, err := h.logService.Submit(c.Request.Context(), id, sub)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, entry)
}

// List 获取进度日志
// @Summary 获取项目进度日志
// @Description 按创建时间倒序
// @Tags Log
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {array} dto.LogResponse
// @Router /projects/{id}/logs [get]
func (h *LogHandler) List(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	logs, err := h.logService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, logs)
}
