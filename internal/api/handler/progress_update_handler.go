package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/dto"
	"project-tracker/internal/service"
	"project-tracker/pkg/utils"
)

type ProgressUpdateHandler struct {
	updateService service.ProgressUpdateService
	limits        UploadLimits
}

func NewProgressUpdateHandler(updateService service.ProgressUpdateService, limits UploadLimits) *ProgressUpdateHandler {
	return &ProgressUpdateHandler{
		updateService: updateService,
		limits:        limits,
	}
}

// Create 创建进度说明
// @Summary 创建独立的图文进度说明
// @Description 不关联进度百分比, 链接必须同时包含 label 与 http(s) url
// @Tags ProgressUpdate
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.CreateProgressUpdateRequest false "JSON 请求"
// @Param images formData file false "图片"
// @Success 201 {object} dto.ProgressUpdateResponse
// @Router /projects/{id}/updates [post]
func (h *ProgressUpdateHandler) Create(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateProgressUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	var images []storage.Upload
	if isMultipart(c) {
		req.Links = dto.ParseLinks(c.PostForm("links"))
		files, err := formFiles(c, "images", h.limits)
		if err != nil {
			utils.Error(c, err)
			return
		}
		images = files
	}

	update, err := h.updateService.Create(c.Request.Context(), id, &req, images)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, update)
}

// List 获取进度说明
// @Summary 获取项目的图文进度说明
// @Tags ProgressUpdate
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {array} dto.ProgressUpdateResponse
// @Router /projects/{id}/updates [get]
func (h *ProgressUpdateHandler) List(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	updates, err := h.updateService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, updates)
}

// Delete 删除进度说明
// @Summary 删除进度说明
// @Description 关联的进度日志保留, 仅解除关联
// @Tags ProgressUpdate
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param updateId path int true "进度说明ID"
// @Success 200 {object} dto.DeleteResponse
// @Router /projects/{id}/updates/{updateId} [delete]
func (h *ProgressUpdateHandler) Delete(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	updateID, ok := bindID(c, "updateId")
	if !ok {
		return
	}

	if err := h.updateService.Delete(c.Request.Context(), id, updateID); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, dto.DeleteResponse{Success: true})
}

// Image 图片跳转
// @Summary 跳转到图片地址
// @Tags ProgressUpdate
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param imageId path int true "图片ID"
// @Success 302
// @Router /projects/{id}/updates/images/{imageId} [get]
func (h *ProgressUpdateHandler) Image(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	imageID, ok := bindID(c, "imageId")
	if !ok {
		return
	}

	url, err := h.updateService.ImageURL(c.Request.Context(), id, imageID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}
