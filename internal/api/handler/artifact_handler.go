package handler

import (
	"github.com/gin-gonic/gin"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/dto"
	"project-tracker/internal/service"
	"project-tracker/pkg/utils"
)

type ArtifactHandler struct {
	artifactService service.ArtifactService
	limits          UploadLimits
}

func NewArtifactHandler(artifactService service.ArtifactService, limits UploadLimits) *ArtifactHandler {
	return &ArtifactHandler{
		artifactService: artifactService,
		limits:          limits,
	}
}

// Create 创建讨论资料
// @Summary 创建讨论资料
// @Description 上传文件优先; 未上传文件时必须提供 http(s) 链接
// @Tags Artifact
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.CreateArtifactRequest false "JSON 请求"
// @Param file formData file false "资料文件"
// @Success 201 {object} dto.ArtifactResponse
// @Router /projects/{id}/artifacts [post]
func (h *ArtifactHandler) Create(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateArtifactRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	var file *storage.Upload
	if isMultipart(c) {
		f, err := formFile(c, "file", h.limits)
		if err != nil {
			utils.Error(c, err)
			return
		}
		file = f
	}

	artifact, err := h.artifactService.Create(c.Request.Context(), id, &req, file)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, artifact)
}

// List 获取讨论资料
// @Summary 获取项目讨论资料
// @Tags Artifact
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {array} dto.ArtifactResponse
// @Router /projects/{id}/artifacts [get]
func (h *ArtifactHandler) List(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	artifacts, err := h.artifactService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, artifacts)
}

// Update 更新讨论资料
// @Summary 更新讨论资料元数据
// @Tags Artifact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param artifactId path int true "资料ID"
// @Param request body dto.UpdateArtifactRequest true "更新请求"
// @Success 200 {object} dto.ArtifactResponse
// @Router /projects/{id}/artifacts/{artifactId} [patch]
func (h *ArtifactHandler) Update(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	artifactID, ok := bindID(c, "artifactId")
	if !ok {
		return
	}
	var req dto.UpdateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	artifact, err := h.artifactService.Update(c.Request.Context(), id, artifactID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, artifact)
}

// Delete 删除讨论资料
// @Summary 删除讨论资料
// @Tags Artifact
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param artifactId path int true "资料ID"
// @Success 200 {object} dto.DeleteResponse
// @Router /projects/{id}/artifacts/{artifactId} [delete]
func (h *ArtifactHandler) Delete(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	artifactID, ok := bindID(c, "artifactId")
	if !ok {
		return
	}

	if err := h.artifactService.Delete(c.Request.Context(), id, artifactID); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, dto.DeleteResponse{Success: true})
}
