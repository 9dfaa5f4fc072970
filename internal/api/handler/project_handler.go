package handler

import (
	"github.com/gin-gonic/gin"

	"project-tracker/internal/dto"
	"project-tracker/internal/service"
	"project-tracker/pkg/constants"
	"project-tracker/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Create 创建项目
// @Summary 创建项目
// @Description 登记新项目并向客户发送欢迎消息, whatsapp 字段返回发送结果
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 201 {object} dto.ProjectMutationResponse
// @Failure 400 {object} utils.Response
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	resp, err := h.projectService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, resp)
}

// List 获取项目列表
// @Summary 获取项目列表
// @Description 按创建时间倒序返回全部项目, 附带派生状态与最新日志进度
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProjectResponse
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, projects)
}

// Get 获取项目详情
// @Summary 获取项目详情
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} utils.Response
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// Update 更新项目
// @Summary 更新项目客户信息
// @Description 只修改客户与项目信息, 阶段与进度只能通过日志或阶段接口变更
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} dto.ProjectMutationResponse
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	resp, err := h.projectService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, resp)
}

// Delete 删除项目
// @Summary 删除项目
// @Description 级联删除日志、进度说明、图片、资料与反馈
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} dto.DeleteResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, dto.DeleteResponse{Success: true})
}

// ChangePhase 切换阶段
// @Summary 手动切换项目阶段
// @Description 只允许 DEVELOPMENT -> MAINTENANCE, 且开发进度必须为 100
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.ChangePhaseRequest true "目标阶段"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /projects/{id}/phase [post]
func (h *ProjectHandler) ChangePhase(c *gin.Context) {
	id, ok := bindID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	project, err := h.projectService.ChangePhase(c.Request.Context(), id, constants.WorkPhase(req.Phase))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}
