package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/phase"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/metrics"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/phone"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest) (*dto.ProjectMutationResponse, error)
	Get(ctx context.Context, id int64) (*dto.ProjectResponse, error)
	List(ctx context.Context) ([]*dto.ProjectResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateProjectRequest) (*dto.ProjectMutationResponse, error)
	Delete(ctx context.Context, id int64) error
	ChangePhase(ctx context.Context, id int64, target constants.WorkPhase) (*dto.ProjectResponse, error)
}

type projectService struct {
	db         *gorm.DB
	repo       repository.ProjectRepository
	logRepo    repository.LogRepository
	updateRepo repository.ProgressUpdateRepository
	artifacts  repository.ArtifactRepository
	stager     *storage.MediaStager
	dispatcher *notification.Dispatcher
	composer   notification.Composer
	cache      pipeline.CacheInvalidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewProjectService dispatcher 与 cache 可为 nil
func NewProjectService(
	db *gorm.DB,
	stager *storage.MediaStager,
	dispatcher *notification.Dispatcher,
	composer notification.Composer,
	cache pipeline.CacheInvalidator,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		db:         db,
		repo:       repository.NewProjectRepository(db),
		logRepo:    repository.NewLogRepository(db),
		updateRepo: repository.NewProgressUpdateRepository(db),
		artifacts:  repository.NewArtifactRepository(db),
		stager:     stager,
		dispatcher: dispatcher,
		composer:   composer,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest) (*dto.ProjectMutationResponse, error) {
	normalized, err := phone.Normalize(req.ClientPhone)
	if err != nil {
		return nil, err
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		AccessToken:  uuid.NewString(),
		ClientName:   req.ClientName,
		ClientPhone:  normalized,
		ProjectName:  req.ProjectName,
		Deadline:     deadline,
		Status:       constants.ProjectStatusOnProgress,
		CurrentPhase: constants.WorkPhaseDevelopment,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("项目已创建", zap.Int64("project_id", project.ID), zap.String("project_name", project.ProjectName))

	return &dto.ProjectMutationResponse{
		Project:  dto.ToProjectResponse(project),
		WhatsApp: s.notify(ctx, s.composer.Welcome(project)),
	}, nil
}

func (s *projectService) Get(ctx context.Context, id int64) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	latest, err := s.logRepo.LatestPercentages(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	resp := dto.ToProjectResponse(project)
	if pct, ok := latest[id]; ok {
		resp.LatestPercentage = lo.ToPtr(pct)
	}
	return resp, nil
}

func (s *projectService) List(ctx context.Context) ([]*dto.ProjectResponse, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(projects, func(p *model.Project, _ int) int64 { return p.ID })
	latest, err := s.logRepo.LatestPercentages(ctx, ids)
	if err != nil {
		return nil, err
	}

	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectResponse {
		resp := dto.ToProjectResponse(p)
		if pct, ok := latest[p.ID]; ok {
			resp.LatestPercentage = lo.ToPtr(pct)
		}
		return resp
	}), nil
}

// Update 只修改客户信息, 不触碰阶段与进度
func (s *projectService) Update(ctx context.Context, id int64, req *dto.UpdateProjectRequest) (*dto.ProjectMutationResponse, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.ClientName != nil {
		fields["client_name"] = *req.ClientName
	}
	if req.ProjectName != nil {
		fields["project_name"] = *req.ProjectName
	}
	if req.Deadline != nil {
		deadline, err := parseDate(*req.Deadline)
		if err != nil {
			return nil, err
		}
		fields["deadline"] = deadline
	}
	phoneChanged := false
	if req.ClientPhone != nil {
		normalized, err := phone.Normalize(*req.ClientPhone)
		if err != nil {
			return nil, err
		}
		if normalized != project.ClientPhone {
			fields["client_phone"] = normalized
			phoneChanged = true
		}
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.repo.UpdateClientFields(ctx, id, fields); err != nil {
			return nil, err
		}
		s.invalidate(ctx, project.AccessToken)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProjectMutationResponse{Project: dto.ToProjectResponse(updated)}
	if phoneChanged && req.SendNotificationToNewPhone {
		resp.WhatsApp = s.notify(ctx, s.composer.ContactChanged(updated))
	}
	return resp, nil
}

// Delete 级联删除, 存储对象在提交后尽力清理
func (s *projectService) Delete(ctx context.Context, id int64) error {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var keys []string
	updates, err := s.updateRepo.ListByProject(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range updates {
		for _, img := range u.Images {
			keys = append(keys, img.ObjectKey)
		}
	}
	artifacts, err := s.artifacts.ListByProject(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		if a.ObjectKey != nil {
			keys = append(keys, *a.ObjectKey)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("项目已删除", zap.Int64("project_id", id), zap.Int("objects", len(keys)))

	if s.stager != nil && len(keys) > 0 {
		s.stager.Discard(context.WithoutCancel(ctx), lo.Compact(keys)...)
	}
	s.invalidate(ctx, project.AccessToken)
	return nil
}

// ChangePhase 直接阶段切换, 与流水线共用版本号保护
func (s *projectService) ChangePhase(ctx context.Context, id int64, target constants.WorkPhase) (*dto.ProjectResponse, error) {
	var updated *model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := s.repo.WithTx(tx)
		current, err := projects.FindByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		next, err := phase.Transition(phase.FromProject(current), target, now)
		if err != nil {
			return err
		}

		expected := current.Version
		phase.ApplyTo(current, next)
		current.Status = phase.DeriveStatus(next)
		current.UpdatedAt = now
		rows, err := projects.UpdateState(ctx, current, expected)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgErrors.New(pkgErrors.CodeConflict, "项目已被其他请求修改, 请重试")
		}
		updated = current
		return nil
	})
	if err != nil {
		var appErr *pkgErrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, pkgErrors.WrapAs(pkgErrors.ErrPersistenceFailed, err)
	}

	metrics.RecordPhaseTransition("manual")
	s.logger.Info("项目阶段已切换", zap.Int64("project_id", id), zap.String("phase", string(target)))
	s.invalidate(ctx, updated.AccessToken)
	return dto.ToProjectResponse(updated), nil
}

// notify 同步发送, 结果回传给调用方
func (s *projectService) notify(ctx context.Context, msg *notification.NotificationMessage) *dto.NotificationResult {
	if s.dispatcher == nil {
		return &dto.NotificationResult{Sent: false, Error: "通知未启用"}
	}
	if err := s.dispatcher.SendNow(context.WithoutCancel(ctx), msg); err != nil {
		return &dto.NotificationResult{Sent: false, Error: err.Error()}
	}
	return &dto.NotificationResult{Sent: true}
}

func (s *projectService) invalidate(ctx context.Context, token string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, token)
	}
}

func parseDate(v string) (datatypes.Date, error) {
	t, err := time.Parse(dto.DateLayout, v)
	if err != nil {
		return datatypes.Date{}, pkgErrors.New(pkgErrors.CodeBadRequest, "日期格式应为 YYYY-MM-DD").WithReason(pkgErrors.ReasonValidation)
	}
	return datatypes.Date(t), nil
}
