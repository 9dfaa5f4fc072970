package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

// ProgressUpdateService 独立图文进度说明
type ProgressUpdateService interface {
	List(ctx context.Context, projectID int64) ([]*dto.ProgressUpdateResponse, error)
	Create(ctx context.Context, projectID int64, req *dto.CreateProgressUpdateRequest, images []storage.Upload) (*dto.ProgressUpdateResponse, error)
	Delete(ctx context.Context, projectID, updateID int64) error
	ImageURL(ctx context.Context, projectID, imageID int64) (string, error)
}

type progressUpdateService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	updates  repository.ProgressUpdateRepository
	logs     repository.LogRepository
	stager   *storage.MediaStager
	cache    pipeline.CacheInvalidator
	logger   *zap.Logger
}

func NewProgressUpdateService(db *gorm.DB, stager *storage.MediaStager, cache pipeline.CacheInvalidator, logger *zap.Logger) ProgressUpdateService {
	return &progressUpdateService{
		db:       db,
		projects: repository.NewProjectRepository(db),
		updates:  repository.NewProgressUpdateRepository(db),
		logs:     repository.NewLogRepository(db),
		stager:   stager,
		cache:    cache,
		logger:   logger,
	}
}

func (s *progressUpdateService) List(ctx context.Context, projectID int64) ([]*dto.ProgressUpdateResponse, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.ToProgressUpdateResponses(updates), nil
}

func (s *progressUpdateService) Create(ctx context.Context, projectID int64, req *dto.CreateProgressUpdateRequest, images []storage.Upload) (*dto.ProgressUpdateResponse, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "描述不能为空").WithReason(pkgErrors.ReasonValidation)
	}
	if len(images) > constants.MaxLogImages {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "图片数量超过上限").WithReason(pkgErrors.ReasonValidation)
	}
	projectPhase := constants.ProjectPhase(req.Phase)
	if projectPhase == "" {
		projectPhase = constants.ProjectPhaseDevelopment
	}

	links := pipeline.NormalizeLinks(lo.Map(req.Links, func(l dto.LinkInput, _ int) pipeline.Link {
		return pipeline.Link{Label: l.Label, URL: l.URL}
	}), "")

	staged, err := s.stager.StageImages(ctx, projectID, images)
	if err != nil {
		return nil, err
	}

	update := &model.ProgressUpdate{
		ProjectID:   projectID,
		Description: description,
		Phase:       projectPhase,
	}
	for _, m := range staged {
		update.Images = append(update.Images, model.ProgressUpdateImage{
			FileURL:   m.URL,
			ObjectKey: m.Key,
			FileName:  m.FileName,
			MimeType:  m.MimeType,
			FileSize:  m.Size,
			SortOrder: m.SortOrder,
		})
	}
	for _, l := range links {
		update.Links = append(update.Links, model.ProgressUpdateLink{Label: l.Label, URL: l.URL})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.updates.WithTx(tx).Create(ctx, update)
	})
	if err != nil {
		s.logger.Warn("保存进度说明失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, pkgErrors.WrapAs(pkgErrors.ErrPersistenceFailed, err)
	}

	s.invalidate(ctx, project.AccessToken)
	return dto.ToProgressUpdateResponse(update), nil
}

// Delete 删除说明及其图片/链接, 关联日志保留但外键置空
func (s *progressUpdateService) Delete(ctx context.Context, projectID, updateID int64) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	update, err := s.updates.FindByID(ctx, projectID, updateID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.logs.WithTx(tx).DetachProgressUpdate(ctx, updateID); err != nil {
			return err
		}
		return s.updates.WithTx(tx).Delete(ctx, updateID)
	})
	if err != nil {
		return err
	}

	keys := lo.FilterMap(update.Images, func(img model.ProgressUpdateImage, _ int) (string, bool) {
		return img.ObjectKey, img.ObjectKey != ""
	})
	if len(keys) > 0 {
		s.stager.Discard(context.WithoutCancel(ctx), keys...)
	}
	s.invalidate(ctx, project.AccessToken)
	return nil
}

func (s *progressUpdateService) ImageURL(ctx context.Context, projectID, imageID int64) (string, error) {
	image, err := s.updates.FindImage(ctx, projectID, imageID)
	if err != nil {
		return "", err
	}
	return image.FileURL, nil
}

func (s *progressUpdateService) invalidate(ctx context.Context, token string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, token)
	}
}
