package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

var sourceLinkPattern = regexp.MustCompile(`(?i)^https?://\S+$`)

// ArtifactService 讨论资料归档
type ArtifactService interface {
	Create(ctx context.Context, projectID int64, req *dto.CreateArtifactRequest, file *storage.Upload) (*dto.ArtifactResponse, error)
	List(ctx context.Context, projectID int64) ([]*dto.ArtifactResponse, error)
	Update(ctx context.Context, projectID, id int64, req *dto.UpdateArtifactRequest) (*dto.ArtifactResponse, error)
	Delete(ctx context.Context, projectID, id int64) error
}

type artifactService struct {
	projects  repository.ProjectRepository
	artifacts repository.ArtifactRepository
	stager    *storage.MediaStager
	cache     pipeline.CacheInvalidator
	logger    *zap.Logger
}

func NewArtifactService(
	projects repository.ProjectRepository,
	artifacts repository.ArtifactRepository,
	stager *storage.MediaStager,
	cache pipeline.CacheInvalidator,
	logger *zap.Logger,
) ArtifactService {
	return &artifactService{
		projects:  projects,
		artifacts: artifacts,
		stager:    stager,
		cache:     cache,
		logger:    logger,
	}
}

// Create 上传文件优先, 否则必须提供 http(s) 链接
func (s *artifactService) Create(ctx context.Context, projectID int64, req *dto.CreateArtifactRequest, file *storage.Upload) (*dto.ArtifactResponse, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	artifact := &model.DiscussionArtifact{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: optionalString(req.Description),
		Phase:       constants.ProjectPhase(req.Phase),
	}
	if req.Type != "" {
		artifact.Type = lo.ToPtr(constants.ArtifactType(req.Type))
	}

	link := strings.TrimSpace(req.SourceLinkURL)
	switch {
	case file != nil:
		staged, err := s.stager.StageDocument(ctx, projectID, *file)
		if err != nil {
			return nil, err
		}
		artifact.FileURL = lo.ToPtr(staged.URL)
		artifact.ObjectKey = lo.ToPtr(staged.Key)
		artifact.FileName = lo.ToPtr(staged.FileName)
		artifact.MimeType = lo.ToPtr(staged.MimeType)
		artifact.FileSize = lo.ToPtr(staged.Size)
	case sourceLinkPattern.MatchString(link):
		artifact.SourceLinkURL = lo.ToPtr(link)
	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "请上传文件或提供 http(s) 链接").WithReason(pkgErrors.ReasonValidation)
	}

	if err := s.artifacts.Create(ctx, artifact); err != nil {
		if artifact.ObjectKey != nil {
			s.stager.Discard(context.WithoutCancel(ctx), *artifact.ObjectKey)
		}
		return nil, err
	}
	s.invalidate(ctx, project.AccessToken)
	return dto.ToArtifactResponse(artifact), nil
}

func (s *artifactService) List(ctx context.Context, projectID int64) ([]*dto.ArtifactResponse, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	artifacts, err := s.artifacts.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.ToArtifactResponses(artifacts), nil
}

func (s *artifactService) Update(ctx context.Context, projectID, id int64, req *dto.UpdateArtifactRequest) (*dto.ArtifactResponse, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	artifact, err := s.artifacts.FindByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "标题不能为空").WithReason(pkgErrors.ReasonValidation)
		}
		fields["title"] = title
		artifact.Title = title
	}
	if req.Description != nil {
		fields["description"] = optionalString(*req.Description)
		artifact.Description = optionalString(*req.Description)
	}
	if req.Phase != nil {
		fields["phase"] = constants.ProjectPhase(*req.Phase)
		artifact.Phase = constants.ProjectPhase(*req.Phase)
	}
	if req.Type != nil {
		t := constants.ArtifactType(*req.Type)
		fields["type"] = t
		artifact.Type = &t
	}

	if err := s.artifacts.Update(ctx, artifact, fields); err != nil {
		return nil, err
	}
	s.invalidate(ctx, project.AccessToken)
	return dto.ToArtifactResponse(artifact), nil
}

// Delete 数据库记录总是删除, 存储对象尽力清理
func (s *artifactService) Delete(ctx context.Context, projectID, id int64) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	artifact, err := s.artifacts.FindByID(ctx, projectID, id)
	if err != nil {
		return err
	}
	if artifact.ObjectKey != nil {
		s.stager.Discard(context.WithoutCancel(ctx), *artifact.ObjectKey)
	}
	if err := s.artifacts.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.invalidate(ctx, project.AccessToken)
	return nil
}

func (s *artifactService) invalidate(ctx context.Context, token string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, token)
	}
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
