package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"project-tracker/internal/cache"
	"project-tracker/internal/core/phase"
	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/repository"
	pkgErrors "project-tracker/pkg/errors"
)

var errTokenRequired = pkgErrors.New(pkgErrors.CodeBadRequest, "跟踪令牌不能为空").WithReason(pkgErrors.ReasonValidation)

// TrackService 客户通过访问令牌查看项目
type TrackService interface {
	Validate(ctx context.Context, token string) error
	Get(ctx context.Context, token string) (*dto.TrackResponse, error)
	ImageURL(ctx context.Context, token string, imageID int64) (string, error)
}

type trackService struct {
	projects  repository.ProjectRepository
	logs      repository.LogRepository
	updates   repository.ProgressUpdateRepository
	artifacts repository.ArtifactRepository
	cache     *cache.TrackCache
	logger    *zap.Logger
}

// NewTrackService trackCache 可为 nil
func NewTrackService(
	projects repository.ProjectRepository,
	logs repository.LogRepository,
	updates repository.ProgressUpdateRepository,
	artifacts repository.ArtifactRepository,
	trackCache *cache.TrackCache,
	logger *zap.Logger,
) TrackService {
	return &trackService{
		projects:  projects,
		logs:      logs,
		updates:   updates,
		artifacts: artifacts,
		cache:     trackCache,
		logger:    logger,
	}
}

func (s *trackService) Validate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errTokenRequired
	}
	_, err := s.projects.FindByToken(ctx, token)
	return err
}

func (s *trackService) Get(ctx context.Context, token string) (*dto.TrackResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenRequired
	}

	var cached dto.TrackResponse
	if s.cache.Get(ctx, token, &cached) {
		return &cached, nil
	}

	project, err := s.projects.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	artifacts, err := s.artifacts.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TrackResponse{
		Project:         toTrackProject(project),
		Logs:            dto.ToLogResponses(logs),
		ProgressUpdates: dto.ToProgressUpdateResponses(updates),
		Artifacts:       dto.ToArtifactResponses(artifacts),
	}
	s.cache.Set(ctx, token, resp)
	return resp, nil
}

func (s *trackService) ImageURL(ctx context.Context, token string, imageID int64) (string, error) {
	project, err := s.projects.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", err
	}
	image, err := s.updates.FindImage(ctx, project.ID, imageID)
	if err != nil {
		return "", err
	}
	return image.FileURL, nil
}

func toTrackProject(p *model.Project) *dto.TrackProject {
	resp := &dto.TrackProject{
		ClientName:          p.ClientName,
		ProjectName:         p.ProjectName,
		Deadline:            time.Time(p.Deadline).Format(dto.DateLayout),
		Status:              string(phase.DeriveOverallStatus(p)),
		CurrentPhase:        string(p.CurrentPhase),
		DevelopmentProgress: p.DevelopmentProgress,
		MaintenanceProgress: p.MaintenanceProgress,
		OverallProgress:     phase.CalculateOverallProgress(p.DevelopmentProgress, p.MaintenanceProgress, p.CurrentPhase),
		StatusText:          phase.StatusText(p.CurrentPhase, p.PhaseProgress()),
	}
	if p.DevelopmentCompletedAt != nil {
		completed := p.DevelopmentCompletedAt.Format(time.RFC3339)
		resp.DevelopmentCompletedAt = &completed
	}
	return resp
}
