package service

import (
	"context"

	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/repository"
)

// LogService 项目时间线
type LogService interface {
	Submit(ctx context.Context, projectID int64, sub *pipeline.Submission) (*dto.LogResponse, error)
	List(ctx context.Context, projectID int64) ([]*dto.LogResponse, error)
}

type logService struct {
	pipeline *pipeline.Pipeline
	projects repository.ProjectRepository
	logs     repository.LogRepository
}

func NewLogService(p *pipeline.Pipeline, projects repository.ProjectRepository, logs repository.LogRepository) LogService {
	return &logService{pipeline: p, projects: projects, logs: logs}
}

func (s *logService) Submit(ctx context.Context, projectID int64, sub *pipeline.Submission) (*dto.LogResponse, error) {
	entry, err := s.pipeline.SubmitLog(ctx, projectID, sub)
	if err != nil {
		return nil, err
	}
	return dto.ToLogResponse(entry), nil
}

// List 按创建时间倒序
func (s *logService) List(ctx context.Context, projectID int64) ([]*dto.LogResponse, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.ToLogResponses(logs), nil
}
