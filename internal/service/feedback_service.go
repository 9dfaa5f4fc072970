package service

import (
	"context"
	"strings"

	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/repository"
	pkgErrors "project-tracker/pkg/errors"
)

// FeedbackService 客户反馈
type FeedbackService interface {
	Submit(ctx context.Context, token, message string) (*dto.FeedbackResponse, error)
	List(ctx context.Context, projectID int64) ([]*dto.FeedbackResponse, error)
}

type feedbackService struct {
	projects  repository.ProjectRepository
	feedbacks repository.FeedbackRepository
}

func NewFeedbackService(projects repository.ProjectRepository, feedbacks repository.FeedbackRepository) FeedbackService {
	return &feedbackService{projects: projects, feedbacks: feedbacks}
}

func (s *feedbackService) Submit(ctx context.Context, token, message string) (*dto.FeedbackResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "反馈内容不能为空").WithReason(pkgErrors.ReasonValidation)
	}
	project, err := s.projects.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	feedback := &model.ClientFeedback{ProjectID: project.ID, Message: message}
	if err := s.feedbacks.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return &dto.FeedbackResponse{
		ID:        feedback.ID,
		ProjectID: feedback.ProjectID,
		Message:   feedback.Message,
		CreatedAt: feedback.CreatedAt,
	}, nil
}

func (s *feedbackService) List(ctx context.Context, projectID int64) ([]*dto.FeedbackResponse, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	feedbacks, err := s.feedbacks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.ToFeedbackResponses(feedbacks), nil
}
