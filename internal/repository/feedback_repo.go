package repository

import (
	"context"

	"gorm.io/gorm"

	"project-tracker/internal/model"
	pkgErrors "project-tracker/pkg/errors"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.ClientFeedback) error
	ListByProject(ctx context.Context, projectID int64) ([]*model.ClientFeedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *model.ClientFeedback) error {
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "保存反馈失败", err)
	}
	return nil
}

func (r *feedbackRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.ClientFeedback, error) {
	var feedbacks []*model.ClientFeedback
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC, id DESC").Find(&feedbacks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询反馈失败", err)
	}
	return feedbacks, nil
}
