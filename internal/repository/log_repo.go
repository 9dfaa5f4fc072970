package repository

import (
	"context"

	"gorm.io/gorm"

	"project-tracker/internal/model"
	pkgErrors "project-tracker/pkg/errors"
)

type LogRepository interface {
	WithTx(tx *gorm.DB) LogRepository
	Create(ctx context.Context, log *model.ProjectLog) error
	// ListByProject 按创建时间倒序, 附带进度说明及其图片/链接
	ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectLog, error)
	FindByID(ctx context.Context, id int64) (*model.ProjectLog, error)
	// LatestPercentages 每个项目最新一条日志的进度
	LatestPercentages(ctx context.Context, projectIDs []int64) (map[int64]int, error)
	DetachProgressUpdate(ctx context.Context, progressUpdateID int64) error
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) WithTx(tx *gorm.DB) LogRepository {
	return &logRepository{db: tx}
}

func (r *logRepository) Create(ctx context.Context, log *model.ProjectLog) error {
	if err := r.db.WithContext(ctx).Omit("ProgressUpdate").Create(log).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目日志失败", err)
	}
	return nil
}

func (r *logRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectLog, error) {
	var logs []*model.ProjectLog
	err := r.withUpdate(r.db.WithContext(ctx)).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目日志失败", err)
	}
	return logs, nil
}

func (r *logRepository) FindByID(ctx context.Context, id int64) (*model.ProjectLog, error) {
	var log model.ProjectLog
	err := r.withUpdate(r.db.WithContext(ctx)).First(&log, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目日志失败", err)
	}
	return &log, nil
}

func (r *logRepository) LatestPercentages(ctx context.Context, projectIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var logs []*model.ProjectLog
	err := r.db.WithContext(ctx).
		Select("id, project_id, percentage, created_at").
		Where("project_id IN ?", projectIDs).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询最新进度失败", err)
	}
	for _, l := range logs {
		if _, ok := result[l.ProjectID]; !ok {
			result[l.ProjectID] = l.Percentage
		}
	}
	return result, nil
}

func (r *logRepository) DetachProgressUpdate(ctx context.Context, progressUpdateID int64) error {
	err := r.db.WithContext(ctx).Model(&model.ProjectLog{}).
		Where("progress_update_id = ?", progressUpdateID).
		Update("progress_update_id", nil).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "解除日志关联失败", err)
	}
	return nil
}

func (r *logRepository) withUpdate(db *gorm.DB) *gorm.DB {
	return WithProgressUpdateChildren("ProgressUpdate.")(db.Preload("ProgressUpdate"))
}
