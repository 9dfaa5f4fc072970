package repository

import (
	"context"

	"gorm.io/gorm"

	"project-tracker/internal/model"
	pkgErrors "project-tracker/pkg/errors"
)

type ProgressUpdateRepository interface {
	WithTx(tx *gorm.DB) ProgressUpdateRepository
	// Create 同时写入图片与链接
	Create(ctx context.Context, update *model.ProgressUpdate) error
	ListByProject(ctx context.Context, projectID int64) ([]*model.ProgressUpdate, error)
	FindByID(ctx context.Context, projectID, id int64) (*model.ProgressUpdate, error)
	Delete(ctx context.Context, id int64) error
	FindImage(ctx context.Context, projectID, imageID int64) (*model.ProgressUpdateImage, error)
	ImageObjectKeys(ctx context.Context) ([]string, error)
}

type progressUpdateRepository struct {
	db *gorm.DB
}

func NewProgressUpdateRepository(db *gorm.DB) ProgressUpdateRepository {
	return &progressUpdateRepository{db: db}
}

func (r *progressUpdateRepository) WithTx(tx *gorm.DB) ProgressUpdateRepository {
	return &progressUpdateRepository{db: tx}
}

func (r *progressUpdateRepository) Create(ctx context.Context, update *model.ProgressUpdate) error {
	if err := r.db.WithContext(ctx).Create(update).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建进度说明失败", err)
	}
	return nil
}

func (r *progressUpdateRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.ProgressUpdate, error) {
	var updates []*model.ProgressUpdate
	err := WithProgressUpdateChildren("")(r.db.WithContext(ctx)).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&updates).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询进度说明失败", err)
	}
	return updates, nil
}

func (r *progressUpdateRepository) FindByID(ctx context.Context, projectID, id int64) (*model.ProgressUpdate, error) {
	var update model.ProgressUpdate
	err := WithProgressUpdateChildren("")(r.db.WithContext(ctx)).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&update).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询进度说明失败", err)
	}
	return &update, nil
}

func (r *progressUpdateRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("progress_update_id = ?", id).Delete(&model.ProgressUpdateImage{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除进度图片失败", err)
	}
	if err := db.Where("progress_update_id = ?", id).Delete(&model.ProgressUpdateLink{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除进度链接失败", err)
	}
	if err := db.Delete(&model.ProgressUpdate{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除进度说明失败", err)
	}
	return nil
}

func (r *progressUpdateRepository) FindImage(ctx context.Context, projectID, imageID int64) (*model.ProgressUpdateImage, error) {
	var image model.ProgressUpdateImage
	err := r.db.WithContext(ctx).
		Joins("JOIN progress_updates ON progress_updates.id = progress_update_images.progress_update_id").
		Where("progress_update_images.id = ? AND progress_updates.project_id = ?", imageID, projectID).
		First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询进度图片失败", err)
	}
	return &image, nil
}

func (r *progressUpdateRepository) ImageObjectKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.ProgressUpdateImage{}).
		Where("object_key <> ''").
		Pluck("object_key", &keys).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询图片对象失败", err)
	}
	return keys, nil
}
