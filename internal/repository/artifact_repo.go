package repository

import (
	"context"

	"gorm.io/gorm"

	"project-tracker/internal/model"
	pkgErrors "project-tracker/pkg/errors"
)

type ArtifactRepository interface {
	Create(ctx context.Context, artifact *model.DiscussionArtifact) error
	ListByProject(ctx context.Context, projectID int64) ([]*model.DiscussionArtifact, error)
	FindByID(ctx context.Context, projectID, id int64) (*model.DiscussionArtifact, error)
	Update(ctx context.Context, artifact *model.DiscussionArtifact, fields map[string]interface{}) error
	Delete(ctx context.Context, projectID, id int64) error
	ObjectKeys(ctx context.Context) ([]string, error)
}

type artifactRepository struct {
	db *gorm.DB
}

func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

func (r *artifactRepository) Create(ctx context.Context, artifact *model.DiscussionArtifact) error {
	if err := r.db.WithContext(ctx).Create(artifact).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建资料失败", err)
	}
	return nil
}

func (r *artifactRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.DiscussionArtifact, error) {
	var artifacts []*model.DiscussionArtifact
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&artifacts).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询资料失败", err)
	}
	return artifacts, nil
}

func (r *artifactRepository) FindByID(ctx context.Context, projectID, id int64) (*model.DiscussionArtifact, error) {
	var artifact model.DiscussionArtifact
	err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", id, projectID).First(&artifact).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询资料失败", err)
	}
	return &artifact, nil
}

func (r *artifactRepository) Update(ctx context.Context, artifact *model.DiscussionArtifact, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(artifact).Updates(fields).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新资料失败", err)
	}
	return nil
}

func (r *artifactRepository) Delete(ctx context.Context, projectID, id int64) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", id, projectID).Delete(&model.DiscussionArtifact{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除资料失败", err)
	}
	return nil
}

func (r *artifactRepository) ObjectKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.DiscussionArtifact{}).
		Where("object_key IS NOT NULL AND object_key <> ''").
		Pluck("object_key", &keys).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询资料对象失败", err)
	}
	return keys, nil
}
