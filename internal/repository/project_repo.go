package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"project-tracker/internal/model"
	pkgErrors "project-tracker/pkg/errors"
)

type ProjectRepository interface {
	WithTx(tx *gorm.DB) ProjectRepository
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error)
	FindByToken(ctx context.Context, token string, opts ...QueryOption) (*model.Project, error)
	FindByName(ctx context.Context, name string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	UpdateClientFields(ctx context.Context, id int64, fields map[string]interface{}) error
	// UpdateState 仅当版本未变时写入阶段/进度/状态, 返回受影响行数
	UpdateState(ctx context.Context, project *model.Project, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	err := applyOptions(r.db.WithContext(ctx), opts).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrProjectNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) FindByToken(ctx context.Context, token string, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	err := applyOptions(r.db.WithContext(ctx), opts).Where("access_token = ?", token).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrProjectNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) FindByName(ctx context.Context, name string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("project_name = ?", name).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrProjectNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) UpdateClientFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目失败", result.Error)
	}
	return nil
}

func (r *projectRepository) UpdateState(ctx context.Context, project *model.Project, expectedVersion int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND version = ?", project.ID, expectedVersion).
		Updates(map[string]interface{}{
			"current_phase":            project.CurrentPhase,
			"development_progress":     project.DevelopmentProgress,
			"maintenance_progress":     project.MaintenanceProgress,
			"development_completed_at": project.DevelopmentCompletedAt,
			"status":                   project.Status,
			"updated_at":               project.UpdatedAt,
			"version":                  expectedVersion + 1,
		})
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目状态失败", result.Error)
	}
	if result.RowsAffected > 0 {
		project.Version = expectedVersion + 1
	}
	return result.RowsAffected, nil
}

// Delete 级联删除项目及全部子记录
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updateIDs := tx.Model(&model.ProgressUpdate{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("progress_update_id IN (?)", updateIDs).Delete(&model.ProgressUpdateImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("progress_update_id IN (?)", updateIDs).Delete(&model.ProgressUpdateLink{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&model.ProjectLog{}, &model.ProgressUpdate{}, &model.DiscussionArtifact{}, &model.ClientFeedback{}} {
			if err := tx.Where("project_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&model.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgErrors.ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgErrors.ErrProjectNotFound) {
			return err
		}
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目失败", err)
	}
	return nil
}
