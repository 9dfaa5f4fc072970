package scheduler

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/metrics"
	"project-tracker/internal/repository"
)

// MediaReconciler 清理未被任何记录引用的存储对象
type MediaReconciler struct {
	store     storage.ObjectStore
	updates   repository.ProgressUpdateRepository
	artifacts repository.ArtifactRepository
	grace     time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewMediaReconciler(
	store storage.ObjectStore,
	updates repository.ProgressUpdateRepository,
	artifacts repository.ArtifactRepository,
	grace time.Duration,
	logger *zap.Logger,
) *MediaReconciler {
	return &MediaReconciler{
		store:     store,
		updates:   updates,
		artifacts: artifacts,
		grace:     grace,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 执行一次对账, 返回删除的对象数量. 宽限期内的对象不处理.
func (r *MediaReconciler) Run(ctx context.Context) (int, error) {
	objects, err := r.store.List(ctx, "")
	if err != nil {
		return 0, err
	}

	imageKeys, err := r.updates.ImageObjectKeys(ctx)
	if err != nil {
		return 0, err
	}
	docKeys, err := r.artifacts.ObjectKeys(ctx)
	if err != nil {
		return 0, err
	}
	referenced := lo.SliceToMap(append(imageKeys, docKeys...), func(k string) (string, struct{}) {
		return k, struct{}{}
	})

	cutoff := r.now().Add(-r.grace)
	orphans := lo.FilterMap(objects, func(o storage.ObjectInfo, _ int) (string, bool) {
		_, used := referenced[o.Key]
		return o.Key, !used && o.LastModified.Before(cutoff)
	})

	removed := 0
	for _, key := range orphans {
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Warn("删除孤儿对象失败", zap.String("key", key), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.RecordOrphansRemoved(removed)
	}
	r.logger.Info("存储对账完成", zap.Int("objects", len(objects)), zap.Int("referenced", len(referenced)), zap.Int("removed", removed))
	return removed, nil
}
