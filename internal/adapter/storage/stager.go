package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"project-tracker/internal/metrics"
	pkgErrors "project-tracker/pkg/errors"
)

// Upload 待上传的原始文件
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileHeaderUpload 由 multipart 文件构造
func FileHeaderUpload(fh *multipart.FileHeader) Upload {
	return Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// BytesUpload 由内存数据构造
func BytesUpload(name, contentType string, data []byte) Upload {
	return Upload{
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// StagedMedia 已写入存储的文件
type StagedMedia struct {
	Key       string
	URL       string
	FileName  string
	MimeType  string
	Size      int64
	SortOrder int
}

// MediaStager 在事务开始前把文件写入对象存储
type MediaStager struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

func NewMediaStager(store ObjectStore, logger *zap.Logger) *MediaStager {
	return &MediaStager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Store 底层对象存储
func (s *MediaStager) Store() ObjectStore {
	return s.store
}

// StageImages 并行上传, 结果按入参顺序排列, SortOrder 从 0 开始.
// 任一失败即返回 ErrMediaUploadFailed, 已成功的对象不回滚.
func (s *MediaStager) StageImages(ctx context.Context, projectID int64, uploads []Upload) ([]StagedMedia, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	staged := make([]StagedMedia, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			key := ImageKey(projectID, u.FileName, s.now())
			url, err := s.put(gctx, key, u)
			if err != nil {
				return err
			}
			staged[i] = StagedMedia{
				Key:       key,
				URL:       url,
				FileName:  u.FileName,
				MimeType:  u.ContentType,
				Size:      u.Size,
				SortOrder: i,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("上传进度图片失败", zap.Int64("project_id", projectID), zap.Int("count", len(uploads)), zap.Error(err))
		return nil, pkgErrors.WrapAs(pkgErrors.ErrMediaUploadFailed, err)
	}
	return staged, nil
}

// StageDocument 上传讨论资料文件
func (s *MediaStager) StageDocument(ctx context.Context, projectID int64, u Upload) (StagedMedia, error) {
	key := DocumentKey(projectID, u.FileName, s.now())
	url, err := s.put(ctx, key, u)
	if err != nil {
		s.logger.Error("上传资料文件失败", zap.Int64("project_id", projectID), zap.String("file", u.FileName), zap.Error(err))
		return StagedMedia{}, pkgErrors.WrapAs(pkgErrors.ErrMediaUploadFailed, err)
	}
	return StagedMedia{Key: key, URL: url, FileName: u.FileName, MimeType: u.ContentType, Size: u.Size}, nil
}

// Discard 尽力删除对象, 失败只记日志
func (s *MediaStager) Discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("删除存储对象失败", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *MediaStager) put(ctx context.Context, key string, u Upload) (string, error) {
	start := time.Now()
	rc, err := u.Open()
	if err != nil {
		metrics.RecordMediaUpload("failed", time.Since(start))
		return "", err
	}
	defer rc.Close()

	url, err := s.store.Put(ctx, key, rc, u.Size, u.ContentType)
	if err != nil {
		metrics.RecordMediaUpload("failed", time.Since(start))
		return "", err
	}
	metrics.RecordMediaUpload("success", time.Since(start))
	return url, nil
}
