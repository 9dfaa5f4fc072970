package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"project-tracker/internal/pkg/config"
	"project-tracker/pkg/constants"
)

// ObjectStore 对象存储最小契约
type ObjectStore interface {
	// Put 写入对象并返回公开访问地址
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// KeyFromURL 由公开地址反解对象 key, 非本存储地址返回 false
	KeyFromURL(url string) (string, bool)
}

// ObjectInfo 对象元信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewObjectStore 按配置创建对象存储
func NewObjectStore(ctx context.Context, cfg *config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(cfg.PublicURL), nil
	case "minio":
		return NewMinIOStore(ctx, cfg)
	}
	return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeFileName 空白替换为 "-", 去掉路径分隔符
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	name = whitespace.ReplaceAllString(name, "-")
	if name == "" {
		return "file"
	}
	return name
}

// ImageKey 进度图片对象 key: {projectId}/{millis}-{rand}-{name}
func ImageKey(projectID int64, fileName string, now time.Time) string {
	return fmt.Sprintf("%d/%d-%s-%s", projectID, now.UnixMilli(), shortID(), SanitizeFileName(fileName))
}

// DocumentKey 讨论资料对象 key: {projectId}/docs/{millis}-{rand}-{name}
func DocumentKey(projectID int64, fileName string, now time.Time) string {
	return fmt.Sprintf("%d/%s/%d-%s-%s", projectID, constants.ArtifactKeyPrefix, now.UnixMilli(), shortID(), SanitizeFileName(fileName))
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
