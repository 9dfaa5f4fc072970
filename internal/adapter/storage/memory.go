package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore 进程内对象存储, 用于本地开发与测试
type MemoryStore struct {
	baseURL string

	mu      sync.Mutex
	objects map[string]memoryObject

	// 可控行为
	putError  error
	failKeys  []string // key 包含其中任一子串时 Put 失败
	putDelay  time.Duration
	putCalled int
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

// === 配置方法 ===

func (m *MemoryStore) SetPutError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

func (m *MemoryStore) FailOn(substr string) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKeys = append(m.failKeys, substr)
	return m
}

func (m *MemoryStore) SetPutDelay(d time.Duration) *MemoryStore {
	m.putDelay = d
	return m
}

// === 接口实现 ===

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if m.putDelay > 0 {
		select {
		case <-time.After(m.putDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalled++
	if m.putError != nil {
		return "", m.putError
	}
	for _, s := range m.failKeys {
		if strings.Contains(key, s) {
			return "", fmt.Errorf("模拟上传失败: %s", key)
		}
	}
	m.objects[key] = memoryObject{data: data, contentType: contentType, modified: time.Now()}
	return joinURL(m.baseURL, key), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) KeyFromURL(url string) (string, bool) {
	prefix := m.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// === 测试辅助 ===

// Has 对象是否存在
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len 对象数量
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// PutCalled Put 调用次数
func (m *MemoryStore) PutCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalled
}

// Touch 修改对象时间, 用于清理任务测试
func (m *MemoryStore) Touch(key string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.objects[key]; ok {
		o.modified = t
		m.objects[key] = o
	}
}
