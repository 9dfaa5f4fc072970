package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"project-tracker/internal/pkg/config"
	"project-tracker/pkg/constants"
)

const defaultTrackTTL = 60 * time.Second

// TrackCache 客户跟踪页缓存. client 为 nil 时所有操作为空操作,
// redis 出错时只记录日志, 调用方回退到数据库.
type TrackCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient 按配置创建客户端, 未启用时返回 nil
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewTrackCache client 可为 nil
func NewTrackCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TrackCache {
	if ttl <= 0 {
		ttl = defaultTrackTTL
	}
	return &TrackCache{client: client, ttl: ttl, logger: logger}
}

// Enabled 是否连接了 redis
func (c *TrackCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Ping 检查连通性
func (c *TrackCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get 命中时把缓存内容解码到 dst
func (c *TrackCache) Get(ctx context.Context, token string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key(token)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("读取跟踪缓存失败", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("跟踪缓存内容无法解析", zap.Error(err))
		return false
	}
	return true
}

// Set 写入缓存, 失败忽略
func (c *TrackCache) Set(ctx context.Context, token string, v interface{}) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("跟踪缓存序列化失败", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key(token), data, c.ttl).Err(); err != nil {
		c.logger.Warn("写入跟踪缓存失败", zap.Error(err))
	}
}

// Invalidate 删除项目的跟踪缓存
func (c *TrackCache) Invalidate(ctx context.Context, token string) {
	if !c.Enabled() || token == "" {
		return
	}
	if err := c.client.Del(ctx, key(token)).Err(); err != nil {
		c.logger.Warn("删除跟踪缓存失败", zap.String("token", token), zap.Error(err))
	}
}

// Close 关闭连接
func (c *TrackCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func key(token string) string {
	return constants.TrackCacheKeyPrefix + token
}
