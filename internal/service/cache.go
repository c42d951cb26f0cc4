package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ResultCache 计算结果缓存（*redis.Client 实现）；为 nil 时不缓存
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// cacheKey 快照 ID + 请求参数；快照变化后旧键自然失效
func cacheKey(kind string, snap *Snapshot, parts ...string) string {
	return kind + ":" + snap.ID + ":" + strings.Join(parts, "|")
}

// cached 先读缓存，未命中时计算并回写；缓存读写失败只记录日志
func cached[T any](ctx context.Context, cache ResultCache, ttl time.Duration, logger *zap.Logger, key string, compute func() T) T {
	if cache == nil {
		return compute()
	}
	var hit T
	if err := cache.GetJSON(ctx, key, &hit); err == nil {
		return hit
	}
	val := compute()
	if err := cache.SetJSON(ctx, key, val, ttl); err != nil {
		logger.Warn("写入结果缓存失败", zap.String("key", key), zap.Error(err))
	}
	return val
}
