// Package cache 提供 Redis 缓存操作的封装
// 当前只承载同会话并发生成限制，Redis 未启用时整个包不参与请求处理
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gemini-chat-server/internal/config"
)

// inflightTTL 在途标记的过期时间
// 略大于生成调用的超时，进程异常退出时由 TTL 兜底释放
const inflightTTL = 40 * time.Second

// GenerationGuard 同会话并发生成限制
// 同一 SessionID 同时只允许一次在途的生成调用
// 只在发送消息路径上使用，不影响历史查询
type GenerationGuard struct {
	client *redis.Client // Redis 客户端实例
}

// NewGenerationGuard 创建 GenerationGuard 实例
// 参数:
//   - cfg: 应用配置（包含 Redis 连接信息）
//
// 返回:
//   - *GenerationGuard: 限制器实例
//   - error: 连接错误
func NewGenerationGuard(cfg *config.Config) (*GenerationGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.Username, // 阿里云 Redis 需要用户名
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &GenerationGuard{client: client}, nil
}

// Close 关闭 Redis 连接
func (g *GenerationGuard) Close() error {
	return g.client.Close()
}

// inflightKey 在途标记的 Key
func inflightKey(sessionID string) string {
	return fmt.Sprintf("chat:inflight:%s", sessionID)
}

// Acquire 尝试获取会话的在途标记
// SET NX 保证同一会话同时只有一个持有者
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话标识
//
// 返回:
//   - bool: 是否获取成功，false 表示该会话已有在途请求
//   - error: Redis 操作错误
func (g *GenerationGuard) Acquire(ctx context.Context, sessionID string) (bool, error) {
	return g.client.SetNX(ctx, inflightKey(sessionID), 1, inflightTTL).Result()
}

// Release 释放会话的在途标记
// 请求结束时调用，无论成功失败
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话标识
//
// 返回:
//   - error: Redis 操作错误
func (g *GenerationGuard) Release(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, inflightKey(sessionID)).Err()
}
