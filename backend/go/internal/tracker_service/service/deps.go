package service

import (
	"context"
	"io"
	"sync"
	"time"

	"ecofix/backend/go/internal/models"
)

// PhotoStore 保存观测照片。
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// EventPublisher 发布业务事件。
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// TokenRevoker 记录已注销的令牌。
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker 是进程内的 TokenRevoker，在未启用 Redis 时使用。
// 重启后注销记录丢失，多实例部署时各实例互不可见。
type MemoryRevoker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker 创建 MemoryRevoker。
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{expires: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	// 顺带清理已过期的记录
	for id, exp := range m.expires {
		if !exp.After(now) {
			delete(m.expires, id)
		}
	}
	if ttl > 0 {
		m.expires[tokenID] = now.Add(ttl)
	}
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[tokenID]
	return ok && exp.After(m.now()), nil
}
