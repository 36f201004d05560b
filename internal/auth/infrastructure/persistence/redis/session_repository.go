// Package redis 提供了会话仓储接口的 Redis 实现。
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/alphaview/internal/auth/domain"
	"github.com/wyfcoding/alphaview/pkg/cache"
)

const sessionKeyPrefix = "alphaview:session:"

// sessionRepositoryImpl 是 domain.SessionRepository 接口的 Redis 实现。
type sessionRepositoryImpl struct {
	cache *cache.RedisCache
}

// NewSessionRepository 创建会话仓储实例
func NewSessionRepository(c *cache.RedisCache) domain.SessionRepository {
	return &sessionRepositoryImpl{cache: c}
}

// Save 实现 domain.SessionRepository.Save，TTL 与会话过期时间对齐
func (r *sessionRepositoryImpl) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	if err := r.cache.SetJSON(ctx, sessionKeyPrefix+session.Token, session, ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get 实现 domain.SessionRepository.Get，未找到时返回 nil
func (r *sessionRepositoryImpl) Get(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	found, err := r.cache.GetJSON(ctx, sessionKeyPrefix+token, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &session, nil
}

// Delete 实现 domain.SessionRepository.Delete
func (r *sessionRepositoryImpl) Delete(ctx context.Context, token string) error {
	return r.cache.Delete(ctx, sessionKeyPrefix+token)
}
