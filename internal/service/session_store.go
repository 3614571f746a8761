package service

import (
	"context"
	"edumind_backend/internal/model"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "adaptive_session:"
	sessionTTL       = 24 * time.Hour
)

// SessionStore 按 userId 保存自适应测试会话。
// 每个用户最多一个活动会话，Set 直接覆盖（后写生效）。
type SessionStore interface {
	Get(ctx context.Context, userID string) (*model.AdaptiveTestSession, bool)
	Set(ctx context.Context, userID string, session *model.AdaptiveTestSession) error
}

// MemorySessionStore 进程内实现，重启后会话丢失。
// 这是有意的简化：会话只用于串联 generate 与 submit 两次请求。
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.AdaptiveTestSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*model.AdaptiveTestSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) (*model.AdaptiveTestSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *MemorySessionStore) Set(_ context.Context, userID string, session *model.AdaptiveTestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	return nil
}

// RedisSessionStore 生产环境使用，JSON 序列化后带 TTL 写入
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*model.AdaptiveTestSession, bool) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+userID).Result()
	if err != nil {
		return nil, false
	}

	var session model.AdaptiveTestSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (s *RedisSessionStore) Set(ctx context.Context, userID string, session *model.AdaptiveTestSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+userID, data, sessionTTL).Err()
}
