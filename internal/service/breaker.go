package service

import (
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
)

func (s BreakerState) String() string {
	if s == BreakerOpen {
		return "open"
	}
	return "closed"
}

// Breaker 进程级熔断器：一旦观测到连通性故障即进入 Open，
// 之后跳过远端调用直接走降级路径，仅进程重启后复位。
// 时钟可注入，为将来的冷却复位留口子（当前无冷却）。
type Breaker struct {
	mu        sync.RWMutex
	state     BreakerState
	trippedAt time.Time
	now       func() time.Time
}

func NewBreaker() *Breaker {
	return &Breaker{now: time.Now}
}

func NewBreakerWithClock(now func() time.Time) *Breaker {
	return &Breaker{now: now}
}

func (b *Breaker) Allow() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state == BreakerClosed
}

func (b *Breaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerClosed {
		b.state = BreakerOpen
		b.trippedAt = b.now()
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Breaker) TrippedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trippedAt
}
