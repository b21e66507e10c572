package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorPool keeps one limiter per client key.
type visitorPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	idle     time.Duration
}

func newVisitorPool(idle time.Duration) *visitorPool {
	return &visitorPool{visitors: make(map[string]*visitor), idle: idle}
}

func (p *visitorPool) get(key string, requestsPerWindow int, window time.Duration, burst int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if v, exists := p.visitors[key]; exists {
		v.lastSeen = time.Now()
		return v.limiter
	}

	if window <= 0 {
		window = time.Minute
	}
	limit := rate.Limit(float64(requestsPerWindow) / window.Seconds())
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(limit, burst)
	p.visitors[key] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

func (p *visitorPool) cleanup(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, v := range p.visitors {
		if now.Sub(v.lastSeen) > p.idle {
			delete(p.visitors, key)
		}
	}
}

func (p *visitorPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visitors)
}

// RateLimitManager owns the per-client limiters and the goroutine that evicts idle ones.
type RateLimitManager struct {
	requests  *visitorPool
	mutations *visitorPool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewRateLimitManager starts the cleanup loop. It stops when ctx is cancelled or Shutdown is called.
func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		requests:  newVisitorPool(3 * time.Minute),
		mutations: newVisitorPool(10 * time.Minute),
		ctx:       managerCtx,
		cancel:    cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// RequestLimiter returns the general limiter for ip.
func (m *RateLimitManager) RequestLimiter(ip string, requestsPerWindow int, window time.Duration, burst int) *rate.Limiter {
	if burst < requestsPerWindow {
		burst = requestsPerWindow
	}
	return m.requests.get(ip, requestsPerWindow, window, burst)
}

// MutationLimiter returns the limiter applied to admin writes from ip.
func (m *RateLimitManager) MutationLimiter(ip string, requestsPerWindow int, window time.Duration, burst int) *rate.Limiter {
	return m.mutations.get(ip, requestsPerWindow, window, burst)
}

func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.requests.cleanup(now)
			m.mutations.cleanup(now)
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
