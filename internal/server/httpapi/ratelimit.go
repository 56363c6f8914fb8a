package httpapi

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SellerRateLimiter keeps one token bucket per seller.
type SellerRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSellerRateLimiter allows rps requests per second with the given burst.
// A non-positive rps disables limiting.
func NewSellerRateLimiter(rps float64, burst int) *SellerRateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &SellerRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      limit,
		burst:    burst,
		idle:     3 * time.Minute,
	}
}

// Allow reports whether seller may make one more request now.
func (rl *SellerRateLimiter) Allow(seller string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[seller]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[seller] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// Run drops idle sellers every interval until ctx is done.
func (rl *SellerRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *SellerRateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for seller, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, seller)
		}
	}
}

func (rl *SellerRateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
