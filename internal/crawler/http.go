package crawler

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig is the pacing shared by all callers of one external API.
type HTTPConfig struct {
	BaseURL        string
	RateLimiter    *rate.Limiter
	RequestTimeout time.Duration
}

// DefaultHTTPConfig allows one request per interval with no burst.
func DefaultHTTPConfig(baseURL string, interval time.Duration) *HTTPConfig {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &HTTPConfig{
		BaseURL:        baseURL,
		RateLimiter:    rate.NewLimiter(limit, 1),
		RequestTimeout: 30 * time.Second,
	}
}

// Wait blocks until the limiter admits one more request.
func (c *HTTPConfig) Wait(ctx context.Context) error {
	if c == nil || c.RateLimiter == nil {
		return nil
	}
	return c.RateLimiter.Wait(ctx)
}

// RandomDelay pauses for a uniformly random duration in [minDelay, maxDelay].
type RandomDelay struct {
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
	mu       sync.Mutex
}

func NewRandomDelay(minDelay, maxDelay time.Duration) *RandomDelay {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RandomDelay{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay without sleeping.
func (d *RandomDelay) Next() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	span := d.maxDelay - d.minDelay
	if span <= 0 {
		return d.minDelay
	}
	return d.minDelay + time.Duration(d.rng.Int63n(int64(span)+1))
}

// Sleep waits for Next() or until ctx is done.
func (d *RandomDelay) Sleep(ctx context.Context) error {
	timer := time.NewTimer(d.Next())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SeenTracker records keys per scope so the first occurrence wins.
type SeenTracker struct {
	seen map[string]map[string]bool
	mu   sync.RWMutex
}

func NewSeenTracker() *SeenTracker {
	return &SeenTracker{
		seen: make(map[string]map[string]bool),
	}
}

func (st *SeenTracker) IsSeen(scope, key string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if scopeMap, exists := st.seen[scope]; exists {
		return scopeMap[NormalizeKey(key)]
	}
	return false
}

// MarkSeen records key and reports whether it was new.
func (st *SeenTracker) MarkSeen(scope, key string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.seen[scope] == nil {
		st.seen[scope] = make(map[string]bool)
	}
	normalized := NormalizeKey(key)
	if st.seen[scope][normalized] {
		return false
	}
	st.seen[scope][normalized] = true
	return true
}

// NormalizeKey trims and collapses inner whitespace.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(key), " ")
}
