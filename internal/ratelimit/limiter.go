package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter holds one token bucket per upstream key. The geocoder keys it
// by host: quotas of free geocoding APIs are per host, and a client pointed at
// another endpoint must not share the bucket.
type KeyedLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultConfig matches the free tier of public geocoding APIs: one request per second.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
	}
}

func NewKeyedLimiter(config RateLimitConfig) *KeyedLimiter {
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewKeyedLimiterWithDefaults() *KeyedLimiter {
	return NewKeyedLimiter(DefaultConfig())
}

func (p *KeyedLimiter) GetLimiter(key string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[key]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(p.limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[key] = limiter
	return limiter
}

func (p *KeyedLimiter) SetLimit(key string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[key] = rate.NewLimiter(p.limit(rps), burst)
}

// Wait blocks until key may issue one request or ctx is done.
func (p *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return p.GetLimiter(key).Wait(ctx)
}

func (p *KeyedLimiter) limit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
