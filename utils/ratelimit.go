package utils

import (
	"sync"
	"time"
)

// RateLimiter ограничивает частоту запросов по ключу (скользящее окно)
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// RateDecision результат проверки лимита
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow проверяет, разрешен ли запрос, и учитывает его при успехе
func (rl *RateLimiter) Allow(key string) RateDecision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.prune(key, now)

	decision := RateDecision{Limit: rl.limit}
	if len(valid) >= rl.limit {
		decision.ResetAt = valid[0].Add(rl.window)
		return decision
	}

	valid = append(valid, now)
	rl.requests[key] = valid

	decision.Allowed = true
	decision.Remaining = rl.limit - len(valid)
	decision.ResetAt = valid[0].Add(rl.window)
	return decision
}

// prune отбрасывает запросы старше окна; пустые ключи удаляются
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)

	var valid []time.Time
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) == 0 {
		delete(rl.requests, key)
	} else {
		rl.requests[key] = valid
	}
	return valid
}
