package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava enforces two request quotas per application:
// - 100 requests per 15 minutes
// - 1000 requests per day
// Exporting one activity costs up to three calls (detail, laps, streams),
// so a large backlog can drain the short window quickly.

// RateLimiter paces API calls to stay inside both quota windows.
type RateLimiter struct {
	mu sync.Mutex

	// 15-minute window
	shortLimit    int
	shortUsage    int
	shortResetsAt time.Time

	// Daily window
	dailyLimit    int
	dailyUsage    int
	dailyResetsAt time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a limiter primed with Strava's published quotas.
// The real counters arrive with the first response headers.
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		shortLimit:    100,
		shortResetsAt: now.Add(15 * time.Minute),
		dailyLimit:    1000,
		dailyResetsAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		minInterval:   150 * time.Millisecond, // ~6.6 req/s max
	}
}

// Wait blocks until the next request fits inside both windows and the
// minimum spacing, or until the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Reset windows if expired
	if now.After(r.shortResetsAt) {
		r.shortUsage = 0
		r.shortResetsAt = now.Add(15 * time.Minute)
	}
	if now.After(r.dailyResetsAt) {
		r.dailyUsage = 0
		r.dailyResetsAt = now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	if r.shortUsage >= r.shortLimit {
		if err := r.sleep(ctx, time.Until(r.shortResetsAt)); err != nil {
			return err
		}
		r.shortUsage = 0
		r.shortResetsAt = time.Now().Add(15 * time.Minute)
	}

	if r.dailyUsage >= r.dailyLimit {
		if err := r.sleep(ctx, time.Until(r.dailyResetsAt)); err != nil {
			return err
		}
		r.dailyUsage = 0
		r.dailyResetsAt = time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.shortUsage++
	r.dailyUsage++
	r.lastRequest = time.Now()

	return nil
}

// sleep releases the lock for the duration and retakes it before
// returning, so the caller's deferred unlock stays balanced on every
// path.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs the counters with the usage Strava reports.
// Headers carry both windows comma-separated, e.g.
// X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if usage := h.Get("X-RateLimit-Usage"); usage != "" {
		parts := strings.Split(usage, ",")
		if len(parts) >= 2 {
			if short, err := strconv.Atoi(parts[0]); err == nil {
				r.shortUsage = short
			}
			if daily, err := strconv.Atoi(parts[1]); err == nil {
				r.dailyUsage = daily
			}
		}
	}

	if limit := h.Get("X-RateLimit-Limit"); limit != "" {
		parts := strings.Split(limit, ",")
		if len(parts) >= 2 {
			if short, err := strconv.Atoi(parts[0]); err == nil {
				r.shortLimit = short
			}
			if daily, err := strconv.Atoi(parts[1]); err == nil {
				r.dailyLimit = daily
			}
		}
	}
}

// Status returns how many requests remain in each window.
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shortLimit - r.shortUsage, r.dailyLimit - r.dailyUsage
}
