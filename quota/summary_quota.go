package quota

import (
	"context"
	"sync"
	"time"

	"yt-summary/config"
)

// SummaryQuotaLimiter enforces per-minute spacing and a daily cap on LLM calls.
// Counters live in memory and reset on restart; the day rolls over at UTC midnight.
type SummaryQuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// NewSummaryQuotaLimiter builds a limiter from the summary_quota section.
// Values <= 0 disable the corresponding limit.
func NewSummaryQuotaLimiter(cfg config.SummaryQuotaConfig) *SummaryQuotaLimiter {
	requestsPerDay := cfg.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	var interval time.Duration
	if cfg.RequestsPerMinute > 0 {
		interval = time.Minute / time.Duration(cfg.RequestsPerMinute)
	}

	return &SummaryQuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
	}
}

// WaitAndReserve blocks until the next call is allowed by the per-minute spacing.
// It returns (false, nil) once the daily cap is spent and (false, err) when ctx ends first.
func (l *SummaryQuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := time.Now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = time.Until(l.lastCall.Add(l.interval))
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
