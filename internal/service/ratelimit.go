// internal/service/ratelimit.go
package service

import (
	"context"
	"time"
)

// Conservative defaults. Provider accounts get suspended for bursts, so the
// defaults favor safety over throughput.
const (
	DefaultMessagesPerMin = 20
	DefaultDelayMillis    = 3000
)

// RateConfig carries a campaign's pacing settings. The explicit delay is
// authoritative; messages-per-minute is informational.
type RateConfig struct {
	MessagesPerMin int
	DelayMillis    int
}

func DefaultRateConfig() RateConfig {
	return RateConfig{
		MessagesPerMin: DefaultMessagesPerMin,
		DelayMillis:    DefaultDelayMillis,
	}
}

// Delay resolves the inter-message wait. A zero or negative delay falls back
// to the messages-per-minute spacing, and failing that to the default.
func (c RateConfig) Delay() time.Duration {
	if c.DelayMillis > 0 {
		return time.Duration(c.DelayMillis) * time.Millisecond
	}
	if c.MessagesPerMin > 0 {
		return time.Minute / time.Duration(c.MessagesPerMin)
	}
	return time.Duration(DefaultDelayMillis) * time.Millisecond
}

// Throttle blocks the caller for the configured inter-message delay. This is
// a pacing gate for one dispatch loop, not a shared token bucket.
func Throttle(ctx context.Context, cfg RateConfig) error {
	timer := time.NewTimer(cfg.Delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
