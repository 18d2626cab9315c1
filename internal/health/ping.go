package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger can be implemented by components to expose a specialized
// health check. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// PingChecker turns any HealthPinger into a periodic HealthChecker.
type PingChecker struct {
	name         string
	pinger       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewPingChecker(name string, p HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &PingChecker{name: name, pinger: p, log: log, probeTimeout: probeTimeout}
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
		if err := c.pinger.HealthPing(pctx); err != nil {
			c.log.Error().Err(err).Str("checker", c.name).Msg("health ping failed")
			c.healthy.Store(0)
			return
		}
		c.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
