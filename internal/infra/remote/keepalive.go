package remote

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultKeepAliveInterval matches the collaborator's idle timeout margin.
const DefaultKeepAliveInterval = 14 * time.Minute

// KeepAlive pings the liveness endpoint at a fixed cadence until ctx is
// cancelled. It is fire-and-forget: failures are swallowed, and it runs
// independently of quiz state, even after submission.
func (c *Client) KeepAlive(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Ping(ctx); err != nil {
				c.log.Debug("keep-alive ping failed", zap.Error(err))
			}
		}
	}
}
