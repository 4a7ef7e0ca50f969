package farcasterd

import (
	"context"
	"time"
)

// reconnectPollInterval bounds how stale a peer-reconnect timeout can be
// before it's noticed; it does not need to track the configured timeout
// itself, only be comfortably finer-grained than it.
const reconnectPollInterval = 5 * time.Second

// Run processes inbound Orchestrator envelopes strictly in arrival order,
// one handler at a time, until ctx is cancelled. Between envelopes it also
// polls for swaps that have been waiting on an unreachable peer past their
// deadline, since that's a timeout rather than a message to react to.
func (rt *Runtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(reconnectPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-rt.inbox:
			if !ok {
				return nil
			}
			rt.Dispatch(env)
		case now := <-ticker.C:
			rt.disp.CheckReconnectTimeouts(rt, now)
		}
	}
}
