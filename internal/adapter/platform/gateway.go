package platform

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"adboard-sync/internal/core/port"
)

// RateLimitedGateway implements port.Gateway. Calls execute one at a time:
// when the single execution slot is contested, high-priority waiters are
// granted before normal ones in FIFO order within each lane, and every
// execution first waits on a shared token bucket. Calls with the same
// non-empty key are coalesced into one execution whose result is shared.
type RateLimitedGateway struct {
	limiter *rate.Limiter
	group   singleflight.Group

	mu   sync.Mutex
	busy bool
	high []chan struct{}
	low  []chan struct{}
}

// NewRateLimitedGateway builds a gateway allowing rps sustained calls per
// second with the given burst.
func NewRateLimitedGateway(rps float64, burst int) *RateLimitedGateway {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGateway{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Do submits fn at the given priority. It blocks until the call ran or ctx
// is cancelled; the gateway may delay a call indefinitely under load.
func (g *RateLimitedGateway) Do(ctx context.Context, pr port.Priority, key string, fn func(context.Context) (any, error)) (any, error) {
	if key == "" {
		return g.run(ctx, pr, fn)
	}
	v, err, _ := g.group.Do(key, func() (any, error) {
		return g.run(ctx, pr, fn)
	})
	return v, err
}

func (g *RateLimitedGateway) run(ctx context.Context, pr port.Priority, fn func(context.Context) (any, error)) (any, error) {
	if err := g.acquire(ctx, pr); err != nil {
		return nil, err
	}
	defer g.release()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return fn(ctx)
}

// acquire takes the execution slot, queueing by priority when it is busy.
func (g *RateLimitedGateway) acquire(ctx context.Context, pr port.Priority) error {
	g.mu.Lock()
	if !g.busy {
		g.busy = true
		g.mu.Unlock()
		return nil
	}
	w := make(chan struct{})
	if pr >= port.PriorityHigh {
		g.high = append(g.high, w)
	} else {
		g.low = append(g.low, w)
	}
	g.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		// The slot may have been granted concurrently with cancellation;
		// if we cannot withdraw from the queue, pass the grant on.
		if !g.withdraw(w) {
			<-w
			g.release()
		}
		return ctx.Err()
	}
}

// release hands the slot to the next waiter, high lane first.
func (g *RateLimitedGateway) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	var w chan struct{}
	switch {
	case len(g.high) > 0:
		w = g.high[0]
		g.high = g.high[1:]
	case len(g.low) > 0:
		w = g.low[0]
		g.low = g.low[1:]
	default:
		g.busy = false
		return
	}
	close(w)
}

// withdraw removes a waiter from its queue, reporting whether it was still
// queued (false means the slot was already granted to it).
func (g *RateLimitedGateway) withdraw(w chan struct{}) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.high {
		if c == w {
			g.high = append(g.high[:i], g.high[i+1:]...)
			return true
		}
	}
	for i, c := range g.low {
		if c == w {
			g.low = append(g.low[:i], g.low[i+1:]...)
			return true
		}
	}
	return false
}
