package port

import "context"

// Priority orders calls competing for the rate-limited gateway. Higher
// values are served first.
type Priority int

const (
	// PriorityNormal is used for create calls.
	PriorityNormal Priority = iota
	// PriorityHigh is used for existence checks and validation reads so
	// pre-flight work is not starved behind bulk creation traffic.
	PriorityHigh
)

// Gateway funnels every remote call through a shared rate limit. Calls with
// a non-empty key are coalesced: concurrent submissions of the same key
// share a single execution and its result. A call may be delayed
// indefinitely before execution; cancellation is via ctx only.
type Gateway interface {
	Do(ctx context.Context, pr Priority, key string, fn func(context.Context) (any, error)) (any, error)
}
