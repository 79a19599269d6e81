package tfl

import "context"

// CallGate is an exclusive gate: at most one call guarded by it is in
// flight at a time across the process. It exists as a throughput throttle
// for the one TFL endpoint that misbehaves under concurrent load from a
// single key, not as a data-correctness lock.
//
// The gate is a capacity-1 channel semaphore rather than a sync.Mutex so
// that waiting to acquire stays cancellable via ctx.
type CallGate struct {
	sem chan struct{}
}

// NewCallGate creates an exclusive gate.
func NewCallGate() *CallGate {
	return &CallGate{sem: make(chan struct{}, 1)}
}

// Do acquires the gate, runs fn, and releases on every exit path, including
// panics and fn failure. If ctx is done before the gate is acquired, fn is
// never invoked and ctx.Err() is returned.
func (g *CallGate) Do(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.sem }()
	return fn()
}

var _ Gate = (*CallGate)(nil)
