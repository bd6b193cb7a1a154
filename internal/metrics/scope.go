package metrics

import (
	"context"
	"time"
)

// Scope is the per-unit-of-work container for accumulated metrics. It owns one timer, one
// counter, and one site-level counter exclusively; a Scope is never shared between concurrent
// units of work, so none of its accumulators require locking.
type Scope struct {
	// Timer accumulates named timing spans.
	Timer *Timer

	// Counter accumulates counter deltas flushed with the unit of work's tags.
	Counter *Counter

	// SiteCounter accumulates the same coarse hit counters, flushed with a fixed site-level
	// tag set for cross-view aggregation.
	SiteCounter *Counter

	view string
}

// SetView records the identifier of the view (or task) serving the unit of work, for tagging at
// flush time.
func (s *Scope) SetView(view string) {
	s.view = view
}

// View returns the recorded view identifier, or an empty string if none was recorded.
func (s *Scope) View() string {
	return s.view
}

// scopeHolder is the value actually stored in the context. The indirection makes the binding
// severable: Cleanup nils the holder's scope rather than rewrapping the context, so a stored
// context or a reused worker cannot leak a scope into the next unit of work.
type scopeHolder struct {
	scope *Scope
}

type scopeContextKey struct{}

// holderFromContext resolves the scope holder installed by Recorder.Begin, if any.
func holderFromContext(ctx context.Context) (*scopeHolder, bool) {
	holder, ok := ctx.Value(scopeContextKey{}).(*scopeHolder)
	return holder, ok
}

// FromContext resolves the live Scope bound to the context. It reports false if no scope was
// ever bound, or if the binding has since been severed by Cleanup.
func FromContext(ctx context.Context) (*Scope, bool) {
	holder, ok := holderFromContext(ctx)
	if !ok || holder.scope == nil {
		return nil, false
	}

	return holder.scope, true
}

// Incr adds delta to the counter for key on the context's live scope. It is a no-op when no
// scope is live, so instrumented code may run unconditionally.
func Incr(ctx context.Context, key string, delta int64) {
	if scope, ok := FromContext(ctx); ok {
		scope.Counter.Increment(key, delta)
	}
}

// Decr subtracts delta from the counter for key on the context's live scope. It is a no-op when
// no scope is live.
func Decr(ctx context.Context, key string, delta int64) {
	if scope, ok := FromContext(ctx); ok {
		scope.Counter.Decrement(key, delta)
	}
}

// Start opens a timing span for key on the context's live scope. It is a no-op when no scope is
// live.
func Start(ctx context.Context, key string) {
	if scope, ok := FromContext(ctx); ok {
		scope.Timer.Start(key)
	}
}

// Stop closes the most recent span for key on the context's live scope and returns its elapsed
// duration. It is a no-op when no scope is live.
func Stop(ctx context.Context, key string) (time.Duration, error) {
	if scope, ok := FromContext(ctx); ok {
		return scope.Timer.Stop(key)
	}

	return 0, nil
}

// SetView records the view identifier on the context's live scope. It is a no-op when no scope
// is live.
func SetView(ctx context.Context, view string) {
	if scope, ok := FromContext(ctx); ok {
		scope.SetView(view)
	}
}
