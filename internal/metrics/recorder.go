package metrics

import (
	"context"
	"fmt"

	"scopestats/internal/log"
)

const (
	// totalKey is the timing span covering the entire unit of work.
	totalKey = "total"

	// hitKey is the counter bumped once per unit of work.
	hitKey = "hit"
)

// Recorder is the lifecycle controller for metric scopes. It binds a fresh Scope to the context
// at the start of a unit of work, and flushes and severs it at the end.
type Recorder struct {
	sink       Sink
	sampleRate float32
	strict     bool
	logger     log.Logger
}

// RecorderOpts formalizes configuration options for a Recorder.
type RecorderOpts struct {
	// SampleRate is the statsd sample rate attached to every flushed emission. Zero is
	// normalized to 1.0 (no sampling).
	SampleRate float32

	// Strict causes spans that are still open at flush time to be fatal instead of logged and
	// dropped.
	Strict bool
}

// NewRecorder creates a Recorder that flushes to the given sink. A nil sink or logger falls back
// to the respective noop implementation.
func NewRecorder(sink Sink, logger log.Logger, opts RecorderOpts) *Recorder {
	if sink == nil {
		sink = NewNoopSink()
	}

	if logger == nil {
		logger = log.NewNoopLogger()
	}

	if opts.SampleRate == 0 {
		opts.SampleRate = 1.0
	}

	return &Recorder{
		sink:       sink,
		sampleRate: opts.SampleRate,
		strict:     opts.Strict,
		logger:     logger,
	}
}

// Sink returns the sink the recorder flushes to, for callers that emit outside of any scope.
func (r *Recorder) Sink() Sink {
	return r.sink
}

// SampleRate returns the sample rate attached to flushed emissions.
func (r *Recorder) SampleRate() float32 {
	return r.sampleRate
}

// Begin creates a Scope with the given metric name prefix, opens its total timing span,
// increments its hit counters, and binds it to the returned context for implicit lookup.
//
// If the context already carries a scope binding, the live scope is replaced in place. This
// keeps a reused execution context safe when a previous unit of work never reached Cleanup;
// whatever the replaced scope had accumulated is dropped.
func (r *Recorder) Begin(ctx context.Context, prefix string) context.Context {
	scope := &Scope{
		Timer:       NewTimer(prefix),
		Counter:     NewCounter(prefix),
		SiteCounter: NewCounter(prefix),
	}

	scope.Timer.Start(totalKey)
	scope.Counter.Increment(hitKey, 1)
	scope.SiteCounter.Increment(hitKey, 1)

	if holder, ok := holderFromContext(ctx); ok {
		if holder.scope != nil {
			r.logger.Debug("recorder: replacing live scope on re-entrant begin: prefix=%s", prefix)
		}

		holder.scope = scope

		return ctx
	}

	return context.WithValue(ctx, scopeContextKey{}, &scopeHolder{scope: scope})
}

// End stops the total span and flushes the scope's accumulators to the sink: the timer and
// primary counter with the supplied tags, and the site counter with a fixed site-level tag set.
// It is a no-op when no scope is live, so it may be called unconditionally on any exit path.
//
// End leaves the scope bound; callers must invoke Cleanup afterwards to sever the binding before
// the execution context is reused.
func (r *Recorder) End(ctx context.Context, tags map[string]string) {
	scope, ok := FromContext(ctx)
	if !ok {
		return
	}

	if _, err := scope.Timer.Stop(totalKey); err != nil {
		r.logger.Warn("recorder: error stopping total span: err=%v", err)
	}

	// Every opened span must have been closed by now; anything still open is a missing Stop in
	// instrumented code. The accumulated data for such spans is dropped with the flush below.
	if outstanding := scope.Timer.Outstanding(); len(outstanding) > 0 {
		if r.strict {
			panic(fmt.Sprintf("recorder: spans started but never stopped: keys=%v", outstanding))
		}

		r.logger.Warn("recorder: dropping spans started but never stopped: keys=%v", outstanding)
	}

	scope.Timer.Flush(r.sink, tags, r.sampleRate)
	scope.Counter.Flush(r.sink, tags, r.sampleRate)
	scope.SiteCounter.Flush(r.sink, map[string]string{"type": "site"}, r.sampleRate)
}

// Cleanup unconditionally severs the context's scope binding without flushing. It must run after
// End on the normal path, and alone on abort paths, before a pooled worker picks up its next unit
// of work; any accumulated data that was not flushed is dropped.
func (r *Recorder) Cleanup(ctx context.Context) {
	if holder, ok := holderFromContext(ctx); ok {
		holder.scope = nil
	}
}
