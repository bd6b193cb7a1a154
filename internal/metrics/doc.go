// Package metrics implements a per-request metric aggregation scope. Counters and timing spans
// contributed by arbitrary code during a single unit of work (an HTTP request or a background
// task) accumulate in an isolated Scope, and are flushed as tagged emissions to a statsd backend
// exactly once when the unit of work completes.
//
// The scope rides on a context.Context: a Recorder binds a fresh Scope at the start of the unit
// of work, instrumented code resolves it implicitly through the context, and the Recorder flushes
// and severs it at the end. Concurrent units of work carry independent contexts and therefore
// independent scopes, so no accumulator is ever shared between goroutines. Emission to the
// backend is fire-and-forget; transport errors never propagate into application code.
package metrics
