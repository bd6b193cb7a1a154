// Package task adapts the metric scope lifecycle to background task execution. It is glue only:
// all aggregation semantics live in the metrics package.
package task

import (
	"context"
	"fmt"

	"scopestats/internal/log"
	"scopestats/internal/metrics"
)

// Signal values tagged onto task status counters.
const (
	signalPrerun  = "prerun"
	signalPostrun = "postrun"
	signalFailure = "failure"
)

// Runner executes background tasks inside a metric scope. Each run emits a status counter per
// lifecycle signal directly to the sink, independent of the scope's own accumulators.
type Runner struct {
	Recorder *metrics.Recorder
	Logger   log.Logger
}

// Run executes fn inside a fresh task scope bound to ctx. On success the scope is flushed with
// the task name as a tag; on error or panic the scope is severed without flushing, so a failed
// task's partial counters and timings are dropped rather than reported. The failure remains
// visible through the status counter emitted on the failure signal.
func (t *Runner) Run(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	t.status(signalPrerun, name)

	ctx = t.Recorder.Begin(ctx, "task")
	defer t.Recorder.Cleanup(ctx)

	defer func() {
		if p := recover(); p != nil {
			t.status(signalFailure, name)
			t.Logger.Error("task: panic in task: name=%s panic=%v", name, p)
			err = fmt.Errorf("task: panic in task: name=%s panic=%v", name, p)
		}
	}()

	if err := fn(ctx); err != nil {
		t.status(signalFailure, name)
		return err
	}

	t.Recorder.End(ctx, map[string]string{"task": name})
	t.status(signalPostrun, name)

	return nil
}

// status emits a per-signal task status counter, bypassing the scope accumulators so it is
// reported even when the scope is never flushed.
func (t *Runner) status(signal string, name string) {
	t.Recorder.Sink().Increment("task.status", 1, map[string]string{
		"signal": signal,
		"task":   name,
	}, t.Recorder.SampleRate())
}
