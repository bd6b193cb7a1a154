package metrics

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

// Span opens a timing span for key on the context's live scope and returns the function that
// closes it, intended for use with defer so the span is stopped on every exit path:
//
//	defer metrics.Span(ctx, "db.query")()
//
// When no scope is live, both the open and the returned close are no-ops.
func Span(ctx context.Context, key string) func() {
	scope, ok := FromContext(ctx)
	if !ok {
		return func() {}
	}

	scope.Timer.Start(key)

	return func() {
		// The matching Start above makes a stop error impossible unless the span was already
		// closed externally; either way there is nothing actionable for the caller.
		scope.Timer.Stop(key)
	}
}

// Wrap returns a function that runs fn inside a timing span named after the given prefix and
// fn's own name. The wrapped function's result is returned unchanged.
func Wrap(prefix string, fn func(context.Context) error) func(context.Context) error {
	return NamedWrap(qualifyMetric(prefix, funcName(fn)), fn)
}

// NamedWrap returns a function that runs fn inside a timing span with an explicit name. The
// wrapped function's result is returned unchanged.
func NamedWrap(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		defer Span(ctx, name)()

		return fn(ctx)
	}
}

// funcName recovers a short, lowercased identifier for a function value from runtime metadata,
// e.g. a reference to loadProfile yields "loadprofile".
func funcName(fn func(context.Context) error) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()

	// Trim the package path and any receiver qualifiers, keeping the bare function name.
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	// Method values carry a "-fm" suffix in runtime metadata.
	name = strings.TrimSuffix(name, "-fm")

	return strings.ToLower(name)
}
