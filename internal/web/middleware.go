// Package web adapts the metric scope lifecycle to the net/http request/response cycle. It is
// glue only: all aggregation semantics live in the metrics package.
package web

import (
	"net/http"
	"strings"

	"scopestats/internal/log"
	"scopestats/internal/metrics"
)

// Middleware binds a metric scope to every inbound HTTP request and flushes it once the request
// is served. Handlers attribute the request to a view by calling metrics.SetView on the request
// context; requests that never attribute a view are cleaned up without flushing.
type Middleware struct {
	Recorder *metrics.Recorder
	Logger   log.Logger
	Opts     MiddlewareOpts
}

// MiddlewareOpts formalizes configuration options for the middleware.
type MiddlewareOpts struct {
	// TrackPhases toggles recording of a dispatch-phase span around the inner handler.
	TrackPhases bool
}

// Handler wraps an http.Handler with scope lifecycle management.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := m.Recorder.Begin(r.Context(), "view")

		// The scope must be severed on every exit path, including a panicking handler, so a
		// pooled connection goroutine cannot bleed state into its next request. On the panic
		// path this runs without End: accumulated data is dropped, not flushed.
		defer m.Recorder.Cleanup(ctx)

		if m.Opts.TrackPhases {
			done := metrics.Span(ctx, "handler")
			next.ServeHTTP(w, r.WithContext(ctx))
			done()
		} else {
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		scope, ok := metrics.FromContext(ctx)
		if !ok || scope.View() == "" {
			m.Logger.Debug("web: request served without view attribution; skipping flush: path=%s", r.URL.Path)
			return
		}

		m.Recorder.End(ctx, map[string]string{
			"method": methodTag(r),
			"view":   scope.View(),
			"type":   "view",
		})
	})
}

// methodTag derives the method tag value for a request: the lowercased HTTP method, with an
// "_ajax" suffix for XMLHttpRequest-initiated requests.
func methodTag(r *http.Request) string {
	method := strings.ToLower(r.Method)

	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		method += "_ajax"
	}

	return method
}
