package web

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"scopestats/internal/log"
	"scopestats/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records emissions for assertions.
type captureSink struct {
	mu      sync.Mutex
	counts  []captured
	timings []captured
}

type captured struct {
	name  string
	value int64
	tags  map[string]string
}

func (s *captureSink) Increment(name string, value int64, tags map[string]string, rate float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = append(s.counts, captured{name: name, value: value, tags: tags})

	return nil
}

func (s *captureSink) Timing(name string, d time.Duration, tags map[string]string, rate float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timings = append(s.timings, captured{name: name, tags: tags})

	return nil
}

func testMiddleware(sink metrics.Sink, trackPhases bool) *Middleware {
	return &Middleware{
		Recorder: metrics.NewRecorder(sink, log.NewNoopLogger(), metrics.RecorderOpts{}),
		Logger:   log.NewNoopLogger(),
		Opts:     MiddlewareOpts{TrackPhases: trackPhases},
	}
}

func TestMiddlewareFlushesInstrumentedRequest(t *testing.T) {
	sink := &captureSink{}

	handler := testMiddleware(sink, false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.SetView(r.Context(), "app.index")
		metrics.Incr(r.Context(), "render", 1)
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	values := make(map[string]int64)
	var methodTag, viewTag, typeTag string
	for _, m := range sink.counts {
		values[m.name] = m.value

		if m.tags["type"] != "site" {
			methodTag = m.tags["method"]
			viewTag = m.tags["view"]
			typeTag = m.tags["type"]
		}
	}

	assert.Equal(t, int64(1), values["view.hit"])
	assert.Equal(t, int64(1), values["view.render"])
	assert.Equal(t, "get", methodTag)
	assert.Equal(t, "app.index", viewTag)
	assert.Equal(t, "view", typeTag)

	require.NotEmpty(t, sink.timings)
	assert.Equal(t, "view.total", sink.timings[0].name)
}

func TestMiddlewareSkipsFlushWithoutViewAttribution(t *testing.T) {
	sink := &captureSink{}

	handler := testMiddleware(sink, false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Empty(t, sink.counts)
	assert.Empty(t, sink.timings)
}

func TestMiddlewareAjaxMethodTag(t *testing.T) {
	sink := &captureSink{}

	handler := testMiddleware(sink, false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.SetView(r.Context(), "app.index")
	}))

	request := httptest.NewRequest(http.MethodPost, "/", nil)
	request.Header.Set("X-Requested-With", "XMLHttpRequest")

	handler.ServeHTTP(httptest.NewRecorder(), request)

	var found bool
	for _, m := range sink.counts {
		if m.tags["method"] == "post_ajax" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestMiddlewareTrackPhasesRecordsHandlerSpan(t *testing.T) {
	sink := &captureSink{}

	handler := testMiddleware(sink, true).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.SetView(r.Context(), "app.index")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	names := make(map[string]bool)
	for _, m := range sink.timings {
		names[m.name] = true
	}

	assert.True(t, names["view.total"])
	assert.True(t, names["view.handler"])
}

func TestMiddlewarePanickingHandlerDropsData(t *testing.T) {
	sink := &captureSink{}

	handler := testMiddleware(sink, false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.SetView(r.Context(), "app.index")
		metrics.Incr(r.Context(), "render", 1)
		panic("handler exploded")
	}))

	require.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})

	// Nothing was flushed on the abort path.
	assert.Empty(t, sink.counts)
	assert.Empty(t, sink.timings)
}
