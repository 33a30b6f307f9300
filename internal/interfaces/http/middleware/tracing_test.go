package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	cfg := DefaultTracingConfig()
	cfg.TracerProvider = provider

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(cfg), SpanErrorMarker())
	router.GET("/api/v1/menu/items", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/menu/items/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/static/*file", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, recorder
}

func spanAttribute(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_RecordsRequestSpans(t *testing.T) {
	router, recorder := newTracedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu/items", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/menu/items")
	id, ok := spanAttribute(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", id.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_MarksErrorResponses(t *testing.T) {
	router, recorder := newTracedRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/menu/items/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Not Found", spans[0].Status().Description)
}

func TestTracing_SkipsPaths(t *testing.T) {
	router, recorder := newTracedRouter(t)

	for _, target := range []string{"/health", "/static/menu.js"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Empty(t, recorder.Ended())
}

func TestTracing_Disabled(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, TracerProvider: provider}), SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, recorder.Ended())
}

func TestSkipPath(t *testing.T) {
	patterns := []string{"/health", "/static/*"}

	assert.True(t, skipPath(patterns, "/health"))
	assert.True(t, skipPath(patterns, "/static/logo.svg"))
	assert.False(t, skipPath(patterns, "/healthz"))
	assert.False(t, skipPath(patterns, "/"))
}
