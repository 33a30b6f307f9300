package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds the request id copied into span attributes
const MaxRequestIDLength = 128

// TracingConfig configures the HTTP tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider records the spans; nil means the global provider
	TracerProvider trace.TracerProvider
	// SkipPaths are not traced. A trailing "*" matches by prefix.
	SkipPaths []string
}

// DefaultTracingConfig skips the live stream, whose span would last for the
// whole connection, and the health endpoint.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "little-lemon-menu",
		Enabled:     true,
		SkipPaths: []string{
			"/health",
			"/menu/stream",
			"/api/v1/menu/stream",
			"/static/*",
			"/swagger/*",
		},
	}
}

// TracingWithConfig returns otelgin middleware. Register SpanErrorMarker
// right after it to attach the request id and error status.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			return !skipPath(cfg.SkipPaths, r.URL.Path)
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

func skipPath(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}

// SpanErrorMarker tags the active span with the request id and marks
// 4xx/5xx responses as errors.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := GetRequestID(c); requestID != "" {
			if len(requestID) > MaxRequestIDLength {
				requestID = requestID[:MaxRequestIDLength]
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("error.message", c.Errors.String()))
		}
	}
}
