package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs request with level by status", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		for _, path := range []string{"/ok", "/missing", "/boom"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		}

		entries := recorded.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 3)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
	})

	t.Run("propagates request id into request context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "test-req-123")
			c.Next()
		})
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/test", func(c *gin.Context) {
			assert.Equal(t, "test-req-123", GetRequestID(c.Request.Context()))
			FromContext(c.Request.Context()).Info("inside handler")
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		entries := recorded.FilterMessage("inside handler").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "test-req-123", entries[0].ContextMap()["request_id"])
	})

	t.Run("GetGinLogger returns the request logger", func(t *testing.T) {
		router := gin.New()
		router.Use(GinMiddleware(zap.NewNop()))
		var got *zap.Logger
		router.GET("/test", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.NotNil(t, got)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
