package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSwaggerRouter(cfg SwaggerConfig) *gin.Engine {
	router := gin.New()
	router.Use(Secure())
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled returns 404", func(t *testing.T) {
		w := swaggerRequest(newSwaggerRouter(SwaggerConfig{Enabled: false}), "192.0.2.1:1234")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("enabled without allow list serves everyone", func(t *testing.T) {
		w := swaggerRequest(newSwaggerRouter(SwaggerConfig{Enabled: true}), "192.0.2.1:1234")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
		assert.Equal(t, SwaggerCSPDirective, w.Header().Get("Content-Security-Policy"))
	})

	t.Run("allow list", func(t *testing.T) {
		router := newSwaggerRouter(SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"10.0.0.0/8", "192.0.2.7", "not-an-ip"},
		})

		tests := []struct {
			name       string
			remoteAddr string
			want       int
		}{
			{"network member", "10.1.2.3:5000", http.StatusOK},
			{"exact address", "192.0.2.7:5000", http.StatusOK},
			{"outsider", "192.0.2.8:5000", http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := swaggerRequest(router, tt.remoteAddr)
				assert.Equal(t, tt.want, w.Code)
				if tt.want == http.StatusForbidden {
					assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
				}
			})
		}
	})
}

func TestIsIPAllowed(t *testing.T) {
	ips, nets := parseAllowList([]string{" 127.0.0.1 ", "::1", "172.16.0.0/12", "300.0.0.0/8"})

	assert.Len(t, ips, 2)
	assert.Len(t, nets, 1)
	assert.True(t, isIPAllowed(net.ParseIP("127.0.0.1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("172.20.0.9"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("8.8.8.8"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
