package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordNamespaceOperation("upload_file", "success", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.OperationsTotal.WithLabelValues("upload_file", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OperationsTotal.WithLabelValues("upload_file", "success")))
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordUploadBytes(100)
	m.RecordUploadBytes(23)
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordLogin(false)
	m.IncChatMessages()

	assert.Equal(t, 123.0, testutil.ToFloat64(m.UploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatMessages))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/files/:category", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, cat := range []string{"common", "personal"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/"+cat, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/files/:category", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nowdrop_http_requests_total")
	assert.Contains(t, w.Body.String(), "nowdrop_uptime_seconds")
}
