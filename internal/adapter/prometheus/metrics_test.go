package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordMetricsCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewPrometheusAdapter()
	NewPrometheusAdapter()

	router := gin.New()
	router.GET("/api/bikes/:id", func(c *gin.Context) {
		start := time.Now()
		defer metrics.RecordMetrics(c, start)
		c.Status(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/bikes/:id", "404"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bikes/abc", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/bikes/:id", "404"))

	assert.Equal(t, before+1, after)
}

func TestIncBookingStatus(t *testing.T) {
	metrics := NewPrometheusAdapter()
	before := testutil.ToFloat64(bookingStatus.WithLabelValues("completed"))
	metrics.IncBookingStatus("completed")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingStatus.WithLabelValues("completed")))
}
