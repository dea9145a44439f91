package prometheus

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quickwheelz",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quickwheelz",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	bookingStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quickwheelz",
			Name:      "booking_status_total",
			Help:      "Bookings moved into each status.",
		},
		[]string{"status"},
	)
)

type PrometheusAdapter struct{}

var _ ports.MetricsPort = (*PrometheusAdapter)(nil)

// NewPrometheusAdapter registers the collectors on first use. Safe to call multiple times.
func NewPrometheusAdapter() *PrometheusAdapter {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingStatus)
	})
	return &PrometheusAdapter{}
}

func (p *PrometheusAdapter) RecordMetrics(c *gin.Context, start time.Time) {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	method := c.Request.Method

	httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

func (p *PrometheusAdapter) IncBookingStatus(status string) {
	bookingStatus.WithLabelValues(status).Inc()
}
