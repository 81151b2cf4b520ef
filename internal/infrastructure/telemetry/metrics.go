package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	paymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payments_recorded_total",
		Help: "Payments committed, labeled by money direction",
	}, []string{"direction"})

	paymentAmounts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_payment_amount",
		Help:    "Distribution of recorded payment amounts",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	}, []string{"direction"})

	paymentConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_payment_commit_conflicts_total",
		Help: "Payment commit attempts rolled back by a bill version conflict",
	})
)

// RecordPayment counts one committed payment
func RecordPayment(direction string, amount float64) {
	paymentsRecorded.WithLabelValues(direction).Inc()
	paymentAmounts.WithLabelValues(direction).Observe(amount)
}

// RecordPaymentConflict counts one optimistic-lock rollback
func RecordPaymentConflict() {
	paymentConflicts.Inc()
}

// GinMiddleware records request counts and latency per route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
