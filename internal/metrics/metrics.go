package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_webhook_events_total",
		Help: "Gateway webhook deliveries by event and outcome",
	}, []string{"event", "outcome"})

	transfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Completed wallet-to-wallet transfers",
	})

	depositsInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_deposits_initiated_total",
		Help: "Hosted checkout sessions started",
	})
)

// HTTPMiddleware records request counts and latency per route. The
// route template (c.FullPath) is used so path parameters do not blow up
// label cardinality; unmatched routes are grouped under "unknown".
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := c.Request.Method

		httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ObserveWebhook records one webhook delivery outcome.
func ObserveWebhook(event string, accepted bool) {
	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
	}
	webhookEvents.WithLabelValues(event, outcome).Inc()
}

// ObserveTransfer records a committed transfer.
func ObserveTransfer() {
	transfersTotal.Inc()
}

// ObserveDepositInitiated records a started checkout.
func ObserveDepositInitiated() {
	depositsInitiated.Inc()
}
