// internal/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// NotificationsTotal counts IPN verification passes by final outcome
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipn_notifications_total",
			Help: "IPN notifications processed, by verification outcome.",
		},
		[]string{"outcome"},
	)

	// ReceiptsSent counts successfully delivered purchase-receipt emails
	ReceiptsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipts_sent_total",
			Help: "Purchase receipt emails delivered.",
		},
	)

	// EchoBackDuration observes the latency of the PayPal validation call
	EchoBackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ipn_echo_back_duration_seconds",
			Help:    "Duration of the echo-back validation call to PayPal.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CheckoutsCreated counts payment records created at checkout time
	CheckoutsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_created_total",
			Help: "Payment records created at checkout initiation.",
		},
	)
)

func init() {
	prometheus.MustRegister(NotificationsTotal, ReceiptsSent, EchoBackDuration, CheckoutsCreated)
}
