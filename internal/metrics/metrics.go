package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tapbot"

var (
	once sync.Once

	updatesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_processed_total",
			Help:      "Count of Telegram updates handled by route.",
		},
		[]string{"route"},
	)

	updateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling one Telegram update.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	tapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taps_total",
			Help:      "Count of successful taps.",
		},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Count of registration flows by outcome.",
		},
		[]string{"outcome"},
	)

	sendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Count of failed outgoing messages by reason.",
		},
		[]string{"reason"},
	)

	digestMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_messages_total",
			Help:      "Count of digest deliveries by status.",
		},
		[]string{"status"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(updatesProcessed, updateDuration, tapsTotal, registrations,
			sendFailures, digestMessages, httpRequests)
	})
}

// IncUpdate counts a bot update by the route that handled it
func IncUpdate(route string) {
	updatesProcessed.WithLabelValues(route).Inc()
}

// ObserveUpdateDuration records how long one update took to handle
func ObserveUpdateDuration(seconds float64) {
	updateDuration.Observe(seconds)
}

// IncTap counts a tap
func IncTap() {
	tapsTotal.Inc()
}

// IncRegistration counts a profile form event: started, completed or failed
func IncRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

// IncSendFailure counts a failed outbound message by reason
func IncSendFailure(reason string) {
	sendFailures.WithLabelValues(reason).Inc()
}

// IncDigestMessage counts a digest delivery attempt by status
func IncDigestMessage(status string) {
	digestMessages.WithLabelValues(status).Inc()
}

// IncHTTPRequest counts an API request
func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
