package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		notificationsTotal,
		signatureChecksTotal,
		regressionsBlockedTotal,
		duplicateNotificationsTotal,
	)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notifications_total",
			Help: "Inbound gateway notifications by channel (notify/cancel/callback) and result.",
		},
		[]string{"channel", "result"},
	)

	signatureChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_signature_checks_total",
			Help: "Signature verification outcomes (ok/mismatch/skipped).",
		},
		[]string{"result"},
	)

	regressionsBlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_status_regressions_blocked_total",
			Help: "Notifications refused because they would lower a donation's status rank.",
		},
	)

	duplicateNotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_duplicate_notifications_total",
			Help: "Notifications already seen by the replay guard (gateway retries).",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncNotification(channel, result string) {
	notificationsTotal.WithLabelValues(norm(channel), norm(result)).Inc()
}

func IncSignatureCheck(result string) {
	signatureChecksTotal.WithLabelValues(norm(result)).Inc()
}

func IncRegressionBlocked() {
	regressionsBlockedTotal.Inc()
}

func IncDuplicateNotification() {
	duplicateNotificationsTotal.Inc()
}
