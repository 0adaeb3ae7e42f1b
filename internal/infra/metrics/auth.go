package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(loginsTotal, registrationsTotal)
}

var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result (ok/failed/rate_limited).",
		},
		[]string{"result"},
	)

	registrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Successful user registrations.",
		},
	)
)

func IncLogin(result string) {
	loginsTotal.WithLabelValues(norm(result)).Inc()
}

func IncRegistration() {
	registrationsTotal.Inc()
}
