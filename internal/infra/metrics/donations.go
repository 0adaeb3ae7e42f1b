package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		donationsTotal,
		donationRevenueTotal,
		pendingBacklog,
	)
}

var (
	donationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_total",
			Help: "Donation status transitions by resulting status (pending/success/failed).",
		},
		[]string{"status"},
	)

	donationRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donation_revenue_total",
			Help: "The total monetary value of successful donations, labeled by currency.",
		},
		[]string{"currency"},
	)

	pendingBacklog = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "donations_pending_backlog",
			Help: "Donations stuck in PENDING longer than the sweeper threshold.",
		},
	)
)

func IncDonation(status string) {
	donationsTotal.WithLabelValues(norm(status)).Inc()
}

func AddDonationRevenue(currency string, amount float64) {
	donationRevenueTotal.WithLabelValues(norm(currency)).Add(amount)
}

func SetPendingBacklog(n int) {
	pendingBacklog.Set(float64(n))
}
