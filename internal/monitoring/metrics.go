package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_issued_total",
			Help: "Completed orders by sales channel",
		},
		[]string{"source"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets created by the issuer",
		},
	)

	availabilityConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "availability_conflicts_total",
			Help: "Purchase attempts rejected at lock time for insufficient inventory",
		},
	)

	refundsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_processed_total",
			Help: "Refunds by kind",
		},
		[]string{"kind"},
	)

	waitlistNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_notifications_total",
			Help: "Waitlist offer notifications sent",
		},
	)
)

func OrderIssued(source string, tickets int) {
	ordersIssued.WithLabelValues(source).Inc()
	ticketsIssued.Add(float64(tickets))
}

func AvailabilityConflict() {
	availabilityConflicts.Inc()
}

func RefundProcessed(full bool) {
	kind := "partial"
	if full {
		kind = "full"
	}
	refundsProcessed.WithLabelValues(kind).Inc()
}

func WaitlistNotified() {
	waitlistNotifications.Inc()
}
