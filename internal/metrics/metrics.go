// Package metrics exposes Prometheus counters for the reservation flow.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "venue_booking"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Bookings committed, by ticket type.",
		},
		[]string{"ticket_type"},
	)

	reservationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_rejected_total",
			Help:      "Reservation attempts that did not produce a booking, by reason.",
		},
		[]string{"reason"},
	)

	seatsBooked = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_seats",
			Help:      "Seats consumed per booking.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 12, 20},
		},
	)

	bookingStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_change_total",
			Help:      "Booking status transitions, by new status.",
		},
		[]string{"status"},
	)

	eventPublishFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failed_total",
			Help:      "Booking events that could not be handed to the broker.",
		},
	)
)

// Rejection reasons.
const (
	ReasonValidation   = "validation"
	ReasonSlotNotFound = "slot_not_found"
	ReasonSoldOut      = "sold_out"
	ReasonError        = "error"
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, reservationRejected, seatsBooked, bookingStatus, eventPublishFailed)
	})
}

func IncBookingCreated(ticketType string, seats int) {
	bookingCreated.WithLabelValues(ticketType).Inc()
	seatsBooked.Observe(float64(seats))
}

func IncReservationRejected(reason string) {
	reservationRejected.WithLabelValues(reason).Inc()
}

func IncBookingStatus(status string) {
	bookingStatus.WithLabelValues(status).Inc()
}

func IncEventPublishFailed() {
	eventPublishFailed.Inc()
}
