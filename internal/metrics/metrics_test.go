package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	Register()
	Register() // second call must not panic

	before := testutil.ToFloat64(bookingCreated.WithLabelValues("member"))
	IncBookingCreated("member", 2)
	if got := testutil.ToFloat64(bookingCreated.WithLabelValues("member")); got != before+1 {
		t.Fatalf("booking_created_total{member} = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(reservationRejected.WithLabelValues(ReasonSoldOut))
	IncReservationRejected(ReasonSoldOut)
	if got := testutil.ToFloat64(reservationRejected.WithLabelValues(ReasonSoldOut)); got != before+1 {
		t.Fatalf("reservation_rejected_total{sold_out} = %v, want %v", got, before+1)
	}
}
