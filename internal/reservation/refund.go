package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

// cancellationCutoff is the minimum lead time before departure at which
// a booking may still be cancelled. At or below this cutoff the
// cancellation is rejected outright.
const cancellationCutoff = 2 * time.Hour

// RefundAmount computes the refund due when a booking with the given
// total price is cancelled hoursUntilDeparture hours before departure.
// Pure and deterministic:
//
//	>= 48h   90% (10% flat cancellation fee)
//	[24,48)  70%
//	[2,24)   50%
//	< 2h     nothing (cancellation itself is rejected before this point)
//
// The result is rounded to 2 decimal places, halves up.
func RefundAmount(total decimal.Decimal, hoursUntilDeparture float64) decimal.Decimal {
	var fraction decimal.Decimal
	switch {
	case hoursUntilDeparture >= 48:
		fraction = decimal.NewFromFloat(0.9)
	case hoursUntilDeparture >= 24:
		fraction = decimal.NewFromFloat(0.7)
	case hoursUntilDeparture >= 2:
		fraction = decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero.Round(2)
	}
	// Round is half-away-from-zero, which equals half-up for the
	// non-negative amounts handled here.
	return total.Mul(fraction).Round(2)
}

// CancellationOpen reports whether a booking for a travel option
// departing at the given time may still be cancelled: strictly more
// than two hours must remain until departure.
func CancellationOpen(departureAt, now time.Time) bool {
	return departureAt.Sub(now) > cancellationCutoff
}

// HoursUntil returns the (possibly negative) number of hours from now
// until departure, as fed into RefundAmount.
func HoursUntil(departureAt, now time.Time) float64 {
	return departureAt.Sub(now).Hours()
}
