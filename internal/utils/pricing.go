package utils

import (
	"math"
	"time"

	"rentool-backend/internal/domain"
)

// RentalDays returns the billable day count for a rental period: the
// ceiling of the fractional day difference, clamped to a minimum of one
// day. A same-day or backwards range therefore prices as a single day.
func RentalDays(start, end time.Time) int32 {
	days := int32(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// LineSubtotal computes one line's price in cents.
func LineSubtotal(dayRateCents, quantity, days int32) int64 {
	return int64(dayRateCents) * int64(quantity) * int64(days)
}

// TotalCents sums the line subtotals. The rental header total must equal
// this sum after every committed transaction.
func TotalCents(lines []domain.RentalLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.SubtotalCents
	}
	return total
}
