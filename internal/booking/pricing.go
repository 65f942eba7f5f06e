package booking

import (
	"math"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

// SelectRate picks the hourly rate for a session in rm.
// Order: the engineer-specific rate, then base rate, then the studio default.
func SelectRate(rm *room.Room, withEngineer bool) float64 {
	if withEngineer && rm.RateWithEngineer != nil {
		return *rm.RateWithEngineer
	}
	if !withEngineer && rm.RateWithoutEngineer != nil {
		return *rm.RateWithoutEngineer
	}
	return rm.HourlyBaseRate()
}

// BilledHours is the difference of the hour components; minutes are dropped.
// "10:30"-"13:15" bills 3 hours.
func BilledHours(start, end string) (int, error) {
	sh, err := clock.Hour(start)
	if err != nil {
		return 0, err
	}
	eh, err := clock.Hour(end)
	if err != nil {
		return 0, err
	}
	if eh < sh {
		return 0, nil
	}
	return eh - sh, nil
}

// ExpectedCharge is what the booking should cost in total.
// A price override replaces the computed charge, discount included.
func ExpectedCharge(b *Booking, rm *room.Room) (float64, error) {
	if b.PriceOverride != nil {
		return roundCents(*b.PriceOverride), nil
	}
	hours, err := BilledHours(b.StartTime, b.EndTime)
	if err != nil {
		return 0, err
	}
	charge := float64(hours) * SelectRate(rm, b.HasEngineer())
	return ApplyDiscount(charge, b.DiscountPercent), nil
}

// ApplyDiscount reduces amount by percent, clamped to [0, 100].
func ApplyDiscount(amount, percent float64) float64 {
	percent = math.Max(0, math.Min(100, percent))
	return roundCents(amount * (1 - percent/100))
}

// ExtensionCost prices additional hours at the room's base rate.
func ExtensionCost(rm *room.Room, hours int) float64 {
	return roundCents(rm.HourlyBaseRate() * float64(hours))
}

// Reconciliation compares recorded payments with the expected charge.
type Reconciliation struct {
	TotalPaid      float64
	ExpectedAmount float64
	Balance        float64
	State          PaymentState
	IsFullyPaid    bool
}

// Reconcile classifies totalPaid against expected. Amounts compare in whole cents.
func Reconcile(totalPaid, expected float64) Reconciliation {
	paid := cents(totalPaid)
	want := cents(expected)

	r := Reconciliation{
		TotalPaid:      roundCents(totalPaid),
		ExpectedAmount: roundCents(expected),
		Balance:        float64(max(want-paid, 0)) / 100,
	}
	switch {
	case paid >= want:
		r.State = PaymentPaid
		r.IsFullyPaid = true
	case paid > 0:
		r.State = PaymentPartial
	default:
		r.State = PaymentUnpaid
	}
	return r
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func roundCents(v float64) float64 {
	return float64(cents(v)) / 100
}
