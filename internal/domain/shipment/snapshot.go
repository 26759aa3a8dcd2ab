package shipment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether we are the seller (outgoing) or the buyer
// (incoming) on a shipment. Several notification rules are gated on it.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Snapshot is the read-only projection of the shipment fields that feed
// status derivation and deadline notifications. It is assembled once per
// evaluation and never mutated afterwards; nil date pointers mean the
// milestone has not happened yet.
type Snapshot struct {
	ID           int64
	SerialNumber string
	Direction    Direction

	AgreedShipDate       *time.Time
	ActualShipDate       *time.Time
	ETA                  *time.Time
	CustomsClearanceDate *time.Time
	DeliveryDate         *time.Time

	// BookingReference is the carrier-issued BL/AWB number. Empty means
	// cargo space has not been booked yet.
	BookingReference  string
	DraftDocsApproved bool
	OriginalDocsSent  bool

	TotalValueUSD decimal.Decimal
	PaidValueUSD  decimal.Decimal

	QualityFeedbackRequested bool

	ReceiptConfirmed bool
	ReceiptHasIssues bool

	TransportLegsAssigned  int
	TransportLegsDelivered int
	FreeTimeDays           int

	// Rendering-only fields. They never influence a decision.
	PartyName   string
	ProductName string
}

// BalanceValueUSD is the open amount still owed on the shipment.
func (s *Snapshot) BalanceValueUSD() decimal.Decimal {
	return s.TotalValueUSD.Sub(s.PaidValueUSD)
}

// FullyPaid reports whether the paid amount covers the total value.
func (s *Snapshot) FullyPaid() bool {
	return s.PaidValueUSD.GreaterThanOrEqual(s.TotalValueUSD)
}

// Booked reports whether a BL/AWB or booking reference has been issued.
func (s *Snapshot) Booked() bool {
	return s.BookingReference != ""
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DatePassed reports whether d exists and its calendar date is today or
// earlier. Comparisons are inclusive on the date, never on the timestamp.
func DatePassed(d *time.Time, today time.Time) bool {
	if d == nil {
		return false
	}
	return !dateOnly(*d).After(dateOnly(today))
}

// DaysUntil returns the whole calendar days from today until d. Negative
// when d is in the past. ok is false when d is not set.
func DaysUntil(d *time.Time, today time.Time) (days int, ok bool) {
	if d == nil {
		return 0, false
	}
	diff := dateOnly(*d).Sub(dateOnly(today))
	return int(diff.Hours() / 24), true
}

// DaysSince returns the whole calendar days from d until today. Negative
// when d is in the future. ok is false when d is not set.
func DaysSince(d *time.Time, today time.Time) (days int, ok bool) {
	days, ok = DaysUntil(d, today)
	return -days, ok
}
