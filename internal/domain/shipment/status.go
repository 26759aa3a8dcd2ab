package shipment

import (
	"fmt"
	"time"
)

// Status is the closed set of lifecycle states a shipment can be in.
type Status string

const (
	StatusPlanning          Status = "planning"
	StatusDelayed           Status = "delayed"
	StatusSailed            Status = "sailed"
	StatusAwaitingClearance Status = "awaiting_clearance"
	StatusPendingTransport  Status = "pending_transport"
	StatusLoadedToFinal     Status = "loaded_to_final"
	StatusArrived           Status = "arrived"
	StatusDelivered         Status = "delivered"
	StatusReceived          Status = "received"
	StatusQualityIssue      Status = "quality_issue"
)

// statusOrder is used only for display ordering. Derivation recomputes from
// scratch every time; it never walks a transition graph.
var statusOrder = map[Status]int{
	StatusPlanning:          1,
	StatusDelayed:           2,
	StatusSailed:            3,
	StatusAwaitingClearance: 4,
	StatusPendingTransport:  5,
	StatusLoadedToFinal:     6,
	StatusArrived:           7,
	StatusDelivered:         8,
	StatusReceived:          9,
	StatusQualityIssue:      10,
}

// Order returns the display rank of the status, or 0 for an unknown value.
func (s Status) Order() int {
	return statusOrder[s]
}

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// DerivedState is the engine's output as persisted on the shipment record.
type DerivedState struct {
	Status       Status
	Reason       string
	CalculatedAt time.Time
}

// statusRule is one row of the ordered derivation table. The first row whose
// predicate matches decides the status; the reason is regenerated on every
// call so it always names the signal that actually triggered.
type statusRule struct {
	status  Status
	matches func(s *Snapshot, today time.Time) bool
	reason  func(s *Snapshot, today time.Time) string
}

// statusRules is evaluated top to bottom. Terminal "problem" states come
// first because several conditions can be simultaneously true and only one
// status is returned; the workflow states follow in reverse chronological
// order of the lifecycle.
var statusRules = []statusRule{
	{
		status: StatusQualityIssue,
		matches: func(s *Snapshot, _ time.Time) bool {
			return s.ReceiptConfirmed && s.ReceiptHasIssues
		},
		reason: func(*Snapshot, time.Time) string {
			return "warehouse receipt confirmed with quality issues"
		},
	},
	{
		status: StatusReceived,
		matches: func(s *Snapshot, _ time.Time) bool {
			return s.ReceiptConfirmed && !s.ReceiptHasIssues
		},
		reason: func(*Snapshot, time.Time) string {
			return "warehouse receipt confirmed without issues"
		},
	},
	{
		status: StatusDelivered,
		matches: func(s *Snapshot, today time.Time) bool {
			return DatePassed(s.DeliveryDate, today)
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("delivered to final destination on %s", s.DeliveryDate.Format("2006-01-02"))
		},
	},
	{
		status: StatusLoadedToFinal,
		matches: func(s *Snapshot, _ time.Time) bool {
			return s.TransportLegsAssigned > 0
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("internal transport underway (%d of %d legs delivered)",
				s.TransportLegsDelivered, s.TransportLegsAssigned)
		},
	},
	{
		status: StatusPendingTransport,
		matches: func(s *Snapshot, today time.Time) bool {
			return DatePassed(s.CustomsClearanceDate, today) && s.TransportLegsAssigned == 0
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("customs cleared on %s, no internal transport assigned yet",
				s.CustomsClearanceDate.Format("2006-01-02"))
		},
	},
	{
		status: StatusAwaitingClearance,
		matches: func(s *Snapshot, today time.Time) bool {
			return DatePassed(s.ETA, today) && s.CustomsClearanceDate == nil
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("ETA %s passed without clearance date", s.ETA.Format("2006-01-02"))
		},
	},
	{
		status: StatusSailed,
		matches: func(s *Snapshot, _ time.Time) bool {
			return s.Booked() && s.ETA != nil
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("booked under %s, ETA %s", s.BookingReference, s.ETA.Format("2006-01-02"))
		},
	},
	{
		status: StatusDelayed,
		matches: func(s *Snapshot, today time.Time) bool {
			return DatePassed(s.AgreedShipDate, today) && !s.Booked()
		},
		reason: func(s *Snapshot, _ time.Time) string {
			return fmt.Sprintf("agreed shipping date %s passed without booking reference",
				s.AgreedShipDate.Format("2006-01-02"))
		},
	},
}

// Derive computes the lifecycle status for a snapshot as of today. It is
// pure and total: missing optional fields are treated as "not yet true" and
// the fallback is always planning.
func Derive(s *Snapshot, today time.Time) (Status, string) {
	for _, rule := range statusRules {
		if rule.matches(s, today) {
			return rule.status, rule.reason(s, today)
		}
	}
	return StatusPlanning, "no lifecycle signals yet"
}
