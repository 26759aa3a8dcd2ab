package alert

import (
	"fmt"
	"time"

	"supplychain_backoffice/internal/domain/shipment"
)

const (
	shippingDeadlineWarnDays     = 5
	shippingDeadlineCriticalDays = 1
	balanceDueWindowDays         = 14
	arrivalFollowUpAfterDays     = 2
	qualityFeedbackAfterDays     = 10
	clearanceDeadlineWarnDays    = 2
	warehouseReceiptAfterDays    = 3
)

// Rule is one independent watch over a business deadline. Rules are
// evaluated in declaration order and fire independently of each other; a
// shipment may match zero, one or several rules in a single pass.
type Rule struct {
	ID       RuleID
	Applies  func(s *shipment.Snapshot, status shipment.Status, today time.Time) bool
	Severity func(s *shipment.Snapshot, today time.Time) Severity
	Message  func(s *shipment.Snapshot, today time.Time) string
}

func static(sev Severity) func(*shipment.Snapshot, time.Time) Severity {
	return func(*shipment.Snapshot, time.Time) Severity { return sev }
}

// atDestination reports whether the status implies the cargo has reached the
// discharge port or beyond, short of warehouse receipt.
func atDestination(status shipment.Status) bool {
	switch status {
	case shipment.StatusAwaitingClearance, shipment.StatusPendingTransport,
		shipment.StatusLoadedToFinal, shipment.StatusArrived, shipment.StatusDelivered:
		return true
	}
	return false
}

// Rules returns the full rule set in declaration order. Seller-side rules
// are gated on outgoing shipments, buyer-side rules on incoming ones; both
// sides share the same mechanics.
func Rules() []Rule {
	return []Rule{
		{
			// Agreed shipping date is closing in and cargo space is still
			// unbooked. Escalates from warning to critical inside one day of
			// the deadline, overdue included.
			ID: RuleShippingDeadline,
			Applies: func(s *shipment.Snapshot, _ shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionOutgoing || s.Booked() {
					return false
				}
				days, ok := shipment.DaysUntil(s.AgreedShipDate, today)
				return ok && days <= shippingDeadlineWarnDays
			},
			Severity: func(s *shipment.Snapshot, today time.Time) Severity {
				days, _ := shipment.DaysUntil(s.AgreedShipDate, today)
				if days <= shippingDeadlineCriticalDays {
					return SeverityCritical
				}
				return SeverityWarning
			},
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s: agreed shipping date %s is due and no booking reference is on file",
					s.SerialNumber, s.AgreedShipDate.Format("2006-01-02"))
			},
		},
		{
			// Booking confirmed: share the ETA with the counterparty. Fires
			// once per booking thanks to deduplication.
			ID: RuleBookingConfirmed,
			Applies: func(s *shipment.Snapshot, status shipment.Status, _ time.Time) bool {
				return s.Direction == shipment.DirectionOutgoing &&
					status == shipment.StatusSailed && s.ETA != nil
			},
			Severity: static(SeverityInfo),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s booked under %s, ETA %s: share schedule with the counterparty",
					s.SerialNumber, s.BookingReference, s.ETA.Format("2006-01-02"))
			},
		},
		{
			ID: RuleGoodsLoaded,
			Applies: func(s *shipment.Snapshot, status shipment.Status, _ time.Time) bool {
				return s.Direction == shipment.DirectionOutgoing &&
					status == shipment.StatusLoadedToFinal
			},
			Severity: static(SeverityWarning),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s loaded for final transport: issue shipping documents", s.SerialNumber)
			},
		},
		{
			ID: RuleBalanceDue,
			Applies: func(s *shipment.Snapshot, _ shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionOutgoing || !s.BalanceValueUSD().IsPositive() {
					return false
				}
				days, ok := shipment.DaysUntil(s.ETA, today)
				return ok && days <= balanceDueWindowDays
			},
			Severity: static(SeverityInfo),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s: balance payment of %s USD falls due ahead of ETA %s",
					s.SerialNumber, s.BalanceValueUSD().StringFixed(2), s.ETA.Format("2006-01-02"))
			},
		},
		{
			ID: RuleArrivalFollowUp,
			Applies: func(s *shipment.Snapshot, status shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionOutgoing || !atDestination(status) {
					return false
				}
				days, ok := shipment.DaysSince(s.ETA, today)
				return ok && days >= arrivalFollowUpAfterDays
			},
			Severity: static(SeverityInfo),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s arrived around %s: follow up with the buyer",
					s.SerialNumber, s.ETA.Format("2006-01-02"))
			},
		},
		{
			ID: RuleQualityFeedback,
			Applies: func(s *shipment.Snapshot, _ shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionOutgoing || s.QualityFeedbackRequested {
					return false
				}
				days, ok := shipment.DaysSince(s.ETA, today)
				return ok && days >= qualityFeedbackAfterDays
			},
			Severity: static(SeverityInfo),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s: request quality feedback on %s from the buyer",
					s.SerialNumber, s.ProductName)
			},
		},
		{
			ID: RuleSendOriginalDocs,
			Applies: func(s *shipment.Snapshot, _ shipment.Status, _ time.Time) bool {
				return s.Direction == shipment.DirectionOutgoing &&
					s.FullyPaid() && s.DraftDocsApproved && !s.OriginalDocsSent
			},
			Severity: static(SeverityWarning),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s fully paid and drafts approved: send original documents", s.SerialNumber)
			},
		},
		{
			// Buyer side: the free-time window at the discharge port is
			// running out and customs clearance is still open. Escalates to
			// critical once demurrage starts accruing.
			ID: RuleClearanceDeadline,
			Applies: func(s *shipment.Snapshot, status shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionIncoming || status != shipment.StatusAwaitingClearance {
					return false
				}
				days, ok := shipment.DaysUntil(freeTimeEnd(s), today)
				return ok && days <= clearanceDeadlineWarnDays
			},
			Severity: func(s *shipment.Snapshot, today time.Time) Severity {
				if days, ok := shipment.DaysUntil(freeTimeEnd(s), today); ok && days <= 0 {
					return SeverityCritical
				}
				return SeverityWarning
			},
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s: free time ends %s and customs clearance is still open",
					s.SerialNumber, freeTimeEnd(s).Format("2006-01-02"))
			},
		},
		{
			ID: RuleWarehouseReceipt,
			Applies: func(s *shipment.Snapshot, status shipment.Status, today time.Time) bool {
				if s.Direction != shipment.DirectionIncoming || status != shipment.StatusDelivered || s.ReceiptConfirmed {
					return false
				}
				days, ok := shipment.DaysSince(s.DeliveryDate, today)
				return ok && days >= warehouseReceiptAfterDays
			},
			Severity: static(SeverityInfo),
			Message: func(s *shipment.Snapshot, _ time.Time) string {
				return fmt.Sprintf("Shipment %s delivered on %s: confirm warehouse receipt",
					s.SerialNumber, s.DeliveryDate.Format("2006-01-02"))
			},
		},
	}
}

// freeTimeEnd is the last demurrage-free day at the discharge port. Nil when
// the ETA is unknown.
func freeTimeEnd(s *shipment.Snapshot) *time.Time {
	if s.ETA == nil {
		return nil
	}
	end := s.ETA.AddDate(0, 0, s.FreeTimeDays)
	return &end
}
