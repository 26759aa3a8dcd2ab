// Package alert holds the deadline notification model and the rule set that
// produces notifications from shipment snapshots.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the urgency tier of a notification: info < warning < critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// RuleID identifies the business deadline a notification was produced by.
// Together with the shipment ID it forms the deduplication key: at most one
// active notification may exist per (shipment, rule) pair.
type RuleID string

const (
	RuleShippingDeadline  RuleID = "shipping_deadline"
	RuleBookingConfirmed  RuleID = "booking_confirmed"
	RuleGoodsLoaded       RuleID = "goods_loaded"
	RuleBalanceDue        RuleID = "balance_payment_due"
	RuleArrivalFollowUp   RuleID = "arrival_follow_up"
	RuleQualityFeedback   RuleID = "quality_feedback"
	RuleSendOriginalDocs  RuleID = "send_original_docs"
	RuleClearanceDeadline RuleID = "clearance_deadline"
	RuleWarehouseReceipt  RuleID = "warehouse_receipt"
)

// Notification is a persisted deadline alert. Dismissal is driven externally;
// a scan only ever creates notifications, it never deletes them.
type Notification struct {
	ID         uuid.UUID
	ShipmentID int64
	RuleID     RuleID
	Severity   Severity
	Message    string
	CreatedAt  time.Time
	Dismissed  bool
}
