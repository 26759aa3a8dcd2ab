package alert

import (
	"context"
	"errors"
)

// ErrDuplicateActive is returned by Create when an active notification for
// the same (shipment, rule) pair already exists. Callers treat it as "already
// covered", which keeps concurrent scans race-safe.
var ErrDuplicateActive = errors.New("active notification already exists for shipment and rule")

// Repository defines persistence for notifications. ActiveExists backs the
// deduplication invariant: a scan must never create a second active
// notification for the same (shipment, rule) pair.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ActiveExists(ctx context.Context, shipmentID int64, ruleID RuleID) (bool, error)
	ListActive(ctx context.Context) ([]*Notification, error)
	ListActiveByShipment(ctx context.Context, shipmentID int64) ([]*Notification, error)
}
