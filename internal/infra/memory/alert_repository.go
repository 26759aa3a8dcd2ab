package memory

import (
	"context"
	"sort"
	"sync"

	"supplychain_backoffice/internal/domain/alert"
)

type pairKey struct {
	shipmentID int64
	ruleID     alert.RuleID
}

// AlertRepository is an in-memory alert.Repository with the same active-pair
// uniqueness guarantee the postgres index provides.
type AlertRepository struct {
	mu            sync.RWMutex
	notifications []*alert.Notification
	activePairs   map[pairKey]bool
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{activePairs: make(map[pairKey]bool)}
}

func (r *AlertRepository) Create(_ context.Context, n *alert.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{shipmentID: n.ShipmentID, ruleID: n.RuleID}
	if r.activePairs[key] {
		return alert.ErrDuplicateActive
	}
	copied := *n
	r.notifications = append(r.notifications, &copied)
	r.activePairs[key] = true
	return nil
}

func (r *AlertRepository) ActiveExists(_ context.Context, shipmentID int64, ruleID alert.RuleID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activePairs[pairKey{shipmentID: shipmentID, ruleID: ruleID}], nil
}

func (r *AlertRepository) ListActive(_ context.Context) ([]*alert.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*alert.Notification) bool { return true }), nil
}

func (r *AlertRepository) ListActiveByShipment(_ context.Context, shipmentID int64) ([]*alert.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(n *alert.Notification) bool { return n.ShipmentID == shipmentID }), nil
}

// Dismiss marks a notification dismissed, freeing its (shipment, rule) pair
// for future scans. Tests use it to model the external dismissal action.
func (r *AlertRepository) Dismiss(shipmentID int64, ruleID alert.RuleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ShipmentID == shipmentID && n.RuleID == ruleID && !n.Dismissed {
			n.Dismissed = true
		}
	}
	delete(r.activePairs, pairKey{shipmentID: shipmentID, ruleID: ruleID})
}

func (r *AlertRepository) collect(keep func(*alert.Notification) bool) []*alert.Notification {
	out := make([]*alert.Notification, 0)
	for _, n := range r.notifications {
		if !n.Dismissed && keep(n) {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
