package shipment

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all Repository implementations.
var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrOverrideNotFound = errors.New("status override not found")
)

// Repository defines the persistence operations for shipment snapshots,
// derived status and overrides. The derived-status columns and the override
// row are written through separate methods so clearing an override never has
// to undo a derived-status write.
type Repository interface {
	// GetSnapshot assembles the decision projection for one shipment.
	GetSnapshot(ctx context.Context, id int64) (*Snapshot, error)
	// ListActiveIDs returns the IDs of all active, non-deleted shipments.
	ListActiveIDs(ctx context.Context) ([]int64, error)

	UpdateDerivedState(ctx context.Context, id int64, state DerivedState) error
	GetDerivedState(ctx context.Context, id int64) (DerivedState, error)

	// SetOverride creates or replaces the manual override for a shipment.
	SetOverride(ctx context.Context, ov *Override) error
	GetOverride(ctx context.Context, shipmentID int64) (*Override, error)
	DeleteOverride(ctx context.Context, shipmentID int64) error
}

// Clock yields the current time; injected so date comparisons are
// deterministic under test.
type Clock func() time.Time
