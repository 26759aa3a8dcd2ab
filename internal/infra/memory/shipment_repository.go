// Package memory provides in-memory repository implementations used by tests
// and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"supplychain_backoffice/internal/domain/shipment"
)

// ShipmentRepository is an in-memory shipment.Repository. A single mutex
// serializes all mutations, which satisfies the single-writer-per-shipment
// requirement trivially.
type ShipmentRepository struct {
	mu        sync.RWMutex
	snapshots map[int64]shipment.Snapshot
	states    map[int64]shipment.DerivedState
	overrides map[int64]shipment.Override
}

func NewShipmentRepository() *ShipmentRepository {
	return &ShipmentRepository{
		snapshots: make(map[int64]shipment.Snapshot),
		states:    make(map[int64]shipment.DerivedState),
		overrides: make(map[int64]shipment.Override),
	}
}

// AddSnapshot registers (or replaces) a shipment snapshot.
func (r *ShipmentRepository) AddSnapshot(snap shipment.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snap.ID] = snap
}

func (r *ShipmentRepository) GetSnapshot(_ context.Context, id int64) (*shipment.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[id]
	if !ok {
		return nil, shipment.ErrShipmentNotFound
	}
	copied := snap
	return &copied, nil
}

func (r *ShipmentRepository) ListActiveIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.snapshots))
	for id := range r.snapshots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *ShipmentRepository) UpdateDerivedState(_ context.Context, id int64, state shipment.DerivedState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[id]; !ok {
		return shipment.ErrShipmentNotFound
	}
	r.states[id] = state
	return nil
}

func (r *ShipmentRepository) GetDerivedState(_ context.Context, id int64) (shipment.DerivedState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.snapshots[id]; !ok {
		return shipment.DerivedState{}, shipment.ErrShipmentNotFound
	}
	return r.states[id], nil
}

func (r *ShipmentRepository) SetOverride(_ context.Context, ov *shipment.Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[ov.ShipmentID]; !ok {
		return shipment.ErrShipmentNotFound
	}
	r.overrides[ov.ShipmentID] = *ov
	return nil
}

func (r *ShipmentRepository) GetOverride(_ context.Context, shipmentID int64) (*shipment.Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ov, ok := r.overrides[shipmentID]
	if !ok {
		return nil, shipment.ErrOverrideNotFound
	}
	copied := ov
	return &copied, nil
}

func (r *ShipmentRepository) DeleteOverride(_ context.Context, shipmentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.overrides[shipmentID]; !ok {
		return shipment.ErrOverrideNotFound
	}
	delete(r.overrides, shipmentID)
	return nil
}
