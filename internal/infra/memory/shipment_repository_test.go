package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplychain_backoffice/internal/domain/shipment"
)

func TestShipmentRepository_OverrideLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewShipmentRepository()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001"})

	if _, err := repo.GetOverride(ctx, 1); !errors.Is(err, shipment.ErrOverrideNotFound) {
		t.Fatalf("expected ErrOverrideNotFound, got %v", err)
	}

	ov := &shipment.Override{ShipmentID: 1, Status: shipment.StatusArrived, Reason: "confirmed by agent call", SetBy: "ops", SetAt: time.Now()}
	if err := repo.SetOverride(ctx, ov); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}

	// Re-overriding replaces, it does not stack.
	ov2 := &shipment.Override{ShipmentID: 1, Status: shipment.StatusDelivered, Reason: "POD received from carrier", SetBy: "ops", SetAt: time.Now()}
	if err := repo.SetOverride(ctx, ov2); err != nil {
		t.Fatalf("second SetOverride failed: %v", err)
	}
	got, err := repo.GetOverride(ctx, 1)
	if err != nil {
		t.Fatalf("GetOverride failed: %v", err)
	}
	if got.Status != shipment.StatusDelivered {
		t.Errorf("override status = %s, want delivered", got.Status)
	}

	if err := repo.DeleteOverride(ctx, 1); err != nil {
		t.Fatalf("DeleteOverride failed: %v", err)
	}
	if err := repo.DeleteOverride(ctx, 1); !errors.Is(err, shipment.ErrOverrideNotFound) {
		t.Errorf("deleting twice must report ErrOverrideNotFound, got %v", err)
	}
}

func TestShipmentRepository_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewShipmentRepository()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001"})

	snap, err := repo.GetSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	snap.SerialNumber = "mutated"

	again, _ := repo.GetSnapshot(ctx, 1)
	if again.SerialNumber != "SN-001" {
		t.Error("GetSnapshot must return a copy, not shared state")
	}
}

func TestShipmentRepository_UnknownShipment(t *testing.T) {
	ctx := context.Background()
	repo := NewShipmentRepository()

	if _, err := repo.GetSnapshot(ctx, 9); !errors.Is(err, shipment.ErrShipmentNotFound) {
		t.Errorf("expected ErrShipmentNotFound, got %v", err)
	}
	if err := repo.UpdateDerivedState(ctx, 9, shipment.DerivedState{}); !errors.Is(err, shipment.ErrShipmentNotFound) {
		t.Errorf("expected ErrShipmentNotFound on update, got %v", err)
	}
}
