package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"supplychain_backoffice/internal/domain/shipment"
	"supplychain_backoffice/internal/infra/memory"

	"github.com/sirupsen/logrus"
)

var today = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newStatusFixture() (*StatusService, *memory.ShipmentRepository) {
	repo := memory.NewShipmentRepository()
	svc := NewStatusService(repo, testLogger()).WithClock(func() time.Time { return today })
	return svc, repo
}

func TestStatusService_Recompute(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001", AgreedShipDate: day(-3)})

	state, err := svc.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if state.Status != shipment.StatusDelayed {
		t.Errorf("status = %s, want delayed", state.Status)
	}
	if !state.CalculatedAt.Equal(today) {
		t.Errorf("CalculatedAt = %v, want %v", state.CalculatedAt, today)
	}

	stored, err := repo.GetDerivedState(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetDerivedState failed: %v", err)
	}
	if stored.Status != shipment.StatusDelayed {
		t.Errorf("persisted status = %s, want delayed", stored.Status)
	}
}

func TestStatusService_Recompute_UnknownShipment(t *testing.T) {
	svc, _ := newStatusFixture()

	_, err := svc.Recompute(context.Background(), 99)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStatusService_Status_ComputesOnFirstRead(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001", BookingReference: "MAEU123456", ETA: day(20)})

	view, err := svc.Status(context.Background(), 1)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if view.Status != shipment.StatusSailed {
		t.Errorf("status = %s, want sailed", view.Status)
	}
	if view.Overridden {
		t.Error("fresh shipment must not report an override")
	}
}

func TestStatusService_OverrideValidation(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001"})

	tests := []struct {
		name    string
		status  shipment.Status
		reason  string
		actor   string
		wantErr bool
	}{
		{name: "nine characters fails", status: shipment.StatusArrived, reason: "123456789", actor: "ops", wantErr: true},
		{name: "exactly ten characters passes", status: shipment.StatusArrived, reason: "1234567890", actor: "ops", wantErr: false},
		{name: "padding does not count", status: shipment.StatusArrived, reason: "  12345678  ", actor: "ops", wantErr: true},
		{name: "unknown status fails", status: shipment.Status("lost"), reason: "a perfectly long reason", actor: "ops", wantErr: true},
		{name: "missing actor fails", status: shipment.StatusArrived, reason: "a perfectly long reason", actor: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetOverride(context.Background(), 1, tt.status, tt.reason, tt.actor)
			if tt.wantErr {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetOverride failed: %v", err)
			}
		})
	}
}

func TestStatusService_OverrideMasksDerivedUntilCleared(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001", AgreedShipDate: day(-3)})

	view, err := svc.SetOverride(context.Background(), 1, shipment.StatusSailed, "carrier confirmed by phone", "ops@office")
	if err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}
	if view.Status != shipment.StatusSailed || !view.Overridden {
		t.Fatalf("override not applied: %+v", view)
	}
	if view.OverriddenBy != "ops@office" {
		t.Errorf("OverriddenBy = %q, want ops@office", view.OverriddenBy)
	}
	if view.DerivedStatus != shipment.StatusDelayed {
		t.Errorf("derived metadata = %s, want delayed", view.DerivedStatus)
	}

	// The underlying snapshot changes; repeated reads keep returning the
	// override regardless.
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001", ReceiptConfirmed: true})
	for i := 0; i < 2; i++ {
		view, err = svc.Status(context.Background(), 1)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if view.Status != shipment.StatusSailed || !view.Overridden {
			t.Fatalf("read %d: override must mask derived status, got %+v", i, view)
		}
	}

	view, err = svc.ClearOverride(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClearOverride failed: %v", err)
	}
	if view.Overridden {
		t.Error("override must be gone after clearing")
	}
	if view.Status != shipment.StatusReceived {
		t.Errorf("status after clear = %s, want received (recomputed from new snapshot)", view.Status)
	}
}

func TestStatusService_ClearOverride_NothingToClear(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001"})

	_, err := svc.ClearOverride(context.Background(), 1)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for missing override, got %v", err)
	}
}

func TestStatusService_RecomputeAll(t *testing.T) {
	svc, repo := newStatusFixture()
	repo.AddSnapshot(shipment.Snapshot{ID: 1, SerialNumber: "SN-001", AgreedShipDate: day(-1)})
	repo.AddSnapshot(shipment.Snapshot{ID: 2, SerialNumber: "SN-002", BookingReference: "MAEU123456", ETA: day(5)})

	count, err := svc.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAll failed: %v", err)
	}
	if count != 2 {
		t.Errorf("recomputed = %d, want 2", count)
	}

	state, _ := repo.GetDerivedState(context.Background(), 2)
	if state.Status != shipment.StatusSailed {
		t.Errorf("shipment 2 status = %s, want sailed", state.Status)
	}
}
