package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"supplychain_backoffice/internal/domain/shipment"

	"github.com/sirupsen/logrus"
)

// StatusService owns the derived-status fields and the override row of a
// shipment. It is the only writer of either.
type StatusService struct {
	shipments shipment.Repository
	log       *logrus.Logger
	now       shipment.Clock
}

func NewStatusService(repo shipment.Repository, log *logrus.Logger) *StatusService {
	return &StatusService{
		shipments: repo,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the service clock. Tests use it to pin "today".
func (s *StatusService) WithClock(clock shipment.Clock) *StatusService {
	s.now = clock
	return s
}

// Recompute derives the status for one shipment from its current snapshot
// and persists the result stamped with the computation time. The derived
// state is written even while an override is active, so clearing the
// override later is instantaneous and consistent.
func (s *StatusService) Recompute(ctx context.Context, shipmentID int64) (shipment.DerivedState, error) {
	snap, err := s.shipments.GetSnapshot(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, shipment.ErrShipmentNotFound) {
			return shipment.DerivedState{}, &NotFoundError{Msg: fmt.Sprintf("shipment %d not found", shipmentID)}
		}
		return shipment.DerivedState{}, fmt.Errorf("failed to load snapshot for shipment %d: %w", shipmentID, err)
	}

	status, reason := shipment.Derive(snap, s.now())
	state := shipment.DerivedState{
		Status:       status,
		Reason:       reason,
		CalculatedAt: s.now(),
	}
	if err := s.shipments.UpdateDerivedState(ctx, shipmentID, state); err != nil {
		return shipment.DerivedState{}, fmt.Errorf("failed to write derived status for shipment %d: %w", shipmentID, err)
	}
	return state, nil
}

// RecomputeAll re-derives the status of every active shipment. Statuses are
// date-driven, so a nightly sweep keeps them honest even without data
// changes. A failing shipment is logged and skipped, never aborts the sweep.
func (s *StatusService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.shipments.ListActiveIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active shipments: %w", err)
	}

	recomputed := 0
	for _, id := range ids {
		if _, err := s.Recompute(ctx, id); err != nil {
			s.log.WithField("shipment_id", id).WithError(err).Warn("Status sweep skipped shipment")
			continue
		}
		recomputed++
	}
	return recomputed, nil
}

// Status returns the resolved status view for a shipment: the override when
// one is active, otherwise the stored derived state. A shipment that has
// never been through derivation is computed on the spot.
func (s *StatusService) Status(ctx context.Context, shipmentID int64) (*shipment.StatusView, error) {
	snap, err := s.shipments.GetSnapshot(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, shipment.ErrShipmentNotFound) {
			return nil, &NotFoundError{Msg: fmt.Sprintf("shipment %d not found", shipmentID)}
		}
		return nil, fmt.Errorf("failed to load snapshot for shipment %d: %w", shipmentID, err)
	}

	state, err := s.shipments.GetDerivedState(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load derived state for shipment %d: %w", shipmentID, err)
	}
	if state.CalculatedAt.IsZero() {
		if state, err = s.Recompute(ctx, shipmentID); err != nil {
			return nil, err
		}
	}

	ov, err := s.shipments.GetOverride(ctx, shipmentID)
	if err != nil && !errors.Is(err, shipment.ErrOverrideNotFound) {
		return nil, fmt.Errorf("failed to load override for shipment %d: %w", shipmentID, err)
	}
	return shipment.Resolve(snap.SerialNumber, shipmentID, state, ov), nil
}

// SetOverride pins a manual status on the shipment. The reason is mandatory
// and must be at least MinOverrideReasonLen characters after trimming.
func (s *StatusService) SetOverride(ctx context.Context, shipmentID int64, status shipment.Status, reason, actor string) (*shipment.StatusView, error) {
	if !status.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown status %q", status)}
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < shipment.MinOverrideReasonLen {
		return nil, &ValidationError{Msg: fmt.Sprintf("override reason must be at least %d characters", shipment.MinOverrideReasonLen)}
	}
	if strings.TrimSpace(actor) == "" {
		return nil, &ValidationError{Msg: "override actor is required"}
	}

	// Refresh the derived state first so the masked value stored underneath
	// the override is current.
	if _, err := s.Recompute(ctx, shipmentID); err != nil {
		return nil, err
	}

	ov := &shipment.Override{
		ShipmentID: shipmentID,
		Status:     status,
		Reason:     reason,
		SetBy:      actor,
		SetAt:      s.now(),
	}
	if err := s.shipments.SetOverride(ctx, ov); err != nil {
		return nil, fmt.Errorf("failed to persist override for shipment %d: %w", shipmentID, err)
	}
	s.log.WithFields(logrus.Fields{
		"shipment_id": shipmentID,
		"status":      status,
		"set_by":      actor,
	}).Info("Manual status override set")

	return s.Status(ctx, shipmentID)
}

// ClearOverride removes the manual override and immediately re-derives the
// status, which becomes authoritative again. Clearing a shipment with no
// override is reported to the caller as not found rather than swallowed.
func (s *StatusService) ClearOverride(ctx context.Context, shipmentID int64) (*shipment.StatusView, error) {
	if _, err := s.shipments.GetOverride(ctx, shipmentID); err != nil {
		if errors.Is(err, shipment.ErrOverrideNotFound) {
			return nil, &NotFoundError{Msg: fmt.Sprintf("shipment %d has no override to clear", shipmentID)}
		}
		return nil, fmt.Errorf("failed to load override for shipment %d: %w", shipmentID, err)
	}
	if err := s.shipments.DeleteOverride(ctx, shipmentID); err != nil {
		return nil, fmt.Errorf("failed to delete override for shipment %d: %w", shipmentID, err)
	}
	if _, err := s.Recompute(ctx, shipmentID); err != nil {
		return nil, err
	}
	s.log.WithField("shipment_id", shipmentID).Info("Manual status override cleared")

	return s.Status(ctx, shipmentID)
}
