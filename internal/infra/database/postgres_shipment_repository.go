package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"supplychain_backoffice/internal/domain/shipment"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresShipmentRepository reads shipment snapshots and writes derived
// status and override fields. Every statement is scoped to a single shipment
// row, which keeps per-shipment writes serialized at the database.
type PostgresShipmentRepository struct {
	db *sql.DB
}

func NewPostgresShipmentRepository(db *sql.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{db: db}
}

const snapshotQuery = `SELECT s.id, s.serial_number, s.direction,
               s.agreed_ship_date, s.actual_ship_date, s.eta, s.customs_clearance_date, s.delivery_date,
               s.booking_reference, s.draft_docs_approved, s.original_docs_sent,
               COALESCE(s.total_value_usd, 0), COALESCE(s.paid_value_usd, 0),
               s.quality_feedback_requested, s.receipt_confirmed, s.receipt_has_issues,
               COALESCE(s.free_time_days, 0), COALESCE(s.party_name, ''), COALESCE(s.product_name, ''),
               (SELECT COUNT(*) FROM transport_legs l WHERE l.shipment_id = s.id),
               (SELECT COUNT(*) FROM transport_legs l WHERE l.shipment_id = s.id AND l.delivered_at IS NOT NULL)
          FROM shipments s
         WHERE s.id = $1 AND s.deleted_at IS NULL`

func (r *PostgresShipmentRepository) GetSnapshot(ctx context.Context, id int64) (*shipment.Snapshot, error) {
	snap := &shipment.Snapshot{}
	var (
		agreedShipDate sql.NullTime
		actualShipDate sql.NullTime
		eta            sql.NullTime
		clearanceDate  sql.NullTime
		deliveryDate   sql.NullTime
		bookingRef     sql.NullString
		direction      string
	)
	err := r.db.QueryRowContext(ctx, snapshotQuery, id).Scan(
		&snap.ID, &snap.SerialNumber, &direction,
		&agreedShipDate, &actualShipDate, &eta, &clearanceDate, &deliveryDate,
		&bookingRef, &snap.DraftDocsApproved, &snap.OriginalDocsSent,
		&snap.TotalValueUSD, &snap.PaidValueUSD,
		&snap.QualityFeedbackRequested, &snap.ReceiptConfirmed, &snap.ReceiptHasIssues,
		&snap.FreeTimeDays, &snap.PartyName, &snap.ProductName,
		&snap.TransportLegsAssigned, &snap.TransportLegsDelivered,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shipment.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("error loading shipment snapshot: %w", err)
	}

	snap.Direction = shipment.Direction(direction)
	snap.AgreedShipDate = nullableDate(agreedShipDate)
	snap.ActualShipDate = nullableDate(actualShipDate)
	snap.ETA = nullableDate(eta)
	snap.CustomsClearanceDate = nullableDate(clearanceDate)
	snap.DeliveryDate = nullableDate(deliveryDate)
	if bookingRef.Valid {
		snap.BookingReference = bookingRef.String
	}
	return snap, nil
}

func nullableDate(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresShipmentRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM shipments WHERE is_active = TRUE AND deleted_at IS NULL ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active shipments: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning shipment id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active shipments: %w", err)
	}
	return ids, nil
}

func (r *PostgresShipmentRepository) UpdateDerivedState(ctx context.Context, id int64, state shipment.DerivedState) error {
	query := `UPDATE shipments
               SET status = $1, status_reason = $2, status_calculated_at = $3
             WHERE id = $4 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, state.Status, state.Reason, state.CalculatedAt, id)
	if err != nil {
		return fmt.Errorf("error updating derived status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking derived status update: %w", err)
	}
	if affected == 0 {
		return shipment.ErrShipmentNotFound
	}
	return nil
}

func (r *PostgresShipmentRepository) GetDerivedState(ctx context.Context, id int64) (shipment.DerivedState, error) {
	query := `SELECT COALESCE(status, ''), COALESCE(status_reason, ''), status_calculated_at
                FROM shipments WHERE id = $1 AND deleted_at IS NULL`
	var (
		state        shipment.DerivedState
		status       string
		calculatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&status, &state.Reason, &calculatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return shipment.DerivedState{}, shipment.ErrShipmentNotFound
		}
		return shipment.DerivedState{}, fmt.Errorf("error loading derived status: %w", err)
	}
	state.Status = shipment.Status(status)
	if calculatedAt.Valid {
		state.CalculatedAt = calculatedAt.Time
	}
	return state, nil
}

func (r *PostgresShipmentRepository) SetOverride(ctx context.Context, ov *shipment.Override) error {
	query := `INSERT INTO status_overrides (shipment_id, status, reason, set_by, set_at)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (shipment_id)
               DO UPDATE SET status = EXCLUDED.status, reason = EXCLUDED.reason,
                             set_by = EXCLUDED.set_by, set_at = EXCLUDED.set_at`
	if _, err := r.db.ExecContext(ctx, query, ov.ShipmentID, ov.Status, ov.Reason, ov.SetBy, ov.SetAt); err != nil {
		return fmt.Errorf("error setting status override: %w", err)
	}
	return nil
}

func (r *PostgresShipmentRepository) GetOverride(ctx context.Context, shipmentID int64) (*shipment.Override, error) {
	query := `SELECT shipment_id, status, reason, set_by, set_at
                FROM status_overrides WHERE shipment_id = $1`
	ov := &shipment.Override{}
	var status string
	err := r.db.QueryRowContext(ctx, query, shipmentID).Scan(&ov.ShipmentID, &status, &ov.Reason, &ov.SetBy, &ov.SetAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shipment.ErrOverrideNotFound
		}
		return nil, fmt.Errorf("error loading status override: %w", err)
	}
	ov.Status = shipment.Status(status)
	return ov, nil
}

func (r *PostgresShipmentRepository) DeleteOverride(ctx context.Context, shipmentID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM status_overrides WHERE shipment_id = $1`, shipmentID)
	if err != nil {
		return fmt.Errorf("error deleting status override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking override delete: %w", err)
	}
	if affected == 0 {
		return shipment.ErrOverrideNotFound
	}
	return nil
}
