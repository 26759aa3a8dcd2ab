package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"supplychain_backoffice/internal/domain/alert"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresAlertRepository persists deadline notifications. The
// notifications table carries a partial unique index on
// (shipment_id, rule_id) WHERE NOT dismissed, which enforces the
// one-active-notification-per-pair invariant even under concurrent scans.
type PostgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

func (r *PostgresAlertRepository) Create(ctx context.Context, n *alert.Notification) error {
	query := `INSERT INTO notifications (id, shipment_id, rule_id, severity, message, created_at, dismissed)
               VALUES ($1, $2, $3, $4, $5, $6, FALSE)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.ShipmentID, n.RuleID, n.Severity, n.Message, n.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "notifications_active_pair_unique") {
			return alert.ErrDuplicateActive
		}
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *PostgresAlertRepository) ActiveExists(ctx context.Context, shipmentID int64, ruleID alert.RuleID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM notifications
                              WHERE shipment_id = $1 AND rule_id = $2 AND NOT dismissed)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, shipmentID, ruleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking active notification: %w", err)
	}
	return exists, nil
}

const listActiveQuery = `SELECT id, shipment_id, rule_id, severity, message, created_at, dismissed
                           FROM notifications WHERE NOT dismissed`

func (r *PostgresAlertRepository) ListActive(ctx context.Context) ([]*alert.Notification, error) {
	rows, err := r.db.QueryContext(ctx, listActiveQuery+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing active notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *PostgresAlertRepository) ListActiveByShipment(ctx context.Context, shipmentID int64) ([]*alert.Notification, error) {
	rows, err := r.db.QueryContext(ctx, listActiveQuery+` AND shipment_id = $1 ORDER BY created_at DESC, id`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing active notifications for shipment: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func scanNotifications(rows *sql.Rows) ([]*alert.Notification, error) {
	notifications := make([]*alert.Notification, 0)
	for rows.Next() {
		n := &alert.Notification{}
		if err := rows.Scan(&n.ID, &n.ShipmentID, &n.RuleID, &n.Severity, &n.Message, &n.CreatedAt, &n.Dismissed); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}
