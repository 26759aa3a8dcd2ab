package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"supplychain_backoffice/internal/domain/alert"
	"supplychain_backoffice/internal/domain/shipment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultScanConcurrency = 8

// CheckService runs the deadline scan: every active shipment is evaluated
// against the full rule set and a notification is created for each
// newly-true (shipment, rule) pair not already covered by an active one.
type CheckService struct {
	shipments   shipment.Repository
	alerts      alert.Repository
	notifier    alert.Notifier
	rules       []alert.Rule
	log         *logrus.Logger
	now         shipment.Clock
	concurrency int
}

// CheckResult summarizes one scan pass.
type CheckResult struct {
	Scanned int // shipments evaluated
	Created int // notifications newly created
	Skipped int // shipments skipped because of a storage failure
}

// NewCheckService builds a scan service over the default rule set. The
// notifier may be nil, in which case critical alerts are not pushed anywhere.
func NewCheckService(shipments shipment.Repository, alerts alert.Repository, notifier alert.Notifier, log *logrus.Logger) *CheckService {
	return &CheckService{
		shipments:   shipments,
		alerts:      alerts,
		notifier:    notifier,
		rules:       alert.Rules(),
		log:         log,
		now:         time.Now,
		concurrency: defaultScanConcurrency,
	}
}

// WithClock replaces the service clock. Tests use it to pin "today".
func (s *CheckService) WithClock(clock shipment.Clock) *CheckService {
	s.now = clock
	return s
}

// WithConcurrency bounds the number of shipments evaluated in parallel.
func (s *CheckService) WithConcurrency(n int) *CheckService {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// RunCheck scans all active shipments. Re-running it with no underlying data
// change creates nothing: an active notification for a (shipment, rule) pair
// suppresses re-creation until it is dismissed. A shipment whose snapshot
// load or notification write fails is logged and skipped; the rest of the
// batch always completes.
func (s *CheckService) RunCheck(ctx context.Context) (*CheckResult, error) {
	ids, err := s.shipments.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shipments: %w", err)
	}
	s.log.WithField("shipments", len(ids)).Info("Deadline scan started")

	var (
		mu     sync.Mutex
		result CheckResult
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			created, err := s.checkShipment(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.WithField("shipment_id", id).WithError(err).Warn("Deadline scan skipped shipment")
				result.Skipped++
				return nil
			}
			result.Scanned++
			result.Created += created
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"scanned": result.Scanned,
		"created": result.Created,
		"skipped": result.Skipped,
	}).Info("Deadline scan finished")
	return &result, nil
}

// checkShipment evaluates every rule for one shipment and returns how many
// notifications were created. Rule evaluation shares no mutable state, so no
// locking is needed inside a single shipment's pass.
func (s *CheckService) checkShipment(ctx context.Context, shipmentID int64) (int, error) {
	snap, err := s.shipments.GetSnapshot(ctx, shipmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load snapshot: %w", err)
	}

	today := s.now()
	status, _ := shipment.Derive(snap, today)

	created := 0
	for _, rule := range s.rules {
		if !rule.Applies(snap, status, today) {
			continue
		}
		exists, err := s.alerts.ActiveExists(ctx, shipmentID, rule.ID)
		if err != nil {
			return created, fmt.Errorf("failed to check active notification for rule %s: %w", rule.ID, err)
		}
		if exists {
			continue
		}

		n := &alert.Notification{
			ID:         uuid.New(),
			ShipmentID: shipmentID,
			RuleID:     rule.ID,
			Severity:   rule.Severity(snap, today),
			Message:    rule.Message(snap, today),
			CreatedAt:  today,
		}
		if err := s.alerts.Create(ctx, n); err != nil {
			if errors.Is(err, alert.ErrDuplicateActive) {
				// A concurrent scan got there first; the pair is covered.
				continue
			}
			return created, fmt.Errorf("failed to create notification for rule %s: %w", rule.ID, err)
		}
		created++
		s.deliver(n)
	}
	return created, nil
}

// deliver pushes critical notifications to the configured channel. Delivery
// failures are logged, never propagated.
func (s *CheckService) deliver(n *alert.Notification) {
	if s.notifier == nil || n.Severity != alert.SeverityCritical {
		return
	}
	if err := s.notifier.Notify(n); err != nil {
		s.log.WithFields(logrus.Fields{
			"shipment_id": n.ShipmentID,
			"rule_id":     n.RuleID,
		}).WithError(err).Warn("Failed to push critical notification")
	}
}
