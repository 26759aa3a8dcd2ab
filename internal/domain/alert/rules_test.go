package alert

import (
	"testing"
	"time"

	"supplychain_backoffice/internal/domain/shipment"

	"github.com/shopspring/decimal"
)

var today = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func ruleByID(t *testing.T, id RuleID) Rule {
	t.Helper()
	for _, r := range Rules() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("rule %s not found", id)
	return Rule{}
}

// evaluate derives the status first, the same way a scan does.
func evaluate(r Rule, snap *shipment.Snapshot) bool {
	status, _ := shipment.Derive(snap, today)
	return r.Applies(snap, status, today)
}

func TestShippingDeadlineRule(t *testing.T) {
	rule := ruleByID(t, RuleShippingDeadline)

	tests := []struct {
		name         string
		snap         shipment.Snapshot
		wantFire     bool
		wantSeverity Severity
	}{
		{
			name:     "six days out does not fire",
			snap:     shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(6)},
			wantFire: false,
		},
		{
			name:         "five days out fires as warning",
			snap:         shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(5)},
			wantFire:     true,
			wantSeverity: SeverityWarning,
		},
		{
			name:         "two days out is still warning",
			snap:         shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(2)},
			wantFire:     true,
			wantSeverity: SeverityWarning,
		},
		{
			name:         "one day out escalates to critical",
			snap:         shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(1)},
			wantFire:     true,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "overdue stays critical",
			snap:         shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(-4)},
			wantFire:     true,
			wantSeverity: SeverityCritical,
		},
		{
			name:     "booked shipment never fires",
			snap:     shipment.Snapshot{Direction: shipment.DirectionOutgoing, AgreedShipDate: day(1), BookingReference: "MAEU123456"},
			wantFire: false,
		},
		{
			name:     "incoming direction never fires",
			snap:     shipment.Snapshot{Direction: shipment.DirectionIncoming, AgreedShipDate: day(1)},
			wantFire: false,
		},
		{
			name:     "no agreed date never fires",
			snap:     shipment.Snapshot{Direction: shipment.DirectionOutgoing},
			wantFire: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := evaluate(rule, &tt.snap)
			if fired != tt.wantFire {
				t.Fatalf("Applies() = %v, want %v", fired, tt.wantFire)
			}
			if !fired {
				return
			}
			if sev := rule.Severity(&tt.snap, today); sev != tt.wantSeverity {
				t.Errorf("Severity() = %s, want %s", sev, tt.wantSeverity)
			}
			if rule.Message(&tt.snap, today) == "" {
				t.Error("expected a rendered message")
			}
		})
	}
}

func TestBookingConfirmedRule(t *testing.T) {
	rule := ruleByID(t, RuleBookingConfirmed)

	sailed := shipment.Snapshot{Direction: shipment.DirectionOutgoing, BookingReference: "MAEU123456", ETA: day(20)}
	if !evaluate(rule, &sailed) {
		t.Error("sailed shipment with ETA must fire booking_confirmed")
	}
	if sev := rule.Severity(&sailed, today); sev != SeverityInfo {
		t.Errorf("Severity() = %s, want info", sev)
	}

	unbooked := shipment.Snapshot{Direction: shipment.DirectionOutgoing, ETA: day(20)}
	if evaluate(rule, &unbooked) {
		t.Error("unbooked shipment must not fire booking_confirmed")
	}
}

func TestGoodsLoadedRule(t *testing.T) {
	rule := ruleByID(t, RuleGoodsLoaded)

	loaded := shipment.Snapshot{
		Direction:             shipment.DirectionOutgoing,
		ETA:                   day(-5),
		CustomsClearanceDate:  day(-2),
		TransportLegsAssigned: 1,
	}
	if !evaluate(rule, &loaded) {
		t.Error("loaded shipment must fire goods_loaded")
	}
	if sev := rule.Severity(&loaded, today); sev != SeverityWarning {
		t.Errorf("Severity() = %s, want warning", sev)
	}
}

func TestBalanceDueRule(t *testing.T) {
	rule := ruleByID(t, RuleBalanceDue)

	tests := []struct {
		name     string
		snap     shipment.Snapshot
		wantFire bool
	}{
		{
			name: "open balance inside the window fires",
			snap: shipment.Snapshot{
				Direction:     shipment.DirectionOutgoing,
				ETA:           day(10),
				TotalValueUSD: decimal.NewFromInt(100000),
				PaidValueUSD:  decimal.NewFromInt(30000),
			},
			wantFire: true,
		},
		{
			name: "fifteen days out is outside the window",
			snap: shipment.Snapshot{
				Direction:     shipment.DirectionOutgoing,
				ETA:           day(15),
				TotalValueUSD: decimal.NewFromInt(100000),
			},
			wantFire: false,
		},
		{
			name: "settled balance never fires",
			snap: shipment.Snapshot{
				Direction:     shipment.DirectionOutgoing,
				ETA:           day(10),
				TotalValueUSD: decimal.NewFromInt(100000),
				PaidValueUSD:  decimal.NewFromInt(100000),
			},
			wantFire: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluate(rule, &tt.snap); got != tt.wantFire {
				t.Errorf("Applies() = %v, want %v", got, tt.wantFire)
			}
		})
	}
}

func TestArrivalFollowUpRule(t *testing.T) {
	rule := ruleByID(t, RuleArrivalFollowUp)

	arrived := shipment.Snapshot{Direction: shipment.DirectionOutgoing, BookingReference: "MAEU123456", ETA: day(-2)}
	if !evaluate(rule, &arrived) {
		t.Error("shipment two days past ETA must fire arrival_follow_up")
	}

	justArrived := shipment.Snapshot{Direction: shipment.DirectionOutgoing, BookingReference: "MAEU123456", ETA: day(-1)}
	if evaluate(rule, &justArrived) {
		t.Error("one day past ETA must not fire yet")
	}

	received := shipment.Snapshot{Direction: shipment.DirectionOutgoing, ETA: day(-5), ReceiptConfirmed: true}
	if evaluate(rule, &received) {
		t.Error("received shipment must not fire arrival_follow_up")
	}
}

func TestQualityFeedbackRule(t *testing.T) {
	rule := ruleByID(t, RuleQualityFeedback)

	due := shipment.Snapshot{Direction: shipment.DirectionOutgoing, ETA: day(-10)}
	if !evaluate(rule, &due) {
		t.Error("ten days past ETA without feedback request must fire")
	}

	requested := shipment.Snapshot{Direction: shipment.DirectionOutgoing, ETA: day(-10), QualityFeedbackRequested: true}
	if evaluate(rule, &requested) {
		t.Error("already-requested feedback must not fire")
	}

	early := shipment.Snapshot{Direction: shipment.DirectionOutgoing, ETA: day(-9)}
	if evaluate(rule, &early) {
		t.Error("nine days past ETA must not fire yet")
	}
}

func TestSendOriginalDocsRule(t *testing.T) {
	rule := ruleByID(t, RuleSendOriginalDocs)

	// Fully paid, drafts approved, originals still at hand.
	snap := shipment.Snapshot{
		Direction:         shipment.DirectionOutgoing,
		TotalValueUSD:     decimal.NewFromInt(100000),
		PaidValueUSD:      decimal.NewFromInt(100000),
		DraftDocsApproved: true,
	}
	if !evaluate(rule, &snap) {
		t.Error("fully paid shipment with approved drafts must fire send_original_docs")
	}
	if sev := rule.Severity(&snap, today); sev != SeverityWarning {
		t.Errorf("Severity() = %s, want warning", sev)
	}

	snap.OriginalDocsSent = true
	if evaluate(rule, &snap) {
		t.Error("already-sent originals must not fire")
	}

	snap.OriginalDocsSent = false
	snap.PaidValueUSD = decimal.NewFromInt(99999)
	if evaluate(rule, &snap) {
		t.Error("open balance must not fire send_original_docs")
	}
}

func TestClearanceDeadlineRule(t *testing.T) {
	rule := ruleByID(t, RuleClearanceDeadline)

	tests := []struct {
		name         string
		snap         shipment.Snapshot
		wantFire     bool
		wantSeverity Severity
	}{
		{
			name: "free time ending in two days fires as warning",
			snap: shipment.Snapshot{
				Direction:    shipment.DirectionIncoming,
				ETA:          day(-5),
				FreeTimeDays: 7, // free time ends today+2
			},
			wantFire:     true,
			wantSeverity: SeverityWarning,
		},
		{
			name: "free time exhausted escalates to critical",
			snap: shipment.Snapshot{
				Direction:    shipment.DirectionIncoming,
				ETA:          day(-8),
				FreeTimeDays: 7,
			},
			wantFire:     true,
			wantSeverity: SeverityCritical,
		},
		{
			name: "plenty of free time left does not fire",
			snap: shipment.Snapshot{
				Direction:    shipment.DirectionIncoming,
				ETA:          day(-1),
				FreeTimeDays: 14,
			},
			wantFire: false,
		},
		{
			name: "cleared shipment does not fire",
			snap: shipment.Snapshot{
				Direction:            shipment.DirectionIncoming,
				ETA:                  day(-8),
				FreeTimeDays:         7,
				CustomsClearanceDate: day(-2),
			},
			wantFire: false,
		},
		{
			name: "outgoing direction does not fire",
			snap: shipment.Snapshot{
				Direction:    shipment.DirectionOutgoing,
				ETA:          day(-8),
				FreeTimeDays: 7,
			},
			wantFire: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := evaluate(rule, &tt.snap)
			if fired != tt.wantFire {
				t.Fatalf("Applies() = %v, want %v", fired, tt.wantFire)
			}
			if fired {
				if sev := rule.Severity(&tt.snap, today); sev != tt.wantSeverity {
					t.Errorf("Severity() = %s, want %s", sev, tt.wantSeverity)
				}
			}
		})
	}
}

func TestWarehouseReceiptRule(t *testing.T) {
	rule := ruleByID(t, RuleWarehouseReceipt)

	due := shipment.Snapshot{Direction: shipment.DirectionIncoming, DeliveryDate: day(-3)}
	if !evaluate(rule, &due) {
		t.Error("delivery three days ago without receipt must fire")
	}

	confirmed := shipment.Snapshot{Direction: shipment.DirectionIncoming, DeliveryDate: day(-3), ReceiptConfirmed: true}
	if evaluate(rule, &confirmed) {
		t.Error("confirmed receipt must not fire")
	}
}

func TestRules_IndependentMatches(t *testing.T) {
	// A single snapshot can legitimately trip several watches in one pass.
	snap := shipment.Snapshot{
		Direction:         shipment.DirectionOutgoing,
		BookingReference:  "MAEU123456",
		ETA:               day(10),
		TotalValueUSD:     decimal.NewFromInt(50000),
		PaidValueUSD:      decimal.NewFromInt(50000),
		DraftDocsApproved: true,
	}
	status, _ := shipment.Derive(&snap, today)

	var fired []RuleID
	for _, r := range Rules() {
		if r.Applies(&snap, status, today) {
			fired = append(fired, r.ID)
		}
	}
	want := map[RuleID]bool{RuleBookingConfirmed: true, RuleSendOriginalDocs: true}
	if len(fired) != len(want) {
		t.Fatalf("fired rules = %v, want exactly %d independent matches", fired, len(want))
	}
	for _, id := range fired {
		if !want[id] {
			t.Errorf("unexpected rule fired: %s", id)
		}
	}
}
