package shipment

import "time"

// MinOverrideReasonLen is the minimum length of a manual override reason.
const MinOverrideReasonLen = 10

// Override is a manually pinned status. While present it fully masks the
// derived status shown to callers; the derived status keeps being computed
// and stored underneath so clearing the override is instantaneous.
type Override struct {
	ShipmentID int64
	Status     Status
	Reason     string
	SetBy      string
	SetAt      time.Time
}

// StatusView is the resolved read side of the derived/override duality: one
// authoritative status plus enough metadata to tell where it came from.
type StatusView struct {
	ShipmentID   int64
	SerialNumber string
	Status       Status
	Reason       string

	Overridden   bool
	OverriddenBy string
	OverriddenAt *time.Time

	DerivedStatus Status
	DerivedReason string
	CalculatedAt  time.Time
}

// Resolve builds the externally visible status from the two internal sources
// of truth. The override, when present, wins; the derived state is always
// retained as metadata.
func Resolve(serialNumber string, id int64, derived DerivedState, ov *Override) *StatusView {
	view := &StatusView{
		ShipmentID:    id,
		SerialNumber:  serialNumber,
		Status:        derived.Status,
		Reason:        derived.Reason,
		DerivedStatus: derived.Status,
		DerivedReason: derived.Reason,
		CalculatedAt:  derived.CalculatedAt,
	}
	if ov != nil {
		setAt := ov.SetAt
		view.Status = ov.Status
		view.Reason = ov.Reason
		view.Overridden = true
		view.OverriddenBy = ov.SetBy
		view.OverriddenAt = &setAt
	}
	return view
}
