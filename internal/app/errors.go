package app

import "fmt"

// ValidationError reports rejected caller input, such as an override reason
// that is too short.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing shipment or a missing override.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ComputationError is reserved for corrupt snapshot data. Derivation itself
// is total, so in practice anomalies are logged and degraded to "field
// absent" instead of being raised.
type ComputationError struct {
	Msg string
	Err error
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ComputationError) Unwrap() error { return e.Err }
