package order

import (
	"errors"
	"fmt"
)

// Error taxonomy for the ordering core. Callers classify failures with
// errors.Is against these base errors; the HTTP handler maps them to status
// codes. Every rejection happens before any state is persisted, so none of
// them leaves a partial mutation behind.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown order, table or menu item reference.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a lost write race or an edit against a terminal
	// order. The caller must re-fetch and resubmit.
	ErrConflict = errors.New("conflict")

	// ErrConfiguration marks a table or order without a resolvable owning
	// restaurant. Surfaced distinctly so the operator can run a data
	// repair pass instead of silently dropping the order.
	ErrConfiguration = errors.New("configuration error")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func configurationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
