package physio

import "errors"

// Error kinds shared by the summarization and regression packages.
// Callers match them with errors.Is; concrete errors wrap them with detail.
var (
	// ErrInvalidInput marks non-positive body mass, a malformed window size
	// or an unknown policy. These fail fast.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a fit or correlation attempted on fewer
	// usable rows than it needs. Partial cohorts are normal, so callers
	// usually report it as a result variant.
	ErrInsufficientData = errors.New("insufficient data")
)
