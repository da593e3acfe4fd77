package ability

import "errors"

// Activation errors. They are logged by the activation flow, never returned
// to the caller of TryActivateAbility.
var (
	ErrMissingConfiguration = errors.New("ability has no static configuration")
	ErrMissingComponent     = errors.New("required component is missing")
	ErrInvalidMontage       = errors.New("montage cannot be played")
	ErrAuthorityViolation   = errors.New("action requires authority")
	ErrRangeViolation       = errors.New("target out of range")
)
