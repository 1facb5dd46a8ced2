package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (wrapped or
// joined with the driver error) so services can translate them into domain
// errors without knowing the driver.
var (
	// ErrUnavailable: the backing store could not be reached or timed out.
	ErrUnavailable = errors.New("unavailable")
)
