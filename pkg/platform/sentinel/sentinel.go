package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
// - ErrNotFound: no record for the key, or it has expired
// - ErrUnavailable: the backing store could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
