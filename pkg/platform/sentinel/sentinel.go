package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and upstream clients
// return these (optionally wrapped) so services can translate them into domain
// errors without knowing which backend produced them.
//
//   - ErrNotFound: the backend has no record for the key
//   - ErrUnavailable: the backend could not be reached or answered badly
//   - ErrInvalidState: the caller passed a value the backend cannot store
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
