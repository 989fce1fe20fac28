package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Caches, the session registry and
// the backend client return these (optionally wrapped) so callers can branch
// with errors.Is without knowing which implementation produced them:
// - ErrNotFound: entry does not exist (or has expired) in a store or registry
// - ErrUnavailable: backend temporarily unavailable (circuit open)
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
