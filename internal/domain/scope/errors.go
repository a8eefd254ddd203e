package scope

import "errors"

// Sentinel kinds for scope lookups.
var (
	ErrUnknownScope = errors.New("unknown percentile scope")
)
