package percentile

import "errors"

// Sentinel kinds for percentile computation.
var (
	ErrUnknownColumn = errors.New("unknown grouping column")
	ErrDuplicateKey  = errors.New("duplicate identity key")
)
