package tabular

import "errors"

// Sentinel kinds for table I/O.
var (
	ErrEmptyTable      = errors.New("empty table")
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrMissingKey      = errors.New("empty player_team_season_id")
)
