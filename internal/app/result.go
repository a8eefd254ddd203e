package service

import (
	"time"

	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
)

// RoleSummary reports how one role fared in a run.
type RoleSummary struct {
	RoleID      string   `json:"role_id"`
	Eligible    int      `json:"eligible"`
	Scored      int      `json:"scored"`
	Skipped     []string `json:"skipped_features,omitempty"`
	Degraded    bool     `json:"degraded"`
	Comparables int      `json:"comparables"`
	Shortlist   int      `json:"shortlist"`
	Error       string   `json:"error,omitempty"`
}

// RunInfo describes a finished run without its tables.
type RunInfo struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	ScoringScope string        `json:"scoring_scope"`
	InputRows    int           `json:"input_rows"`
	Duplicates   int           `json:"duplicates"`
	Roles        []RoleSummary `json:"roles"`
}

// Result is everything one run produced.
type Result struct {
	RunInfo

	// Scored is the deduplicated table with scoring-scope percentiles and
	// one score column per role.
	Scored *model.Dataset
	// Percentiles is the long percentile table over every configured scope.
	Percentiles []percentile.LongRecord
	Comparables []comparables.Edge
	Shortlist   []shortlist.Entry
}
