// Package repository persists run results in SQLite and answers the read
// queries the HTTP API serves.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
)

// Fixed-width UTC timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements service.Store using modernc.org/sqlite.
type SQLiteStore struct {
	db           *sql.DB
	logger       logger.Logger
	maxOpenConns int
}

var _ service.Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(dsn string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{logger: logger.Nop(), maxOpenConns: 1}
	for _, opt := range opts {
		opt(s)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	s.db = db
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	scoring_scope TEXT NOT NULL,
	input_rows    INTEGER NOT NULL,
	duplicates    INTEGER NOT NULL,
	roles         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shortlist (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	role_id         TEXT NOT NULL,
	rank            INTEGER NOT NULL,
	pts_id          TEXT NOT NULL,
	player_id       TEXT NOT NULL,
	team_id         TEXT NOT NULL,
	league          TEXT NOT NULL,
	season          TEXT NOT NULL,
	position_bucket TEXT NOT NULL,
	minutes         REAL,
	total_score     REAL NOT NULL,
	subscores       TEXT NOT NULL,
	risk_flags      TEXT NOT NULL,
	risk_count      INTEGER NOT NULL,
	evidence        TEXT NOT NULL,
	PRIMARY KEY (run_id, role_id, rank)
);

CREATE TABLE IF NOT EXISTS comparables (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	role_id          TEXT NOT NULL,
	anchor_pts_id    TEXT NOT NULL,
	rank             INTEGER NOT NULL,
	comparison_scope TEXT NOT NULL,
	pct_scope        TEXT NOT NULL,
	anchor           TEXT NOT NULL,
	comp             TEXT NOT NULL,
	different_league INTEGER NOT NULL,
	different_season INTEGER NOT NULL,
	distance         REAL NOT NULL,
	reasons          TEXT NOT NULL,
	PRIMARY KEY (run_id, role_id, anchor_pts_id, rank)
);

CREATE TABLE IF NOT EXISTS percentiles (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	pct_scope       TEXT NOT NULL,
	pts_id          TEXT NOT NULL,
	kpi_name        TEXT NOT NULL,
	player_id       TEXT NOT NULL,
	team_id         TEXT NOT NULL,
	league          TEXT NOT NULL,
	season          TEXT NOT NULL,
	position_bucket TEXT NOT NULL,
	minutes         REAL,
	kpi_value       REAL,
	kpi_pct         REAL,
	PRIMARY KEY (run_id, pct_scope, pts_id, kpi_name)
);

CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes a run and all of its tables in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, res *service.Result) (err error) {
	if res == nil {
		return eris.Wrap(ErrNilResult, "sqlite: save run")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertRun(ctx, tx, res.RunInfo); err != nil {
		return err
	}
	if err = insertShortlist(ctx, tx, res.RunID, res.Shortlist); err != nil {
		return err
	}
	if err = insertComparables(ctx, tx, res.RunID, res.Comparables); err != nil {
		return err
	}
	if err = insertPercentiles(ctx, tx, res.RunID, res.Percentiles); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return eris.Wrapf(err, "sqlite: commit run %s", res.RunID)
	}
	s.logger.Debug(ctx, "run saved",
		logger.String("run_id", res.RunID),
		logger.Int("shortlist", len(res.Shortlist)),
		logger.Int("comparables", len(res.Comparables)),
		logger.Int("percentiles", len(res.Percentiles)),
	)
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run service.RunInfo) error {
	rolesJSON, err := json.Marshal(run.Roles)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal roles")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, scoring_scope, input_rows, duplicates, roles)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.ScoringScope,
		run.InputRows, run.Duplicates, string(rolesJSON),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.RunID)
}

func insertShortlist(ctx context.Context, tx *sql.Tx, runID string, entries []shortlist.Entry) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shortlist (run_id, role_id, rank, pts_id, player_id, team_id, league, season,
		 position_bucket, minutes, total_score, subscores, risk_flags, risk_count, evidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare shortlist")
	}
	defer stmt.Close()
	for _, e := range entries {
		subJSON, err := json.Marshal(e.Subscores)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal subscores")
		}
		evJSON, err := json.Marshal(e.Evidence)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal evidence")
		}
		if _, err := stmt.ExecContext(ctx,
			runID, e.RoleID, e.Rank, e.PlayerTeamSeasonID, e.PlayerID, e.TeamID, e.League, e.Season,
			e.PositionBucket, nullFloat(e.Minutes), e.TotalScore, string(subJSON), e.RiskFlags, e.RiskCount, string(evJSON),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert shortlist %s/%d", e.RoleID, e.Rank)
		}
	}
	return nil
}

func insertComparables(ctx context.Context, tx *sql.Tx, runID string, edges []comparables.Edge) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comparables (run_id, role_id, anchor_pts_id, rank, comparison_scope, pct_scope,
		 anchor, comp, different_league, different_season, distance, reasons)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare comparables")
	}
	defer stmt.Close()
	for _, e := range edges {
		anchorJSON, err := json.Marshal(e.Anchor)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal anchor")
		}
		compJSON, err := json.Marshal(e.Comp)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal comp")
		}
		reasonsJSON, err := json.Marshal(e.Reasons)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal reasons")
		}
		if _, err := stmt.ExecContext(ctx,
			runID, e.RoleID, e.Anchor.PlayerTeamSeasonID, e.Rank, e.ComparisonScope, e.PctScope,
			string(anchorJSON), string(compJSON), e.DifferentLeague, e.DifferentSeason, e.Distance, string(reasonsJSON),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert comparable %s/%s/%d", e.RoleID, e.Anchor.PlayerTeamSeasonID, e.Rank)
		}
	}
	return nil
}

func insertPercentiles(ctx context.Context, tx *sql.Tx, runID string, recs []percentile.LongRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO percentiles (run_id, pct_scope, pts_id, kpi_name, player_id, team_id, league, season,
		 position_bucket, minutes, kpi_value, kpi_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare percentiles")
	}
	defer stmt.Close()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			runID, r.Scope, r.PlayerTeamSeasonID, r.KPIName, r.PlayerID, r.TeamID, r.League, r.Season,
			r.PositionBucket, nullFloat(r.Minutes), nullFloat(r.KPIValue), nullFloat(r.KPIPct),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert percentile %s/%s", r.PlayerTeamSeasonID, r.KPIName)
		}
	}
	return nil
}

// LatestRun returns the most recently finished run.
func (s *SQLiteStore) LatestRun(ctx context.Context) (service.RunInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, scoring_scope, input_rows, duplicates, roles
		 FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT 1`)
	var (
		run               service.RunInfo
		started, finished string
		rolesJSON         string
	)
	err := row.Scan(&run.RunID, &started, &finished, &run.ScoringScope, &run.InputRows, &run.Duplicates, &rolesJSON)
	if err == sql.ErrNoRows {
		return service.RunInfo{}, eris.Wrap(service.ErrNotFound, "sqlite: no runs stored")
	}
	if err != nil {
		return service.RunInfo{}, eris.Wrap(err, "sqlite: scan run")
	}
	if run.StartedAt, err = parseTime(started); err != nil {
		return service.RunInfo{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return service.RunInfo{}, err
	}
	if err := json.Unmarshal([]byte(rolesJSON), &run.Roles); err != nil {
		return service.RunInfo{}, eris.Wrap(err, "sqlite: unmarshal roles")
	}
	return run, nil
}

// Shortlist returns up to limit entries for roleID in rank order.
func (s *SQLiteStore) Shortlist(ctx context.Context, runID, roleID string, limit int) ([]shortlist.Entry, error) {
	if limit <= 0 {
		return nil, eris.Wrapf(ErrInvalidLimit, "sqlite: shortlist limit %d", limit)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, pts_id, player_id, team_id, league, season, position_bucket, minutes,
		 total_score, subscores, risk_flags, risk_count, evidence
		 FROM shortlist WHERE run_id = ? AND role_id = ? ORDER BY rank LIMIT ?`,
		runID, roleID, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query shortlist")
	}
	defer rows.Close()

	out := []shortlist.Entry{}
	for rows.Next() {
		e := shortlist.Entry{RoleID: roleID}
		var (
			minutes         sql.NullFloat64
			subJSON, evJSON string
		)
		if err := rows.Scan(&e.Rank, &e.PlayerTeamSeasonID, &e.PlayerID, &e.TeamID, &e.League, &e.Season,
			&e.PositionBucket, &minutes, &e.TotalScore, &subJSON, &e.RiskFlags, &e.RiskCount, &evJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan shortlist")
		}
		e.Minutes = floatPtr(minutes)
		if err := json.Unmarshal([]byte(subJSON), &e.Subscores); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal subscores")
		}
		if err := json.Unmarshal([]byte(evJSON), &e.Evidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal evidence")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: shortlist iterate")
}

// Comparables returns the edges of anchorID for roleID in rank order.
func (s *SQLiteStore) Comparables(ctx context.Context, runID, roleID, anchorID string) ([]comparables.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, comparison_scope, pct_scope, anchor, comp, different_league, different_season, distance, reasons
		 FROM comparables WHERE run_id = ? AND role_id = ? AND anchor_pts_id = ? ORDER BY rank`,
		runID, roleID, anchorID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query comparables")
	}
	defer rows.Close()

	out := []comparables.Edge{}
	for rows.Next() {
		e := comparables.Edge{RoleID: roleID}
		var anchorJSON, compJSON, reasonsJSON string
		if err := rows.Scan(&e.Rank, &e.ComparisonScope, &e.PctScope, &anchorJSON, &compJSON,
			&e.DifferentLeague, &e.DifferentSeason, &e.Distance, &reasonsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan comparable")
		}
		if err := json.Unmarshal([]byte(anchorJSON), &e.Anchor); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal anchor")
		}
		if err := json.Unmarshal([]byte(compJSON), &e.Comp); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal comp")
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &e.Reasons); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal reasons")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: comparables iterate")
}

// Profile returns the long percentile rows of one entity in scopeName,
// ordered by metric name. An empty scopeName returns every scope.
func (s *SQLiteStore) Profile(ctx context.Context, runID, ptsID, scopeName string) ([]percentile.LongRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pct_scope, kpi_name, player_id, team_id, league, season, position_bucket, minutes, kpi_value, kpi_pct
		 FROM percentiles WHERE run_id = ? AND pts_id = ? AND (? = '' OR pct_scope = ?)
		 ORDER BY pct_scope, kpi_name`,
		runID, ptsID, scopeName, scopeName)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query percentiles")
	}
	defer rows.Close()

	out := []percentile.LongRecord{}
	for rows.Next() {
		r := percentile.LongRecord{Key: model.Key{PlayerTeamSeasonID: ptsID}}
		var minutes, value, pct sql.NullFloat64
		if err := rows.Scan(&r.Scope, &r.KPIName, &r.PlayerID, &r.TeamID, &r.League, &r.Season,
			&r.PositionBucket, &minutes, &value, &pct); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan percentile")
		}
		r.Minutes, r.KPIValue, r.KPIPct = floatPtr(minutes), floatPtr(value), floatPtr(pct)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: percentiles iterate")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "sqlite: parse time %q", s)
	}
	return t, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Float(v.Float64)
}
