// Package service runs the recruitment analytics pipeline and serves its
// results to the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/dedupe"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scoring"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
	"github.com/rberkkaratas/recruitment-support/pkg/metrics"
)

// Store persists run results and answers read queries over them.
type Store interface {
	SaveRun(ctx context.Context, res *Result) error
	LatestRun(ctx context.Context) (RunInfo, error)
	Shortlist(ctx context.Context, runID, roleID string, limit int) ([]shortlist.Entry, error)
	Comparables(ctx context.Context, runID, roleID, anchorID string) ([]comparables.Edge, error)
	Profile(ctx context.Context, runID, ptsID, scopeName string) ([]percentile.LongRecord, error)
}

// Exporter writes a finished run somewhere, e.g. CSV files or a workbook.
type Exporter interface {
	Export(ctx context.Context, res *Result) error
}

// Service runs batches over a metric table.
type Service struct {
	roles            []roles.Role
	scorer           scoring.Scorer
	scoringScope     string
	percentileScopes []string
	comparablesTopN  int
	shortlistTopN    int
	workers          int
	risk             shortlist.RiskRules

	store     Store
	exporters []Exporter

	logger logger.Logger
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRoles sets the roles to score.
func WithRoles(rs []roles.Role) Option {
	return func(s *Service) {
		if len(rs) > 0 {
			s.roles = rs
		}
	}
}

// WithScorer replaces the role scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithScoringScope sets the percentile scope role scores are computed on.
func WithScoringScope(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.scoringScope = name
		}
	}
}

// WithPercentileScopes sets the scopes of the long percentile table.
func WithPercentileScopes(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.percentileScopes = names
		}
	}
}

// WithTopN sets the comparables and shortlist sizes.
func WithTopN(comparablesTopN, shortlistTopN int) Option {
	return func(s *Service) {
		if comparablesTopN > 0 {
			s.comparablesTopN = comparablesTopN
		}
		if shortlistTopN > 0 {
			s.shortlistTopN = shortlistTopN
		}
	}
}

// WithWorkerCount bounds how many roles are processed concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workers = count
		}
	}
}

// WithRiskRules sets the shortlist risk thresholds.
func WithRiskRules(rr shortlist.RiskRules) Option {
	return func(s *Service) {
		s.risk = rr
	}
}

// WithStore persists every run and enables the read methods.
func WithStore(st Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithExporters adds exporters run after each successful batch.
func WithExporters(ex ...Exporter) Option {
	return func(s *Service) {
		s.exporters = append(s.exporters, ex...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		roles:            roles.Defaults(),
		scorer:           scoring.NewRoleScorer(),
		scoringScope:     scope.Default,
		percentileScopes: []string{scope.Default},
		comparablesTopN:  10,
		shortlistTopN:    50,
		workers:          runtime.NumCPU(),
		risk:             shortlist.DefaultRiskRules(),
		logger:           logger.Nop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the configuration before any stage runs.
func (s *Service) Validate() error {
	if len(s.roles) == 0 {
		return ErrNoRoles
	}
	if err := scope.Validate(s.scoringScope); err != nil {
		return err
	}
	return scope.Validate(s.percentileScopes...)
}

// Run executes one batch over ds: dedupe, percentiles, scoring, long
// percentiles, then comparables and shortlist per role. A role that fails
// degrades to empty outputs; configuration errors fail before any stage.
func (s *Service) Run(ctx context.Context, ds *model.Dataset) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	res := &Result{RunInfo: RunInfo{
		RunID:        uuid.NewString(),
		StartedAt:    s.now().UTC(),
		ScoringScope: s.scoringScope,
		InputRows:    ds.Len(),
	}}
	log := s.logger.Named("run")
	log.Info(ctx, "run started", logger.String("run_id", res.RunID), logger.Int("rows", ds.Len()))

	var err error
	if err = s.stages(ctx, ds, res); err != nil {
		metrics.RecordRun("error")
		log.Error(ctx, "run failed", logger.String("run_id", res.RunID), logger.Error(err))
		return nil, err
	}
	res.FinishedAt = s.now().UTC()

	if s.store != nil {
		err = s.timed(metrics.StagePersist, func() error { return s.store.SaveRun(ctx, res) })
		if err != nil {
			metrics.RecordRun("error")
			metrics.RecordErrorByComponent("store", "save_run")
			return nil, fmt.Errorf("persist run %s: %w", res.RunID, err)
		}
	}
	for _, ex := range s.exporters {
		if err = s.timed(metrics.StageExport, func() error { return ex.Export(ctx, res) }); err != nil {
			metrics.RecordRun("error")
			metrics.RecordErrorByComponent("export", "export")
			return nil, fmt.Errorf("export run %s: %w", res.RunID, err)
		}
	}

	metrics.RecordRun("ok")
	log.Info(ctx, "run complete",
		logger.String("run_id", res.RunID),
		logger.Int("scored_rows", res.Scored.Len()),
		logger.Int("percentiles", len(res.Percentiles)),
		logger.Int("comparables", len(res.Comparables)),
		logger.Int("shortlist", len(res.Shortlist)),
		logger.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res, nil
}

func (s *Service) stages(ctx context.Context, ds *model.Dataset, res *Result) error {
	var (
		deduped *model.Dataset
		wide    *model.Dataset
		scored  *model.Dataset
		reports []scoring.Report
	)

	_ = s.timed(metrics.StageDedupe, func() error {
		var dropped []model.Key
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(ds.Len()))
		deduped, dropped = dedupe.Rows(ctx, d, ds, dedupe.ByPlayerTeamSeason)
		res.Duplicates = len(dropped)
		metrics.RecordRowsDuplicate(len(dropped))
		if len(dropped) > 0 {
			s.logger.Warn(ctx, "dropped duplicate rows",
				logger.Int("count", len(dropped)),
				logger.String("first", dropped[0].PlayerTeamSeasonID),
			)
		}
		return nil
	})

	metricCols := availableMetrics(deduped)
	if missing := len(model.Catalogue) - len(metricCols); missing > 0 {
		s.logger.Debug(ctx, "catalogue metrics absent from input", logger.Int("count", missing))
	}

	err := s.timed(metrics.StagePercentile, func() (err error) {
		wide, err = percentile.WideForScope(deduped, metricCols, s.scoringScope)
		return err
	})
	if err != nil {
		return fmt.Errorf("percentiles: %w", err)
	}

	err = s.timed(metrics.StageScoring, func() (err error) {
		scored, reports, err = s.scorer.Score(ctx, wide, s.roles)
		return err
	})
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	res.Scored = scored
	s.logReports(ctx, reports)

	err = s.timed(metrics.StageLong, func() (err error) {
		res.Percentiles, err = percentile.LongForScopes(deduped, metricCols, s.percentileScopes)
		return err
	})
	if err != nil {
		return fmt.Errorf("long percentiles: %w", err)
	}

	outs := s.fanOut(ctx, scored)
	for i, r := range s.roles {
		sum := RoleSummary{RoleID: r.ID}
		if i < len(reports) {
			rep := reports[i]
			sum.Eligible, sum.Scored, sum.Skipped, sum.Degraded = rep.Eligible, rep.Scored, rep.Skipped, rep.Degraded
		}
		o := outs[i]
		if o.err != nil {
			sum.Error = o.err.Error()
		}
		sum.Comparables = len(o.edges)
		sum.Shortlist = len(o.entries)
		res.Comparables = append(res.Comparables, o.edges...)
		res.Shortlist = append(res.Shortlist, o.entries...)
		res.Roles = append(res.Roles, sum)
	}
	return ctx.Err()
}

type roleOutput struct {
	edges   []comparables.Edge
	entries []shortlist.Entry
	err     error
}

// fanOut builds comparables and shortlists per role with at most s.workers
// roles in flight. Results are indexed by role position so the merge order
// does not depend on scheduling.
func (s *Service) fanOut(ctx context.Context, scored *model.Dataset) []roleOutput {
	outs := make([]roleOutput, len(s.roles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, r := range s.roles {
		i, r := i, r
		g.Go(func() error {
			edges, entries, err := s.buildRole(gctx, scored, r)
			if err != nil {
				s.logger.Warn(gctx, "role degraded to empty output",
					logger.String("role", r.ID), logger.Error(err))
				metrics.RecordErrorByComponent("role", r.ID)
				outs[i] = roleOutput{err: err}
				return nil
			}
			outs[i] = roleOutput{edges: edges, entries: entries}
			return nil
		})
	}
	_ = g.Wait()
	return outs
}

func (s *Service) buildRole(ctx context.Context, scored *model.Dataset, r roles.Role) (edges []comparables.Edge, entries []shortlist.Entry, err error) {
	defer func() {
		if p := recover(); p != nil {
			edges, entries, err = nil, nil, fmt.Errorf("role %s: %v", r.ID, p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	edges = comparables.Build(scored, comparables.Request{
		RoleID:          r.ID,
		TopN:            s.comparablesTopN,
		Features:        r.Features,
		Invert:          r.Invert,
		ComparisonScope: s.scoringScope,
		PctScope:        s.scoringScope,
	})
	_ = metrics.RecordStageDuration(metrics.StageComparables, time.Since(start).Seconds())
	metrics.RecordComparables(r.ID, len(edges))
	if len(edges) == 0 {
		s.logger.Debug(ctx, "no comparables", logger.String("role", r.ID))
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start = time.Now()
	entries = shortlist.Build(scored, shortlist.Request{
		RoleID:    r.ID,
		TopN:      s.shortlistTopN,
		Subscores: r.Subscores,
		Security:  r.Security,
		Invert:    r.Invert,
		Evidence:  r.Evidence,
		Risk:      s.risk,
	})
	_ = metrics.RecordStageDuration(metrics.StageShortlist, time.Since(start).Seconds())
	metrics.RecordShortlist(r.ID, len(entries))
	return edges, entries, nil
}

func (s *Service) logReports(ctx context.Context, reports []scoring.Report) {
	for _, rep := range reports {
		metrics.UpdateRolePool(rep.RoleID, rep.Eligible, rep.Scored)
		fields := []logger.Field{
			logger.String("role", rep.RoleID),
			logger.Int("eligible", rep.Eligible),
			logger.Int("scored", rep.Scored),
		}
		if len(rep.Skipped) > 0 {
			metrics.RecordRoleSkipped(rep.RoleID, len(rep.Skipped))
			s.logger.Debug(ctx, "weight features skipped", append(fields, logger.Strings("skipped", rep.Skipped))...)
		}
		if rep.Degraded {
			metrics.RecordRoleDegraded(rep.RoleID)
			s.logger.Warn(ctx, "role has no usable weight; all scores null", fields...)
			continue
		}
		s.logger.Info(ctx, "role scored", fields...)
	}
}

func (s *Service) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	_ = metrics.RecordStageDuration(stage, time.Since(start).Seconds())
	return err
}

// availableMetrics lists catalogue metrics carried by ds, in catalogue order.
func availableMetrics(ds *model.Dataset) []string {
	out := make([]string, 0, len(model.Catalogue))
	for _, m := range model.Catalogue {
		if ds.HasColumn(m) {
			out = append(out, m)
		}
	}
	return out
}

// Roles returns the configured roles.
func (s *Service) Roles() []roles.Role {
	return s.roles
}

// LatestRun returns the most recent persisted run.
func (s *Service) LatestRun(ctx context.Context) (RunInfo, error) {
	if s.store == nil {
		return RunInfo{}, ErrNoStore
	}
	return s.store.LatestRun(ctx)
}

// Shortlist returns the latest run's shortlist for roleID.
func (s *Service) Shortlist(ctx context.Context, roleID string, limit int) ([]shortlist.Entry, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Shortlist(ctx, run.RunID, roleID, limit)
}

// Comparables returns the latest run's neighbours of anchorID for roleID.
func (s *Service) Comparables(ctx context.Context, roleID, anchorID string) ([]comparables.Edge, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Comparables(ctx, run.RunID, roleID, anchorID)
}

// Profile returns the latest run's long percentile rows for one entity. An
// empty scopeName returns every persisted scope.
func (s *Service) Profile(ctx context.Context, ptsID, scopeName string) ([]percentile.LongRecord, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Profile(ctx, run.RunID, ptsID, scopeName)
}
