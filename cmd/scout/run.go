package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rberkkaratas/recruitment-support/internal/adapters/export"
	"github.com/rberkkaratas/recruitment-support/internal/adapters/repository"
	"github.com/rberkkaratas/recruitment-support/internal/adapters/tabular"
	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/config"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
	"github.com/rberkkaratas/recruitment-support/pkg/metrics"
)

var (
	runInput string
	runOut   string
	runStore string
	runXLSX  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score a metric table and write the output tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cfg)
		if cfg.InputPath == "" {
			return fmt.Errorf("run: no input table; set --input or input_path")
		}
		res, err := runPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d rows, %d comparables, %d shortlist entries -> %s\n",
			res.RunID, res.Scored.Len(), len(res.Comparables), len(res.Shortlist), cfg.OutputDir)
		return nil
	},
}

func init() { //nolint:gochecknoinits // cobra command wiring
	runCmd.Flags().StringVar(&runInput, "input", "", "metric table CSV (overrides input_path)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory (overrides output_dir)")
	runCmd.Flags().StringVar(&runStore, "store", "", "SQLite result store (overrides store_path)")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "analyst workbook path (overrides xlsx_path)")
}

func applyRunFlags(c *config.Config) {
	if runInput != "" {
		c.InputPath = runInput
	}
	if runOut != "" {
		c.OutputDir = runOut
	}
	if runStore != "" {
		c.StorePath = runStore
	}
	if runXLSX != "" {
		c.XLSXPath = runXLSX
	}
}

// runPipeline reads the input table and runs one batch with every sink the
// configuration enables.
func runPipeline(ctx context.Context, c *config.Config) (*service.Result, error) {
	log := logger.Named("scout")

	rs, err := roles.LoadOrDefault(c.RolesPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := tabular.ReadFile(ctx, c.InputPath)
	if err != nil {
		metrics.RecordErrorByComponent("tabular", "read")
		return nil, err
	}
	_ = metrics.RecordStageDuration(metrics.StageIngest, time.Since(start).Seconds())
	metrics.RecordRowsIngested(ds.Len())
	log.Info(ctx, "metric table read",
		logger.String("path", c.InputPath),
		logger.Int("rows", ds.Len()),
		logger.Int("metrics", len(ds.MetricColumns())),
	)

	exporters := []service.Exporter{tabular.NewCSVExporter(c.OutputDir, tabular.WithLogger(log.Named("csv")))}
	if c.XLSXPath != "" {
		exporters = append(exporters, export.NewXLSXExporter(c.XLSXPath, export.WithLogger(log.Named("xlsx"))))
	}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithRoles(rs),
		service.WithScoringScope(c.ScoringScope),
		service.WithPercentileScopes(c.PercentileScopes),
		service.WithTopN(c.ComparablesTopN, c.ShortlistTopN),
		service.WithWorkerCount(c.Workers),
		service.WithRiskRules(c.Risk),
		service.WithExporters(exporters...),
	}
	if c.StorePath != "" {
		store, err := openStore(ctx, c.StorePath, log)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		opts = append(opts, service.WithStore(store))
	}

	return service.New(opts...).Run(ctx, ds)
}

func openStore(ctx context.Context, path string, log logger.Logger) (*repository.SQLiteStore, error) {
	store, err := repository.NewSQLite(path, repository.WithLogger(log.Named("store")))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
