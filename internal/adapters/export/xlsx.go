// Package export writes run results into an analyst workbook.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/rberkkaratas/recruitment-support/internal/adapters/tabular"
	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
)

// SheetRuns is the sheet holding one row per role of the run.
const SheetRuns = "run"

var runHeader = []string{ //nolint:gochecknoglobals // fixed sheet schema
	"run_id", "scoring_scope", "role_id", "eligible", "scored", "degraded",
	"skipped_features", "comparables", "shortlist", "error",
}

// XLSXExporter writes every output table as a sheet of one workbook.
type XLSXExporter struct {
	path   string
	logger logger.Logger
}

// Option configures an XLSXExporter.
type Option func(*XLSXExporter)

// WithLogger sets the exporter's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *XLSXExporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewXLSXExporter returns an exporter writing the workbook at path.
func NewXLSXExporter(path string, opts ...Option) *XLSXExporter {
	e := &XLSXExporter{path: path, logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export implements service.Exporter.
func (e *XLSXExporter) Export(ctx context.Context, res *service.Result) error {
	f := xlsx.NewFile()
	if err := addRunSheet(f, res); err != nil {
		return err
	}
	for _, t := range tabular.Tables(res) {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		if err := addSheet(f, t); err != nil {
			return err
		}
	}
	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "xlsx: create %s", dir)
		}
	}
	if err := f.Save(e.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", e.path)
	}
	e.logger.Info(ctx, "workbook written", logger.String("path", e.path), logger.Int("sheets", len(f.Sheets)))
	return nil
}

func addRunSheet(f *xlsx.File, res *service.Result) error {
	rows := make([][]string, 0, len(res.Roles))
	for _, r := range res.Roles {
		rows = append(rows, []string{
			res.RunID, res.ScoringScope, r.RoleID,
			strconv.Itoa(r.Eligible), strconv.Itoa(r.Scored), strconv.FormatBool(r.Degraded),
			strings.Join(r.Skipped, "|"), strconv.Itoa(r.Comparables), strconv.Itoa(r.Shortlist), r.Error,
		})
	}
	return addSheet(f, tabular.Table{Name: SheetRuns, Header: runHeader, Rows: rows})
}

func addSheet(f *xlsx.File, t tabular.Table) error {
	sheet, err := f.AddSheet(t.Name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", t.Name)
	}
	header := sheet.AddRow()
	for _, h := range t.Header {
		header.AddCell().SetString(h)
	}
	textual := make([]bool, len(t.Header))
	for i, h := range t.Header {
		textual[i] = isText(h)
	}
	for _, values := range t.Rows {
		row := sheet.AddRow()
		for i, v := range values {
			setCell(row.AddCell(), v, i < len(textual) && textual[i])
		}
	}
	return nil
}

// setCell writes numeric values as numbers so analysts can sort and filter
// them; nulls stay empty cells.
func setCell(c *xlsx.Cell, v string, text bool) {
	if text || v == "" {
		c.SetString(v)
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		c.SetFloat(f)
		return
	}
	c.SetString(v)
}

// isText reports whether a column holds identifiers or labels that must not
// be coerced to numbers, e.g. a season written as 2024.
func isText(col string) bool {
	switch col {
	case "league", "season", "position_bucket", "kpi_name", "pct_scope", "comparison_scope", "risk_flags":
		return true
	}
	return strings.HasSuffix(col, "_id") || strings.HasSuffix(col, "_league") ||
		strings.HasSuffix(col, "_season") || strings.HasPrefix(col, "reason_") ||
		strings.HasPrefix(col, "evidence_")
}
