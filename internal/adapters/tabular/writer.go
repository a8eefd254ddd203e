package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
)

// WriteCSV writes t with its header to w.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrapf(err, "tabular: write %s header", t.Name)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "tabular: write %s row", t.Name)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrapf(err, "tabular: flush %s", t.Name)
	}
	return nil
}

// CSVExporter writes every output table of a run as <dir>/<table>.csv.
type CSVExporter struct {
	dir    string
	logger logger.Logger
}

// Option configures a CSVExporter.
type Option func(*CSVExporter)

// WithLogger sets the exporter's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *CSVExporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewCSVExporter returns an exporter writing into dir.
func NewCSVExporter(dir string, opts ...Option) *CSVExporter {
	e := &CSVExporter{dir: dir, logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export implements service.Exporter.
func (e *CSVExporter) Export(ctx context.Context, res *service.Result) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return eris.Wrapf(err, "tabular: create %s", e.dir)
	}
	for _, t := range Tables(res) {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "tabular: context cancelled")
		}
		path := filepath.Join(e.dir, t.Name+".csv")
		if err := writeFile(path, t); err != nil {
			return err
		}
		e.logger.Info(ctx, "table written", logger.String("path", path), logger.Int("rows", len(t.Rows)))
	}
	return nil
}

func writeFile(path string, t Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "tabular: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "tabular: close %s", path)
		}
	}()
	return WriteCSV(f, t)
}
