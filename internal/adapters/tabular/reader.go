// Package tabular reads the metric table from CSV and writes run outputs as
// CSV files.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// Derived column prefixes. A previously exported table may carry them; they
// are recomputed on every run, so the reader ignores them.
const (
	pctPrefix   = "pct_"
	scorePrefix = "score_"
)

// ReadFile reads the metric table at path.
func ReadFile(ctx context.Context, path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	defer f.Close()
	return Read(ctx, f)
}

// Read parses a header-led metric table. Identity columns are required;
// position_bucket, minutes and age are optional; every other column is a raw
// metric. Numeric cells that do not parse, or parse to NaN or Inf, are nulls.
// A row with an empty player_team_season_id is an error.
func Read(ctx context.Context, r io.Reader) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(ErrEmptyTable, "tabular: read header")
	}
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read header")
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Record
	for line := 2; ; line++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "tabular: context cancelled")
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "tabular: read line %d", line)
		}
		row := cols.record(rec)
		if row.PlayerTeamSeasonID == "" {
			return nil, eris.Wrapf(ErrMissingKey, "tabular: line %d", line)
		}
		rows = append(rows, row)
	}
	return model.NewDataset(rows, cols.present), nil
}

type layout struct {
	index   map[string]int
	metrics []string
	present []string
}

func parseHeader(header []string) (*layout, error) {
	l := &layout{index: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" || strings.HasPrefix(name, pctPrefix) || strings.HasPrefix(name, scorePrefix) {
			continue
		}
		if _, dup := l.index[name]; dup {
			return nil, eris.Wrapf(ErrDuplicateColumn, "tabular: %q", name)
		}
		l.index[name] = i
		l.present = append(l.present, name)
		if !isContext(name) {
			l.metrics = append(l.metrics, name)
		}
	}
	for _, c := range model.IdentityColumns {
		if _, ok := l.index[c]; !ok {
			return nil, eris.Wrapf(ErrMissingColumn, "tabular: %q", c)
		}
	}
	return l, nil
}

func (l *layout) cell(rec []string, col string) (string, bool) {
	i, ok := l.index[col]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

func (l *layout) text(rec []string, col string) string {
	s, _ := l.cell(rec, col)
	return s
}

func (l *layout) number(rec []string, col string) (float64, bool) {
	s, ok := l.cell(rec, col)
	if !ok || s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (l *layout) record(rec []string) model.Record {
	out := model.Record{
		Key: model.Key{
			PlayerTeamSeasonID: l.text(rec, model.ColPlayerTeamSeasonID),
			PlayerID:           l.text(rec, model.ColPlayerID),
			TeamID:             l.text(rec, model.ColTeamID),
			League:             l.text(rec, model.ColLeague),
			Season:             l.text(rec, model.ColSeason),
		},
		PositionBucket: l.text(rec, model.ColPositionBucket),
		Metrics:        make(map[string]float64, len(l.metrics)),
	}
	if v, ok := l.number(rec, model.ColMinutes); ok {
		out.Minutes = model.Float(v)
	}
	if v, ok := l.number(rec, model.ColAge); ok {
		out.Age = model.Float(v)
	}
	for _, m := range l.metrics {
		if v, ok := l.number(rec, m); ok {
			out.Metrics[m] = v
		}
	}
	return out
}

func isContext(col string) bool {
	switch col {
	case model.ColPlayerTeamSeasonID, model.ColPlayerID, model.ColTeamID, model.ColLeague,
		model.ColSeason, model.ColPositionBucket, model.ColMinutes, model.ColAge:
		return true
	}
	return false
}
