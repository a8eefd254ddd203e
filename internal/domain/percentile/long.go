package percentile

import (
	"fmt"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// LongRecord is one (entity, metric) row of the long percentile table.
type LongRecord struct {
	model.Key
	PositionBucket string   `json:"position_bucket"`
	Minutes        *float64 `json:"minutes"`
	KPIName        string   `json:"kpi_name"`
	KPIValue       *float64 `json:"kpi_value"`
	KPIPct         *float64 `json:"kpi_pct"`
	Scope          string   `json:"pct_scope"`
}

// Long melts the raw values and the percentiles of wide into one row per
// (entity, metric) and pairs them by identity key. Only metrics that have a
// percentile column are emitted. Identity keys must be unique in wide.
func Long(wide *model.Dataset, metrics []string, scopeName string) ([]LongRecord, error) {
	byKey := make(map[model.Key]int, wide.Len())
	for i := range wide.Rows {
		k := wide.Rows[i].Key
		if _, dup := byKey[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, k.PlayerTeamSeasonID)
		}
		byKey[k] = i
	}

	var kpis []string
	for _, m := range metrics {
		if wide.HasPercentile(m) {
			kpis = append(kpis, m)
		}
	}

	out := make([]LongRecord, 0, len(wide.Rows)*len(kpis))
	for i := range wide.Rows {
		r := &wide.Rows[i]
		for _, m := range kpis {
			lr := LongRecord{
				Key:            r.Key,
				PositionBucket: r.PositionBucket,
				Minutes:        r.Minutes,
				KPIName:        m,
				Scope:          scopeName,
			}
			if v, ok := r.Metrics[m]; ok {
				lr.KPIValue = model.Float(v)
			}
			if p, ok := r.Percentiles[m]; ok {
				lr.KPIPct = model.Float(p)
			}
			out = append(out, lr)
		}
	}
	return out, nil
}

// Widen pivots long rows back to percentile values per identity key and
// metric. A repeated (key, metric) pair is an error.
func Widen(long []LongRecord) (map[model.Key]map[string]*float64, error) {
	out := make(map[model.Key]map[string]*float64)
	for _, lr := range long {
		row, ok := out[lr.Key]
		if !ok {
			row = make(map[string]*float64)
			out[lr.Key] = row
		}
		if _, dup := row[lr.KPIName]; dup {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateKey, lr.PlayerTeamSeasonID, lr.KPIName)
		}
		row[lr.KPIName] = lr.KPIPct
	}
	return out, nil
}

// LongForScopes computes percentiles for every scope and concatenates the
// long tables, scope by scope.
func LongForScopes(ds *model.Dataset, metrics []string, scopes []string) ([]LongRecord, error) {
	var out []LongRecord
	for _, s := range scopes {
		wide, err := WideForScope(ds, metrics, s)
		if err != nil {
			return nil, err
		}
		long, err := Long(wide, metrics, s)
		if err != nil {
			return nil, err
		}
		out = append(out, long...)
	}
	return out, nil
}
