// Package percentile computes within-group percentile ranks for numeric
// metrics, in wide (pct_<metric> per row) and long (one row per metric) form.
package percentile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
)

// groupSep joins grouping values into a map key. It cannot occur in CSV-sourced text.
const groupSep = "\x1f"

// Wide returns a copy of ds with a percentile column for every metric in
// metrics that ds carries. Ranks are computed within each distinct
// combination of groupColumns values; an empty value is a group of its own.
// Ties share the average rank and pct = avgRank / nonNull * 100. Null metric
// values get no percentile and do not count towards the group size.
func Wide(ds *model.Dataset, metrics []string, groupColumns []string) (*model.Dataset, error) {
	if err := checkGroupColumns(groupColumns); err != nil {
		return nil, err
	}
	out := ds.Clone()
	groups := groupIndex(out.Rows, groupColumns)

	for _, metric := range metrics {
		if !out.HasColumn(metric) {
			continue
		}
		out.AddPercentileColumn(metric)
		for i := range out.Rows {
			delete(out.Rows[i].Percentiles, metric)
		}
		for _, k := range groups.keys {
			rankGroup(out.Rows, groups.members[k], metric)
		}
	}
	return out, nil
}

// WideForScope resolves scopeName through the registry and calls Wide.
func WideForScope(ds *model.Dataset, metrics []string, scopeName string) (*model.Dataset, error) {
	s, err := scope.Get(scopeName)
	if err != nil {
		return nil, err
	}
	return Wide(ds, metrics, s.GroupColumns)
}

// grouped holds row indices per grouping key, in first-seen key order.
type grouped struct {
	keys    []string
	members map[string][]int
}

func groupIndex(rows []model.Record, cols []string) grouped {
	g := grouped{members: make(map[string][]int)}
	parts := make([]string, len(cols))
	for i := range rows {
		for j, c := range cols {
			parts[j], _ = rows[i].Dimension(c)
		}
		k := strings.Join(parts, groupSep)
		if _, ok := g.members[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.members[k] = append(g.members[k], i)
	}
	return g
}

func checkGroupColumns(cols []string) error {
	var probe model.Record
	for _, c := range cols {
		if _, ok := probe.Dimension(c); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	return nil
}

type ranked struct {
	row int
	val float64
}

func rankGroup(rows []model.Record, idx []int, metric string) {
	vals := make([]ranked, 0, len(idx))
	for _, i := range idx {
		v, ok := rows[i].Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		vals = append(vals, ranked{row: i, val: v})
	}
	if len(vals) == 0 {
		return
	}
	ranks := AverageRanks(valuesOf(vals))
	n := float64(len(vals))
	for k, r := range vals {
		rows[r.row].Percentiles[metric] = ranks[k] / n * 100
	}
}

func valuesOf(rs []ranked) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.val
	}
	return out
}

// AverageRanks returns 1-based ranks of values in ascending order; tied
// values share the mean of the ranks they span.
func AverageRanks(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, len(values))
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && values[order[end]] == values[order[start]] {
			end++
		}
		// positions start..end-1 hold ranks start+1..end
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = avg
		}
		start = end
	}
	return ranks
}
