// Package comparables finds nearest-neighbour players within a role's
// eligibility pool and explains each pairing with reason codes.
package comparables

import (
	"sort"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// MaxReasons is the number of reason codes carried per edge.
const MaxReasons = 3

const (
	minPool = 2
	pctMax  = 100
)

// Request configures one role's comparables pass.
type Request struct {
	RoleID string
	TopN   int
	// Features lists percentile features, by metric name, in order.
	Features []string
	// Invert lists features where a high percentile is bad.
	Invert []string
	// ComparisonScope and PctScope label the output; they do not change the math.
	ComparisonScope string
	PctScope        string
}

// Edge is one directed anchor -> comparable pairing.
type Edge struct {
	ComparisonScope string    `json:"comparison_scope"`
	PctScope        string    `json:"pct_scope"`
	RoleID          string    `json:"role_id"`
	Anchor          model.Key `json:"anchor"`
	Comp            model.Key `json:"comp"`
	DifferentLeague bool      `json:"different_league"`
	DifferentSeason bool      `json:"different_season"`
	Distance        float64   `json:"distance"`
	Rank            int       `json:"rank"`
	// Reasons holds up to three "<feature>:higher|lower" codes.
	Reasons []string `json:"reasons"`
}

// Build returns, for every row in the role's pool, its TopN closest
// neighbours by cosine distance on robust-scaled percentile features.
// Missing columns, an empty feature set or a pool under two rows yield an
// empty result.
func Build(ds *model.Dataset, req Request) []Edge {
	if !ds.HasColumns(model.IdentityColumns...) || !ds.HasScore(req.RoleID) {
		return nil
	}
	feats := make([]string, 0, len(req.Features))
	for _, f := range req.Features {
		if ds.HasPercentile(f) {
			feats = append(feats, f)
		}
	}
	if len(feats) == 0 {
		return nil
	}

	pool := make([]*model.Record, 0, ds.Len())
	for i := range ds.Rows {
		if _, ok := ds.Rows[i].Score(req.RoleID); ok {
			pool = append(pool, &ds.Rows[i])
		}
	}
	if len(pool) < minPool {
		return nil
	}
	topN := min(req.TopN, len(pool)-1)
	if topN <= 0 {
		return nil
	}

	x, feats := featureMatrix(pool, feats, req.Invert)
	if len(feats) == 0 {
		return nil
	}
	robustScale(x)
	dist := DistanceMatrix(x)

	edges := make([]Edge, 0, len(pool)*topN)
	order := make([]int, len(pool))
	for i, anchor := range pool {
		order = order[:0]
		for j := range pool {
			if j != i {
				order = append(order, j)
			}
		}
		sort.SliceStable(order, func(a, b int) bool { return dist[i][order[a]] < dist[i][order[b]] })

		for rank, j := range order[:topN] {
			comp := pool[j]
			edges = append(edges, Edge{
				ComparisonScope: req.ComparisonScope,
				PctScope:        req.PctScope,
				RoleID:          req.RoleID,
				Anchor:          anchor.Key,
				Comp:            comp.Key,
				DifferentLeague: anchor.League != comp.League,
				DifferentSeason: anchor.Season != comp.Season,
				Distance:        dist[i][j],
				Rank:            rank + 1,
				Reasons:         ReasonCodes(x[i], x[j], feats, MaxReasons),
			})
		}
	}
	return edges
}

// featureMatrix builds the pool x feature matrix: pool-median fill, then
// 100-v for inverted features. Features with no value anywhere in the pool
// have no median and are dropped.
func featureMatrix(pool []*model.Record, feats, invert []string) ([][]float64, []string) {
	inv := make(map[string]bool, len(invert))
	for _, f := range invert {
		inv[f] = true
	}

	kept := make([]string, 0, len(feats))
	cols := make([][]float64, 0, len(feats))
	for _, f := range feats {
		present := make([]float64, 0, len(pool))
		for _, r := range pool {
			if v, ok := r.Pct(f); ok {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			continue
		}
		med := median(present)
		col := make([]float64, len(pool))
		for i, r := range pool {
			v, ok := r.Pct(f)
			if !ok {
				v = med
			}
			if inv[f] {
				v = pctMax - v
			}
			col[i] = v
		}
		kept = append(kept, f)
		cols = append(cols, col)
	}

	x := make([][]float64, len(pool))
	for i := range x {
		x[i] = make([]float64, len(kept))
		for j := range kept {
			x[i][j] = cols[j][i]
		}
	}
	return x, kept
}

// ReasonCodes names the k features with the largest |comp-anchor| gap, ties
// kept in feature order. A positive gap is "higher", anything else "lower".
func ReasonCodes(anchor, comp []float64, feats []string, k int) []string {
	idx := make([]int, len(feats))
	diff := make([]float64, len(feats))
	for i := range feats {
		idx[i] = i
		diff[i] = comp[i] - anchor[i]
	}
	sort.SliceStable(idx, func(a, b int) bool { return abs(diff[idx[a]]) > abs(diff[idx[b]]) })

	n := min(k, len(idx))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		dir := "lower"
		if diff[i] > 0 {
			dir = "higher"
		}
		out = append(out, feats[i]+":"+dir)
	}
	return out
}
