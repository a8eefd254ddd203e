// Package scoring computes composite role scores from percentile features.
package scoring

import (
	"context"
	"fmt"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
)

const (
	maxScoreValue = 100
	minScoreValue = 0
)

// Option applies a configuration option to the RoleScorer.
type Option func(*RoleScorer)

// WithClamp bounds every score to [0,100]. Percentiles already keep scores in
// range; clamping only matters for hand-built inputs.
func WithClamp(enabled bool) Option {
	return func(s *RoleScorer) {
		s.clamp = enabled
	}
}

// Report summarises one role's scoring pass.
type Report struct {
	RoleID string
	// Eligible counts rows passing the bucket and must-have gates.
	Eligible int
	// Scored counts rows that received a non-null score.
	Scored int
	// Skipped lists weight keys whose percentile column is absent.
	Skipped []string
	// Degraded is set when no usable weight remains and every score is null.
	Degraded bool
}

// Scorer scores a dataset against a set of roles.
type Scorer interface {
	// Score returns a copy of ds with one score column per role.
	Score(ctx context.Context, ds *model.Dataset, rs []roles.Role) (*model.Dataset, []Report, error)
}

// RoleScorer implements Scorer as a weighted mean of percentiles.
type RoleScorer struct {
	clamp bool
}

// NewRoleScorer creates a scorer with options.
func NewRoleScorer(opts ...Option) *RoleScorer {
	s := &RoleScorer{clamp: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score adds score_<role_id> to a copy of ds for every role. A row is scored
// only when it is eligible and every available weight feature has a
// percentile; otherwise its score is null.
func (s *RoleScorer) Score(ctx context.Context, ds *model.Dataset, rs []roles.Role) (*model.Dataset, []Report, error) {
	out := ds.Clone()
	reports := make([]Report, 0, len(rs))
	for _, r := range rs {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("context cancelled: %w", err)
		}
		reports = append(reports, s.scoreRole(out, r))
	}
	return out, reports, nil
}

func (s *RoleScorer) scoreRole(ds *model.Dataset, r roles.Role) Report {
	rep := Report{RoleID: r.ID}
	ds.AddScoreColumn(r.ID)

	// feature availability is resolved once per dataset
	avail := make([]roles.Feature, 0, len(r.Weights))
	var total float64
	for _, f := range r.Weights {
		if !ds.HasPercentile(f.Metric) {
			rep.Skipped = append(rep.Skipped, f.Key)
			continue
		}
		avail = append(avail, f)
		total += f.Weight
	}
	rep.Degraded = total == 0

	for i := range ds.Rows {
		row := &ds.Rows[i]
		delete(row.Scores, r.ID)
		if !Eligible(row, r) {
			continue
		}
		rep.Eligible++
		if rep.Degraded {
			continue
		}
		v, ok := weightedMean(row, avail, total)
		if !ok {
			continue
		}
		if s.clamp {
			v = clamp(v)
		}
		row.Scores[r.ID] = v
		rep.Scored++
	}
	return rep
}

// Eligible reports whether row matches the role's bucket and every
// must-have threshold. A missing value fails its threshold.
func Eligible(row *model.Record, r roles.Role) bool {
	if row.PositionBucket != r.Bucket {
		return false
	}
	for _, t := range r.MustHaves {
		v, ok := row.Raw(t.Metric)
		if !ok || v < t.Min {
			return false
		}
	}
	return true
}

func weightedMean(row *model.Record, feats []roles.Feature, total float64) (float64, bool) {
	var sum float64
	for _, f := range feats {
		p, ok := row.Pct(f.Metric)
		if !ok {
			return 0, false
		}
		if f.Negative {
			p = maxScoreValue - p
		}
		sum += f.Weight * p
	}
	return sum / total, true
}

func clamp(v float64) float64 {
	if v < minScoreValue {
		return minScoreValue
	}
	if v > maxScoreValue {
		return maxScoreValue
	}
	return v
}
