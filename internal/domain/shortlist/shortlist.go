// Package shortlist ranks a role's eligibility pool into an explainable
// shortlist with category subscores, risk flags and KPI evidence.
package shortlist

import (
	"fmt"
	"sort"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
)

// EvidenceSlots is the fixed number of evidence columns.
const EvidenceSlots = 5

const pctMax = 100

// Request configures one role's shortlist.
type Request struct {
	RoleID    string
	TopN      int
	Subscores []roles.Category
	Security  []string
	Invert    []string
	Evidence  []string
	Risk      RiskRules
}

// Entry is one ranked shortlist row.
type Entry struct {
	model.Key
	PositionBucket string                 `json:"position_bucket"`
	Minutes        *float64               `json:"minutes"`
	RoleID         string                 `json:"role_id"`
	TotalScore     float64                `json:"total_score"`
	Subscores      map[string]*float64    `json:"subscores"`
	RiskFlags      string                 `json:"risk_flags"`
	RiskCount      int                    `json:"risk_count"`
	Evidence       [EvidenceSlots]*string `json:"evidence"`
	Rank           int                    `json:"rank"`
}

// Build ranks rows with a non-null score for req.RoleID by total score then
// minutes, both descending, and keeps the first TopN.
func Build(ds *model.Dataset, req Request) []Entry {
	if !ds.HasScore(req.RoleID) || req.TopN <= 0 {
		return nil
	}
	inv := make(map[string]bool, len(req.Invert))
	for _, f := range req.Invert {
		inv[f] = true
	}

	var out []Entry
	for i := range ds.Rows {
		row := &ds.Rows[i]
		total, ok := row.Score(req.RoleID)
		if !ok {
			continue
		}
		e := Entry{
			Key:            row.Key,
			PositionBucket: row.PositionBucket,
			Minutes:        row.Minutes,
			RoleID:         req.RoleID,
			TotalScore:     total,
			Subscores:      make(map[string]*float64, len(roles.Categories)),
		}
		for _, name := range roles.Categories {
			e.Subscores[name] = nil
		}
		for _, c := range req.Subscores {
			e.Subscores[c.Name] = meanPct(ds, row, c.Features, inv)
		}
		if len(req.Security) > 0 {
			e.Subscores[roles.CategorySecurity] = meanPct(ds, row, req.Security, inv)
		}
		flags := req.Risk.Flags(ds, row)
		e.RiskFlags = JoinFlags(flags)
		e.RiskCount = len(flags)
		e.Evidence = evidence(ds, row, req.Evidence)
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].TotalScore != out[b].TotalScore {
			return out[a].TotalScore > out[b].TotalScore
		}
		return minutesAfter(out[a].Minutes, out[b].Minutes)
	})
	if len(out) > req.TopN {
		out = out[:req.TopN]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// minutesAfter orders a before b on minutes descending with nulls last.
func minutesAfter(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}

// meanPct averages the non-null percentiles of feats whose column exists,
// inverting where flagged. Nil when nothing resolves.
func meanPct(ds *model.Dataset, row *model.Record, feats []string, inv map[string]bool) *float64 {
	var sum float64
	var n int
	for _, f := range feats {
		if !ds.HasPercentile(f) {
			continue
		}
		v, ok := row.Pct(f)
		if !ok {
			continue
		}
		if inv[f] {
			v = pctMax - v
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil
	}
	return model.Float(sum / float64(n))
}

// evidence formats up to EvidenceSlots "<metric>=<raw> (p<pct>)" strings by
// position; a slot is nil when either value is missing.
func evidence(ds *model.Dataset, row *model.Record, kpis []string) [EvidenceSlots]*string {
	var out [EvidenceSlots]*string
	for i, k := range kpis {
		if i >= EvidenceSlots {
			break
		}
		if !ds.HasColumn(k) || !ds.HasPercentile(k) {
			continue
		}
		raw, ok := row.Raw(k)
		if !ok {
			continue
		}
		p, ok := row.Pct(k)
		if !ok {
			continue
		}
		s := fmt.Sprintf("%s=%.2f (p%.0f)", k, raw, p)
		out[i] = &s
	}
	return out
}
