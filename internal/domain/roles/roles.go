// Package roles turns positional role archetype definitions into typed,
// pre-resolved roles the scoring, comparables and shortlist engines consume.
package roles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// Shortlist subscore categories, in output order. Security is configured
// separately through Definition.Security.
const (
	CategoryProgression = "progression"
	CategoryDefending   = "defending"
	CategoryCreation    = "creation"
	CategoryFinishing   = "finishing"
	CategorySecurity    = "security"
)

// Categories lists every subscore column in output order.
var Categories = []string{ //nolint:gochecknoglobals // fixed output schema
	CategoryProgression,
	CategoryDefending,
	CategoryCreation,
	CategoryFinishing,
	CategorySecurity,
}

const (
	minMinutesKey    = "min_minutes"
	minSuffix        = "_min"
	maxEvidence      = 5
	securityFeatures = 2
)

// Aliases maps combined weight keys to the canonical metric they are scored on.
var Aliases = map[string]string{ //nolint:gochecknoglobals // fixed alias table
	"long_pass_cmp_p90_or_pct":     "long_pass_cmp_pct",
	"aerial_win_pct_or_won_p90":    "aerial_win_pct",
	"errors_or_dispossessed_neg":   "errors_p90",
	"dispossessed_miscontrols_neg": "mis_dis_p90",
	"fouls_committed_neg":          "fouls_p90",
}

// Definition is a role as written in configuration.
type Definition struct {
	RoleID          string              `koanf:"role_id"`
	PositionBucket  string              `koanf:"position_bucket"`
	MustHave        map[string]float64  `koanf:"must_have"`
	Weights         map[string]float64  `koanf:"weights"`
	NegativeMetrics []string            `koanf:"negative_metrics"`
	Features        []string            `koanf:"features"`
	InvertFeatures  []string            `koanf:"invert_features"`
	Subscores       map[string][]string `koanf:"subscores"`
	Security        []string            `koanf:"security"`
	Evidence        []string            `koanf:"evidence"`
}

// Threshold is a must-have: the raw Metric must be present and >= Min.
type Threshold struct {
	Metric string
	Min    float64
}

// Feature is one resolved weight: Key as configured, Metric the canonical
// percentile it reads, Negative when the percentile is inverted first.
type Feature struct {
	Key      string
	Metric   string
	Weight   float64
	Negative bool
}

// Category is a shortlist subscore and the percentile features it averages.
type Category struct {
	Name     string
	Features []string
}

// Role is a fully resolved role definition.
type Role struct {
	ID        string
	Bucket    string
	MustHaves []Threshold
	Weights   []Feature

	// Features is the comparables feature list, in order.
	Features []string
	// Invert lists percentile features where high is bad.
	Invert []string
	// Subscores are the non-security shortlist categories.
	Subscores []Category
	// Security is the role's two-feature security pair.
	Security []string
	// Evidence lists up to five raw KPIs quoted on the shortlist.
	Evidence []string
}

// InvertSet returns Invert as a set.
func (r Role) InvertSet() map[string]bool {
	out := make(map[string]bool, len(r.Invert))
	for _, f := range r.Invert {
		out[f] = true
	}
	return out
}

// Resolve validates d and resolves every key to a canonical column.
func Resolve(d Definition) (Role, error) {
	if strings.TrimSpace(d.RoleID) == "" {
		return Role{}, fmt.Errorf("%w: missing role_id", ErrInvalidRole)
	}
	fail := func(format string, args ...any) (Role, error) {
		return Role{}, fmt.Errorf("%w: role %s: %s", ErrInvalidRole, d.RoleID, fmt.Sprintf(format, args...))
	}
	if strings.TrimSpace(d.PositionBucket) == "" {
		return fail("missing position_bucket")
	}

	r := Role{ID: d.RoleID, Bucket: d.PositionBucket}

	for _, key := range sortedKeys(d.MustHave) {
		metric, ok := mustHaveMetric(key)
		if !ok {
			return fail("unresolvable must_have key %q", key)
		}
		r.MustHaves = append(r.MustHaves, Threshold{Metric: metric, Min: d.MustHave[key]})
	}

	if len(d.Weights) == 0 {
		return fail("empty weights")
	}
	negatives := make(map[string]bool, len(d.NegativeMetrics))
	for _, n := range d.NegativeMetrics {
		if _, ok := d.Weights[n]; !ok {
			return fail("negative metric %q has no weight", n)
		}
		negatives[n] = true
	}
	for _, key := range sortedKeys(d.Weights) {
		metric, ok := ResolveFeature(key)
		if !ok {
			return fail("unresolvable weight key %q", key)
		}
		r.Weights = append(r.Weights, Feature{
			Key:      key,
			Metric:   metric,
			Weight:   d.Weights[key],
			Negative: negatives[key],
		})
	}

	lists := []struct {
		name string
		in   []string
		out  *[]string
	}{
		{"features", d.Features, &r.Features},
		{"invert_features", d.InvertFeatures, &r.Invert},
		{"security", d.Security, &r.Security},
		{"evidence", d.Evidence, &r.Evidence},
	}
	for _, l := range lists {
		for _, f := range l.in {
			if !model.IsCatalogued(f) {
				return fail("%s: unknown metric %q", l.name, f)
			}
		}
		*l.out = append([]string(nil), l.in...)
	}
	if len(r.Evidence) > maxEvidence {
		return fail("evidence lists %d metrics, at most %d allowed", len(r.Evidence), maxEvidence)
	}
	if len(r.Security) > 0 {
		if len(r.Security) != securityFeatures {
			return fail("security needs exactly %d features, got %d", securityFeatures, len(r.Security))
		}
		inv := r.InvertSet()
		if !inv[r.Security[0]] && !inv[r.Security[1]] {
			return fail("security pair %v has no inverted feature", r.Security)
		}
	}

	for name := range d.Subscores {
		if !isSubscoreCategory(name) {
			return fail("unknown subscore category %q", name)
		}
	}
	for _, name := range Categories {
		feats, ok := d.Subscores[name]
		if !ok || name == CategorySecurity {
			continue
		}
		for _, f := range feats {
			if !model.IsCatalogued(f) {
				return fail("subscore %s: unknown metric %q", name, f)
			}
		}
		r.Subscores = append(r.Subscores, Category{Name: name, Features: append([]string(nil), feats...)})
	}
	return r, nil
}

// ResolveAll resolves every definition and rejects duplicate role ids.
func ResolveAll(defs []Definition) ([]Role, error) {
	out := make([]Role, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		r, err := Resolve(d)
		if err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate role_id %q", ErrInvalidRole, r.ID)
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out, nil
}

// ResolveFeature maps a weight key to its canonical metric.
func ResolveFeature(key string) (string, bool) {
	if m, ok := Aliases[key]; ok {
		return m, true
	}
	if model.IsCatalogued(key) {
		return key, true
	}
	return "", false
}

func mustHaveMetric(key string) (string, bool) {
	if key == minMinutesKey {
		return model.ColMinutes, true
	}
	metric, ok := strings.CutSuffix(key, minSuffix)
	if !ok {
		return "", false
	}
	if metric == model.ColMinutes || metric == model.ColAge || model.IsCatalogued(metric) {
		return metric, true
	}
	return "", false
}

func isSubscoreCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
