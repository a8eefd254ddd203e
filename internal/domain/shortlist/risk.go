package shortlist

import (
	"strings"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// Risk flag names, in evaluation order.
const (
	FlagLowMinutes    = "LOW_MINUTES"
	FlagHighErrors    = "HIGH_ERRORS"
	FlagHighTurnovers = "HIGH_TURNOVERS"
	FlagVeryYoung     = "VERY_YOUNG"
	FlagOlderProfile  = "OLDER_PROFILE"

	flagSep = "|"
)

// RiskRules holds the thresholds behind each risk flag.
type RiskRules struct {
	LowMinutesMin  float64 `koanf:"low_minutes_min"`
	LowMinutesMax  float64 `koanf:"low_minutes_max"`
	ErrorsMetric   string  `koanf:"errors_metric"`
	ErrorsPct      float64 `koanf:"errors_pct"`
	TurnoverMetric string  `koanf:"turnover_metric"`
	TurnoverPct    float64 `koanf:"turnover_pct"`
	YoungAge       float64 `koanf:"young_age"`
	OldAge         float64 `koanf:"old_age"`
}

// DefaultRiskRules returns the standard thresholds.
func DefaultRiskRules() RiskRules {
	return RiskRules{
		LowMinutesMin:  900,
		LowMinutesMax:  1200,
		ErrorsMetric:   "errors_p90",
		ErrorsPct:      90,
		TurnoverMetric: "mis_dis_p90",
		TurnoverPct:    90,
		YoungAge:       19,
		OldAge:         32,
	}
}

// Flags evaluates every rule against row and returns the active flags in rule
// order. Percentile rules only fire when their column exists in ds.
func (rr RiskRules) Flags(ds *model.Dataset, row *model.Record) []string {
	var out []string
	if m, ok := row.Raw(model.ColMinutes); ok && m >= rr.LowMinutesMin && m <= rr.LowMinutesMax {
		out = append(out, FlagLowMinutes)
	}
	if pctAtLeast(ds, row, rr.ErrorsMetric, rr.ErrorsPct) {
		out = append(out, FlagHighErrors)
	}
	if pctAtLeast(ds, row, rr.TurnoverMetric, rr.TurnoverPct) {
		out = append(out, FlagHighTurnovers)
	}
	if a, ok := row.Raw(model.ColAge); ok && a <= rr.YoungAge {
		out = append(out, FlagVeryYoung)
	}
	if a, ok := row.Raw(model.ColAge); ok && a >= rr.OldAge {
		out = append(out, FlagOlderProfile)
	}
	return out
}

// JoinFlags renders flags as the pipe-separated risk_flags string.
func JoinFlags(flags []string) string { return strings.Join(flags, flagSep) }

func pctAtLeast(ds *model.Dataset, row *model.Record, metric string, threshold float64) bool {
	if metric == "" || !ds.HasPercentile(metric) {
		return false
	}
	v, ok := row.Pct(metric)
	return ok && v >= threshold
}
