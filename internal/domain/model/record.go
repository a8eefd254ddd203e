// Package model contains domain models passed between layers.
package model

// Identity and context columns of the metric table.
const (
	ColPlayerTeamSeasonID = "player_team_season_id"
	ColPlayerID           = "player_id"
	ColTeamID             = "team_id"
	ColLeague             = "league"
	ColSeason             = "season"
	ColPositionBucket     = "position_bucket"
	ColMinutes            = "minutes"
	ColAge                = "age"
)

// IdentityColumns are required for anything that emits per-entity rows.
var IdentityColumns = []string{ //nolint:gochecknoglobals // fixed schema
	ColPlayerTeamSeasonID,
	ColPlayerID,
	ColTeamID,
	ColLeague,
	ColSeason,
}

// Key identifies one (player, team, league, season) row. An empty League or
// Season stands for a null value and compares equal to other nulls.
type Key struct {
	PlayerTeamSeasonID string `json:"player_team_season_id"`
	PlayerID           string `json:"player_id"`
	TeamID             string `json:"team_id"`
	League             string `json:"league"`
	Season             string `json:"season"`
}

// Record is a single MetricRecord plus whatever the pipeline has derived for
// it so far. Absent map keys are nulls.
type Record struct {
	Key
	PositionBucket string
	Minutes        *float64
	Age            *float64

	// Metrics holds raw metric values by canonical name.
	Metrics map[string]float64
	// Percentiles holds pct_<metric> values keyed by metric name.
	Percentiles map[string]float64
	// Scores holds score_<role_id> values keyed by role id.
	Scores map[string]float64
}

// Raw returns a raw numeric value by column name. Minutes and age are
// addressable like any other metric.
func (r *Record) Raw(name string) (float64, bool) {
	switch name {
	case ColMinutes:
		return deref(r.Minutes)
	case ColAge:
		return deref(r.Age)
	}
	v, ok := r.Metrics[name]
	return v, ok
}

// Pct returns the percentile for metric.
func (r *Record) Pct(metric string) (float64, bool) {
	v, ok := r.Percentiles[metric]
	return v, ok
}

// Score returns the composite score for roleID.
func (r *Record) Score(roleID string) (float64, bool) {
	v, ok := r.Scores[roleID]
	return v, ok
}

// Dimension returns the string value of a grouping/identity column.
func (r *Record) Dimension(col string) (string, bool) {
	switch col {
	case ColPlayerTeamSeasonID:
		return r.PlayerTeamSeasonID, true
	case ColPlayerID:
		return r.PlayerID, true
	case ColTeamID:
		return r.TeamID, true
	case ColLeague:
		return r.League, true
	case ColSeason:
		return r.Season, true
	case ColPositionBucket:
		return r.PositionBucket, true
	default:
		return "", false
	}
}

func (r *Record) clone() Record {
	out := *r
	out.Minutes = copyFloat(r.Minutes)
	out.Age = copyFloat(r.Age)
	out.Metrics = copyMap(r.Metrics)
	out.Percentiles = copyMap(r.Percentiles)
	out.Scores = copyMap(r.Scores)
	return out
}

// Float returns a pointer to v; handy for nullable fields.
func Float(v float64) *float64 { return &v }

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
