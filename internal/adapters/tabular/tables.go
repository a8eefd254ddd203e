package tabular

import (
	"strconv"

	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
)

// Output table names; each becomes <name>.csv or a workbook sheet.
const (
	TableScored      = "player_season_scored"
	TablePercentiles = "fact_percentiles"
	TableComparables = "fact_comparables"
	TableShortlist   = "fact_shortlist"
)

// Table is a rendered output table. Nulls are empty strings.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables renders every output of a run in a fixed order.
func Tables(res *service.Result) []Table {
	return []Table{
		ScoredTable(res.Scored),
		PercentileTable(res.Percentiles),
		ComparablesTable(res.Comparables),
		ShortlistTable(res.Shortlist),
	}
}

var keyHeader = []string{ //nolint:gochecknoglobals // fixed output schema
	model.ColPlayerTeamSeasonID, model.ColPlayerID, model.ColTeamID, model.ColLeague, model.ColSeason,
}

func keyCells(k model.Key) []string {
	return []string{k.PlayerTeamSeasonID, k.PlayerID, k.TeamID, k.League, k.Season}
}

// ScoredTable renders the wide table: identity, context, raw metrics, then
// pct_<metric> and score_<role_id> columns in the order they were derived.
func ScoredTable(ds *model.Dataset) Table {
	t := Table{Name: TableScored}
	if ds == nil {
		return t
	}
	metrics := ds.MetricColumns()
	pcts := ds.PercentileColumns()
	scores := ds.ScoreColumns()

	t.Header = append(append([]string{}, keyHeader...), model.ColPositionBucket, model.ColMinutes, model.ColAge)
	t.Header = append(t.Header, metrics...)
	for _, m := range pcts {
		t.Header = append(t.Header, pctPrefix+m)
	}
	for _, r := range scores {
		t.Header = append(t.Header, scorePrefix+r)
	}

	t.Rows = make([][]string, len(ds.Rows))
	for i := range ds.Rows {
		row := &ds.Rows[i]
		cells := append(keyCells(row.Key), row.PositionBucket, ptrNum(row.Minutes), ptrNum(row.Age))
		for _, m := range metrics {
			v, ok := row.Metrics[m]
			cells = append(cells, optNum(v, ok))
		}
		for _, m := range pcts {
			cells = append(cells, optNum(row.Pct(m)))
		}
		for _, r := range scores {
			cells = append(cells, optNum(row.Score(r)))
		}
		t.Rows[i] = cells
	}
	return t
}

// PercentileTable renders the long percentile table.
func PercentileTable(recs []percentile.LongRecord) Table {
	t := Table{
		Name: TablePercentiles,
		Header: append(append([]string{}, keyHeader...),
			model.ColPositionBucket, model.ColMinutes, "kpi_name", "kpi_value", "kpi_pct", "pct_scope"),
		Rows: make([][]string, len(recs)),
	}
	for i, r := range recs {
		t.Rows[i] = append(keyCells(r.Key), r.PositionBucket, ptrNum(r.Minutes),
			r.KPIName, ptrNum(r.KPIValue), ptrNum(r.KPIPct), r.Scope)
	}
	return t
}

// ComparablesTable renders comparable edges with anchor_ and comp_ prefixed
// identity columns.
func ComparablesTable(edges []comparables.Edge) Table {
	t := Table{
		Name: TableComparables,
		Header: []string{
			"comparison_scope", "pct_scope", "role_id",
			"anchor_pts_id", "anchor_player_id", "anchor_team_id", "anchor_league", "anchor_season",
			"comp_pts_id", "comp_player_id", "comp_team_id", "comp_league", "comp_season",
			"different_league", "different_season",
			"distance", "rank", "reason_1", "reason_2", "reason_3",
		},
		Rows: make([][]string, len(edges)),
	}
	for i, e := range edges {
		row := []string{e.ComparisonScope, e.PctScope, e.RoleID}
		row = append(row, keyCells(e.Anchor)...)
		row = append(row, keyCells(e.Comp)...)
		row = append(row,
			strconv.FormatBool(e.DifferentLeague), strconv.FormatBool(e.DifferentSeason),
			num(e.Distance), strconv.Itoa(e.Rank))
		for j := 0; j < comparables.MaxReasons; j++ {
			reason := ""
			if j < len(e.Reasons) {
				reason = e.Reasons[j]
			}
			row = append(row, reason)
		}
		t.Rows[i] = row
	}
	return t
}

// ShortlistTable renders shortlist entries with sub_<category> and
// evidence_1..evidence_5 columns.
func ShortlistTable(entries []shortlist.Entry) Table {
	t := Table{Name: TableShortlist}
	t.Header = append(append([]string{}, keyHeader...), model.ColPositionBucket, model.ColMinutes, "role_id", "total_score")
	for _, c := range roles.Categories {
		t.Header = append(t.Header, "sub_"+c)
	}
	t.Header = append(t.Header, "risk_flags", "risk_count")
	for i := 1; i <= shortlist.EvidenceSlots; i++ {
		t.Header = append(t.Header, "evidence_"+strconv.Itoa(i))
	}
	t.Header = append(t.Header, "rank")

	t.Rows = make([][]string, len(entries))
	for i, e := range entries {
		row := append(keyCells(e.Key), e.PositionBucket, ptrNum(e.Minutes), e.RoleID, num(e.TotalScore))
		for _, c := range roles.Categories {
			row = append(row, ptrNum(e.Subscores[c]))
		}
		row = append(row, e.RiskFlags, strconv.Itoa(e.RiskCount))
		for _, ev := range e.Evidence {
			s := ""
			if ev != nil {
				s = *ev
			}
			row = append(row, s)
		}
		t.Rows[i] = append(row, strconv.Itoa(e.Rank))
	}
	return t
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return num(v)
}

func ptrNum(p *float64) string {
	if p == nil {
		return ""
	}
	return num(*p)
}
