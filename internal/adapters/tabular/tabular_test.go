package tabular_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rberkkaratas/recruitment-support/internal/adapters/tabular"
	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
)

const metricTable = `player_team_season_id,player_id,team_id,league,season,position_bucket,minutes,age,xa_p90,pct_xa_p90,fouls_p90
a,p1,t1,EPL,2024,DMCM,1800,24,0.23,55,1.1
b,p2,t2,,2024,DMCM,n/a,,NaN,,oops
`

func TestRead(t *testing.T) {
	Convey("Given a metric table", t, func() {
		ds, err := tabular.Read(context.Background(), strings.NewReader(metricTable))
		So(err, ShouldBeNil)

		Convey("Then every row is read", func() {
			So(ds.Len(), ShouldEqual, 2)
			So(ds.Rows[0].PlayerTeamSeasonID, ShouldEqual, "a")
			So(ds.Rows[0].PositionBucket, ShouldEqual, "DMCM")
			So(*ds.Rows[0].Minutes, ShouldEqual, 1800)
			So(*ds.Rows[0].Age, ShouldEqual, 24)
			So(ds.Rows[0].Metrics["xa_p90"], ShouldEqual, 0.23)
		})

		Convey("Then bad numerics are nulls", func() {
			row := ds.Rows[1]
			So(row.Minutes, ShouldBeNil)
			So(row.Age, ShouldBeNil)
			_, ok := row.Metrics["xa_p90"]
			So(ok, ShouldBeFalse)
			_, ok = row.Metrics["fouls_p90"]
			So(ok, ShouldBeFalse)
		})

		Convey("Then an empty league stays the null value", func() {
			So(ds.Rows[1].League, ShouldEqual, "")
		})

		Convey("Then metric columns exist even when every cell is null", func() {
			So(ds.HasColumn("fouls_p90"), ShouldBeTrue)
			So(ds.MetricColumns(), ShouldResemble, []string{"xa_p90", "fouls_p90"})
		})

		Convey("Then derived columns are ignored", func() {
			So(ds.HasColumn("pct_xa_p90"), ShouldBeFalse)
			So(ds.HasPercentile("xa_p90"), ShouldBeFalse)
		})
	})

	Convey("Given a table without an identity column", t, func() {
		_, err := tabular.Read(context.Background(), strings.NewReader("player_team_season_id,player_id,team_id,league\na,p,t,EPL\n"))

		Convey("Then the missing column is named", func() {
			So(errors.Is(err, tabular.ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"season"`)
		})
	})

	Convey("Given rows with an empty player_team_season_id", t, func() {
		table := "player_team_season_id,player_id,team_id,league,season\na,p1,t,EPL,2024\n,p2,t,EPL,2024\n ,p3,t,EPL,2024\n"
		_, err := tabular.Read(context.Background(), strings.NewReader(table))

		Convey("Then the first keyless row is rejected by line", func() {
			So(errors.Is(err, tabular.ErrMissingKey), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 3")
		})
	})

	Convey("Given a table with a repeated column", t, func() {
		_, err := tabular.Read(context.Background(), strings.NewReader("player_team_season_id,player_id,team_id,league,season,xa_p90,xa_p90\n"))
		So(errors.Is(err, tabular.ErrDuplicateColumn), ShouldBeTrue)
	})

	Convey("Given an empty input", t, func() {
		_, err := tabular.Read(context.Background(), strings.NewReader(""))
		So(errors.Is(err, tabular.ErrEmptyTable), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tabular.Read(ctx, strings.NewReader(metricTable))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		_, err := tabular.ReadFile(context.Background(), filepath.Join(t.TempDir(), "none.csv"))
		So(err, ShouldNotBeNil)
	})
}

func sampleResult() *service.Result {
	ds := model.NewDataset([]model.Record{{
		Key:            model.Key{PlayerTeamSeasonID: "a", PlayerID: "p1", TeamID: "t1", League: "EPL", Season: "2024"},
		PositionBucket: "DMCM",
		Minutes:        model.Float(1800),
		Metrics:        map[string]float64{"xa_p90": 0.25},
	}}, []string{"player_team_season_id", "player_id", "team_id", "league", "season", "position_bucket", "minutes", "xa_p90"})
	ds.AddPercentileColumn("xa_p90")
	ds.Rows[0].Percentiles["xa_p90"] = 71
	ds.AddScoreColumn("DLP")
	ds.Rows[0].Scores["DLP"] = 64.5

	ev := "xa_p90=0.25 (p71)"
	return &service.Result{
		RunInfo: service.RunInfo{RunID: "r1"},
		Scored:  ds,
		Percentiles: []percentile.LongRecord{{
			Key: ds.Rows[0].Key, PositionBucket: "DMCM", Minutes: model.Float(1800),
			KPIName: "xa_p90", KPIValue: model.Float(0.25), KPIPct: model.Float(71), Scope: "league_season",
		}},
		Comparables: []comparables.Edge{{
			ComparisonScope: "global", PctScope: "league_season", RoleID: "DLP",
			Anchor: ds.Rows[0].Key, Comp: model.Key{PlayerTeamSeasonID: "b", League: "LaLiga", Season: "2024"},
			DifferentLeague: true, Distance: 0.125, Rank: 1, Reasons: []string{"xa_p90_higher"},
		}},
		Shortlist: []shortlist.Entry{{
			Key: ds.Rows[0].Key, PositionBucket: "DMCM", Minutes: model.Float(1800), RoleID: "DLP",
			TotalScore: 64.5,
			Subscores:  map[string]*float64{roles.CategoryCreation: model.Float(71)},
			RiskFlags:  "LOW_MINUTES", RiskCount: 1,
			Evidence: [shortlist.EvidenceSlots]*string{&ev},
			Rank:     1,
		}},
	}
}

func column(t tabular.Table, name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func TestTables(t *testing.T) {
	Convey("Given a run result", t, func() {
		tables := tabular.Tables(sampleResult())

		Convey("Then the four tables come in a fixed order", func() {
			So(len(tables), ShouldEqual, 4)
			So(tables[0].Name, ShouldEqual, tabular.TableScored)
			So(tables[1].Name, ShouldEqual, tabular.TablePercentiles)
			So(tables[2].Name, ShouldEqual, tabular.TableComparables)
			So(tables[3].Name, ShouldEqual, tabular.TableShortlist)
		})

		Convey("Then the scored table carries derived columns", func() {
			scored := tables[0]
			So(scored.Rows[0][column(scored, "pct_xa_p90")], ShouldEqual, "71")
			So(scored.Rows[0][column(scored, "score_DLP")], ShouldEqual, "64.5")
			So(scored.Rows[0][column(scored, "age")], ShouldEqual, "")
		})

		Convey("Then the comparables table pads reasons", func() {
			comp := tables[2]
			So(len(comp.Header), ShouldEqual, 20)
			So(comp.Rows[0][column(comp, "anchor_pts_id")], ShouldEqual, "a")
			So(comp.Rows[0][column(comp, "comp_pts_id")], ShouldEqual, "b")
			So(comp.Rows[0][column(comp, "different_league")], ShouldEqual, "true")
			So(comp.Rows[0][column(comp, "reason_1")], ShouldEqual, "xa_p90_higher")
			So(comp.Rows[0][column(comp, "reason_3")], ShouldEqual, "")
		})

		Convey("Then the shortlist table has every subscore and evidence slot", func() {
			sl := tables[3]
			So(column(sl, "sub_security"), ShouldBeGreaterThan, 0)
			So(column(sl, "evidence_5"), ShouldBeGreaterThan, 0)
			So(sl.Rows[0][column(sl, "sub_creation")], ShouldEqual, "71")
			So(sl.Rows[0][column(sl, "sub_progression")], ShouldEqual, "")
			So(sl.Rows[0][column(sl, "evidence_1")], ShouldEqual, "xa_p90=0.25 (p71)")
			So(sl.Rows[0][len(sl.Header)-1], ShouldEqual, "1")
		})
	})

	Convey("Given a run without a scored table", t, func() {
		So(tabular.ScoredTable(nil).Rows, ShouldBeEmpty)
	})
}

func TestCSVExporter(t *testing.T) {
	Convey("Given a CSV exporter", t, func() {
		dir := filepath.Join(t.TempDir(), "out")
		exp := tabular.NewCSVExporter(dir)

		Convey("When exporting a run", func() {
			So(exp.Export(context.Background(), sampleResult()), ShouldBeNil)

			Convey("Then one file per table is written", func() {
				for _, name := range []string{tabular.TableScored, tabular.TablePercentiles, tabular.TableComparables, tabular.TableShortlist} {
					_, err := os.Stat(filepath.Join(dir, name+".csv"))
					So(err, ShouldBeNil)
				}
			})

			Convey("Then the shortlist file parses back", func() {
				raw, err := os.ReadFile(filepath.Join(dir, tabular.TableShortlist+".csv"))
				So(err, ShouldBeNil)
				recs, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 2)
				So(recs[1][0], ShouldEqual, "a")
			})
		})
	})

	Convey("Given WriteCSV", t, func() {
		var buf bytes.Buffer
		err := tabular.WriteCSV(&buf, tabular.Table{Name: "x", Header: []string{"a", "b"}, Rows: [][]string{{"1", "x,y"}}})
		So(err, ShouldBeNil)
		So(buf.String(), ShouldEqual, "a,b\n1,\"x,y\"\n")
	})
}
