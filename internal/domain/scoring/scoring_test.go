package scoring_test

import (
	"context"
	"testing"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func dlp() roles.Role {
	r, err := roles.Resolve(roles.Definition{
		RoleID:         "DLP",
		PositionBucket: "DMCM",
		MustHave:       map[string]float64{"min_minutes": 900},
		Weights: map[string]float64{
			"passes_att_p90":      1,
			"prog_passes_p90":     1,
			"fouls_committed_neg": 2,
		},
		NegativeMetrics: []string{"fouls_committed_neg"},
	})
	if err != nil {
		panic(err)
	}
	return r
}

func record(id, bucket string, minutes float64, pct map[string]float64) model.Record {
	return model.Record{
		Key:            model.Key{PlayerTeamSeasonID: id, PlayerID: id, TeamID: "t", League: "L", Season: "S"},
		PositionBucket: bucket,
		Minutes:        model.Float(minutes),
		Percentiles:    pct,
	}
}

func dataset(pcts []string, rows ...model.Record) *model.Dataset {
	ds := model.NewDataset(rows, append(append([]string{}, model.IdentityColumns...), "position_bucket", "minutes"))
	for _, p := range pcts {
		ds.AddPercentileColumn(p)
	}
	return ds
}

func score(ds *model.Dataset, id, role string) (float64, bool) {
	for i := range ds.Rows {
		if ds.Rows[i].PlayerTeamSeasonID == id {
			return ds.Rows[i].Score(role)
		}
	}
	return 0, false
}

func TestRoleScorer_Score(t *testing.T) {
	ctx := context.Background()
	all := []string{"passes_att_p90", "prog_passes_p90", "fouls_p90"}

	Convey("Given a DLP role and three midfielders", t, func() {
		full := map[string]float64{"passes_att_p90": 80, "prog_passes_p90": 60, "fouls_p90": 30}
		ds := dataset(all,
			record("a", "DMCM", 1800, full),
			record("b", "DMCM", 850, full),
			record("c", "CB", 1800, full),
		)
		scorer := scoring.NewRoleScorer()

		Convey("When scoring", func() {
			out, reports, err := scorer.Score(ctx, ds, []roles.Role{dlp()})
			So(err, ShouldBeNil)

			Convey("Then the eligible row gets the weighted mean with inverted negatives", func() {
				v, ok := score(out, "a", "DLP")
				So(ok, ShouldBeTrue)
				// (80 + 60 + 2*(100-30)) / 4
				So(v, ShouldAlmostEqual, 70.0, 1e-9)
			})

			Convey("Then a row under min_minutes is null", func() {
				_, ok := score(out, "b", "DLP")
				So(ok, ShouldBeFalse)
			})

			Convey("Then a row in another bucket is null", func() {
				_, ok := score(out, "c", "DLP")
				So(ok, ShouldBeFalse)
			})

			Convey("Then the report counts the pool", func() {
				So(reports, ShouldHaveLength, 1)
				So(reports[0].Eligible, ShouldEqual, 1)
				So(reports[0].Scored, ShouldEqual, 1)
				So(reports[0].Skipped, ShouldBeEmpty)
				So(reports[0].Degraded, ShouldBeFalse)
				So(out.HasScore("DLP"), ShouldBeTrue)
			})

			Convey("Then the input dataset is untouched", func() {
				So(ds.HasScore("DLP"), ShouldBeFalse)
				_, ok := score(ds, "a", "DLP")
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a dataset without one weight's percentile column", t, func() {
		pct := map[string]float64{"passes_att_p90": 80, "prog_passes_p90": 60}
		ds := dataset([]string{"passes_att_p90", "prog_passes_p90"}, record("a", "DMCM", 1800, pct))

		Convey("When scoring", func() {
			out, reports, err := scoring.NewRoleScorer().Score(ctx, ds, []roles.Role{dlp()})
			So(err, ShouldBeNil)

			Convey("Then the absent feature drops out of numerator and denominator", func() {
				v, ok := score(out, "a", "DLP")
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 70.0, 1e-9)
				So(reports[0].Skipped, ShouldResemble, []string{"fouls_committed_neg"})
			})
		})
	})

	Convey("Given a present column with a null cell", t, func() {
		ds := dataset(all, record("a", "DMCM", 1800, map[string]float64{"passes_att_p90": 80, "prog_passes_p90": 60}))

		Convey("When scoring", func() {
			out, _, err := scoring.NewRoleScorer().Score(ctx, ds, []roles.Role{dlp()})
			So(err, ShouldBeNil)

			Convey("Then the row's score is null", func() {
				_, ok := score(out, "a", "DLP")
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given no weight feature is available", t, func() {
		ds := dataset(nil, record("a", "DMCM", 1800, nil))

		Convey("When scoring", func() {
			out, reports, err := scoring.NewRoleScorer().Score(ctx, ds, []roles.Role{dlp()})
			So(err, ShouldBeNil)

			Convey("Then every score is null and the role is degraded", func() {
				_, ok := score(out, "a", "DLP")
				So(ok, ShouldBeFalse)
				So(reports[0].Degraded, ShouldBeTrue)
				So(reports[0].Eligible, ShouldEqual, 1)
				So(reports[0].Scored, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then scoring fails", func() {
			_, _, err := scoring.NewRoleScorer().Score(cctx, dataset(nil), []roles.Role{dlp()})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEligible(t *testing.T) {
	Convey("Given a role with a metric must-have", t, func() {
		r, err := roles.Resolve(roles.Definition{
			RoleID:         "X",
			PositionBucket: "CB",
			MustHave:       map[string]float64{"aerial_win_pct_min": 50},
			Weights:        map[string]float64{"clr_p90": 1},
		})
		So(err, ShouldBeNil)

		Convey("Then a missing value fails the threshold", func() {
			row := record("a", "CB", 1000, nil)
			So(scoring.Eligible(&row, r), ShouldBeFalse)
		})

		Convey("Then a value at the minimum passes", func() {
			row := record("a", "CB", 1000, nil)
			row.Metrics = map[string]float64{"aerial_win_pct": 50}
			So(scoring.Eligible(&row, r), ShouldBeTrue)
		})
	})
}
