package comparables_test

import (
	"math"
	"testing"

	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const role = "DLP"

var feats = []string{"passes_att_p90", "xa_p90", "fouls_p90"}

func player(id, league string, score *float64, pct map[string]float64) model.Record {
	r := model.Record{
		Key:            model.Key{PlayerTeamSeasonID: id, PlayerID: "p" + id, TeamID: "t" + id, League: league, Season: "2023-2024"},
		PositionBucket: "DMCM",
		Minutes:        model.Float(1500),
		Percentiles:    pct,
		Scores:         map[string]float64{},
	}
	if score != nil {
		r.Scores[role] = *score
	}
	return r
}

func pool(rows ...model.Record) *model.Dataset {
	ds := model.NewDataset(rows, append(append([]string{}, model.IdentityColumns...), "position_bucket", "minutes"))
	for _, f := range feats {
		ds.AddPercentileColumn(f)
	}
	ds.AddScoreColumn(role)
	return ds
}

func request(topN int) comparables.Request {
	return comparables.Request{
		RoleID:          role,
		TopN:            topN,
		Features:        feats,
		Invert:          []string{"fouls_p90"},
		ComparisonScope: "league_season",
		PctScope:        "league_season",
	}
}

func TestBuild(t *testing.T) {
	Convey("Given a pool of exactly two eligible players", t, func() {
		ds := pool(
			player("a", "EPL", model.Float(70), map[string]float64{"passes_att_p90": 90, "xa_p90": 20, "fouls_p90": 40}),
			player("b", "LaLiga", model.Float(60), map[string]float64{"passes_att_p90": 30, "xa_p90": 70, "fouls_p90": 60}),
			player("c", "EPL", nil, map[string]float64{"passes_att_p90": 50, "xa_p90": 50, "fouls_p90": 50}),
		)

		Convey("When building with top_n=10", func() {
			edges := comparables.Build(ds, request(10))

			Convey("Then each anchor gets exactly one neighbour", func() {
				So(edges, ShouldHaveLength, 2)
				So(edges[0].Anchor.PlayerTeamSeasonID, ShouldEqual, "a")
				So(edges[0].Comp.PlayerTeamSeasonID, ShouldEqual, "b")
				So(edges[1].Anchor.PlayerTeamSeasonID, ShouldEqual, "b")
				So(edges[1].Comp.PlayerTeamSeasonID, ShouldEqual, "a")
				So(edges[0].Rank, ShouldEqual, 1)
			})

			Convey("Then cross-context flags and labels are set", func() {
				So(edges[0].DifferentLeague, ShouldBeTrue)
				So(edges[0].DifferentSeason, ShouldBeFalse)
				So(edges[0].RoleID, ShouldEqual, role)
				So(edges[0].ComparisonScope, ShouldEqual, "league_season")
			})

			Convey("Then three reason codes are emitted", func() {
				So(edges[0].Reasons, ShouldHaveLength, 3)
				for _, r := range edges[0].Reasons {
					So(r, ShouldNotContainSubstring, "pct_")
				}
			})
		})
	})

	Convey("Given a larger pool", t, func() {
		score := model.Float(50)
		ds := pool(
			player("a", "EPL", score, map[string]float64{"passes_att_p90": 90, "xa_p90": 20, "fouls_p90": 40}),
			player("b", "EPL", score, map[string]float64{"passes_att_p90": 85, "xa_p90": 25, "fouls_p90": 45}),
			player("c", "EPL", score, map[string]float64{"passes_att_p90": 10, "xa_p90": 95, "fouls_p90": 90}),
			player("d", "EPL", score, map[string]float64{"passes_att_p90": 50, "xa_p90": 55, "fouls_p90": 10}),
			player("e", "EPL", score, map[string]float64{"xa_p90": 60}),
		)

		Convey("When building with top_n=3", func() {
			edges := comparables.Build(ds, request(3))

			Convey("Then no edge points at its own anchor", func() {
				So(edges, ShouldHaveLength, 15)
				for _, e := range edges {
					So(e.Comp, ShouldNotResemble, e.Anchor)
				}
			})

			Convey("Then ranks are dense per anchor and distances ascend", func() {
				byAnchor := map[string][]comparables.Edge{}
				for _, e := range edges {
					byAnchor[e.Anchor.PlayerTeamSeasonID] = append(byAnchor[e.Anchor.PlayerTeamSeasonID], e)
				}
				for _, es := range byAnchor {
					for k, e := range es {
						So(e.Rank, ShouldEqual, k+1)
						So(e.Distance, ShouldBeGreaterThanOrEqualTo, 0)
						if k > 0 {
							So(e.Distance, ShouldBeGreaterThanOrEqualTo, es[k-1].Distance)
						}
					}
				}
			})

			Convey("Then the most similar profile is ranked first", func() {
				So(edges[0].Anchor.PlayerTeamSeasonID, ShouldEqual, "a")
				So(edges[0].Comp.PlayerTeamSeasonID, ShouldEqual, "b")
			})
		})
	})

	Convey("Given a pool with a missing cell beside extreme non-pool rows", t, func() {
		score := model.Float(50)
		ds := pool(
			player("x", "EPL", nil, map[string]float64{"passes_att_p90": 0, "fouls_p90": 0}),
			player("y", "EPL", nil, map[string]float64{"passes_att_p90": 0, "fouls_p90": 0}),
			player("a", "EPL", score, map[string]float64{"passes_att_p90": 10, "fouls_p90": 80}),
			player("b", "EPL", score, map[string]float64{"passes_att_p90": 30}),
			player("c", "EPL", score, map[string]float64{"passes_att_p90": 90, "fouls_p90": 10}),
		)
		req := request(2)
		req.Features = []string{"passes_att_p90", "fouls_p90"}

		Convey("When building", func() {
			edges := comparables.Build(ds, req)
			So(edges, ShouldHaveLength, 6)

			Convey("Then the gap is filled with the pool median and scales to the centre", func() {
				// b sits at the median of both columns only when the fill
				// ignores x and y, so it is orthogonal to everyone.
				So(edges[0].Comp.PlayerTeamSeasonID, ShouldEqual, "b")
				So(edges[0].Distance, ShouldEqual, 1)
				So(edges[2].Anchor.PlayerTeamSeasonID, ShouldEqual, "b")
				So(edges[2].Distance, ShouldEqual, 1)
				So(edges[3].Distance, ShouldEqual, 1)
			})

			Convey("Then robust-scaled cosine distance has the known value", func() {
				// a=(-0.5,-1), c=(1.5,1) after median/IQR scaling.
				So(edges[1].Anchor.PlayerTeamSeasonID, ShouldEqual, "a")
				So(edges[1].Comp.PlayerTeamSeasonID, ShouldEqual, "c")
				So(edges[1].Distance, ShouldAlmostEqual, 1+1.75/math.Sqrt(1.25*3.25), 1e-9)
				So(edges[5].Distance, ShouldAlmostEqual, edges[1].Distance, 1e-12)
			})

			Convey("Then reason directions follow the inverted feature", func() {
				// a has the higher raw fouls percentile but reads lower once flipped.
				So(edges[5].Anchor.PlayerTeamSeasonID, ShouldEqual, "c")
				So(edges[5].Comp.PlayerTeamSeasonID, ShouldEqual, "a")
				So(edges[5].Reasons, ShouldResemble, []string{"passes_att_p90:lower", "fouls_p90:lower"})
				So(edges[0].Reasons, ShouldResemble, []string{"fouls_p90:higher", "passes_att_p90:higher"})
			})
		})
	})

	Convey("Given soft failure conditions", t, func() {
		one := pool(player("a", "EPL", model.Float(50), map[string]float64{"xa_p90": 1}))

		Convey("Then a pool of one yields nothing", func() {
			So(comparables.Build(one, request(10)), ShouldBeEmpty)
		})

		Convey("Then a missing score column yields nothing", func() {
			req := request(10)
			req.RoleID = "WCR"
			So(comparables.Build(one, req), ShouldBeEmpty)
		})

		Convey("Then features absent from the data yield nothing", func() {
			req := request(10)
			req.Features = []string{"clr_p90"}
			So(comparables.Build(one, req), ShouldBeEmpty)
		})

		Convey("Then missing identity columns yield nothing", func() {
			ds := model.NewDataset(one.Rows, []string{"player_id"})
			ds.AddScoreColumn(role)
			ds.AddPercentileColumn("xa_p90")
			So(comparables.Build(ds, request(10)), ShouldBeEmpty)
		})
	})
}

func TestDistanceMatrix(t *testing.T) {
	Convey("Given scaled feature rows", t, func() {
		x := [][]float64{
			{1, 0, 2},
			{0.5, -1, 3},
			{-2, 4, 0.1},
			{0, 0, 0},
		}

		Convey("When computing distances", func() {
			d := comparables.DistanceMatrix(x)

			Convey("Then the matrix is symmetric with a zero diagonal", func() {
				for i := range d {
					So(d[i][i], ShouldEqual, 0)
					for j := range d {
						So(math.Abs(d[i][j]-d[j][i]), ShouldBeLessThan, 1e-12)
						So(d[i][j], ShouldBeBetweenOrEqual, 0, 2)
					}
				}
			})

			Convey("Then a zero-norm row sits at distance one", func() {
				So(d[3][0], ShouldEqual, 1)
				So(d[3][2], ShouldEqual, 1)
			})
		})
	})
}

func TestReasonCodes(t *testing.T) {
	Convey("Given anchor and comparable vectors", t, func() {
		names := []string{"a", "b", "c", "d"}
		anchor := []float64{0, 0, 0, 0}
		comp := []float64{1, -2, 1, 0}

		Convey("Then the largest gaps win and ties keep feature order", func() {
			So(comparables.ReasonCodes(anchor, comp, names, 3), ShouldResemble, []string{"b:lower", "a:higher", "c:higher"})
		})

		Convey("Then a zero gap reads lower", func() {
			So(comparables.ReasonCodes(anchor, anchor, names[:1], 3), ShouldResemble, []string{"a:lower"})
		})
	})
}
