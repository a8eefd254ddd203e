package roles_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	. "github.com/smartystreets/goconvey/convey"
)

func minimal() roles.Definition {
	return roles.Definition{
		RoleID:         "TST",
		PositionBucket: "CB",
		MustHave:       map[string]float64{"min_minutes": 900, "pass_cmp_pct_min": 80},
		Weights:        map[string]float64{"pass_cmp_pct": 0.5, "errors_or_dispossessed_neg": 0.5},
		NegativeMetrics: []string{
			"errors_or_dispossessed_neg",
		},
		InvertFeatures: []string{"errors_p90"},
		Security:       []string{"pass_cmp_pct", "errors_p90"},
	}
}

func TestResolve(t *testing.T) {
	Convey("Given a minimal role definition", t, func() {
		d := minimal()

		Convey("When resolving it", func() {
			r, err := roles.Resolve(d)

			Convey("Then keys resolve to canonical metrics in key order", func() {
				So(err, ShouldBeNil)
				So(r.ID, ShouldEqual, "TST")
				So(r.Bucket, ShouldEqual, "CB")
				So(r.Weights, ShouldResemble, []roles.Feature{
					{Key: "errors_or_dispossessed_neg", Metric: "errors_p90", Weight: 0.5, Negative: true},
					{Key: "pass_cmp_pct", Metric: "pass_cmp_pct", Weight: 0.5},
				})
				So(r.MustHaves, ShouldResemble, []roles.Threshold{
					{Metric: model.ColMinutes, Min: 900},
					{Metric: "pass_cmp_pct", Min: 80},
				})
			})
		})

		Convey("When a weight key cannot be resolved", func() {
			d.Weights["made_up_metric"] = 0.1
			_, err := roles.Resolve(d)

			Convey("Then the error names the key", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "made_up_metric")
			})
		})

		Convey("When a negative metric carries no weight", func() {
			d.NegativeMetrics = append(d.NegativeMetrics, "fouls_committed_neg")
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			})
		})

		Convey("When a must-have key has no _min suffix", func() {
			d.MustHave["pass_cmp_pct"] = 1
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "must_have")
			})
		})

		Convey("When the security pair has no inverted feature", func() {
			d.Security = []string{"pass_cmp_pct", "clr_p90"}
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			})
		})

		Convey("When more than five evidence metrics are listed", func() {
			d.Evidence = []string{"pass_cmp_pct", "clr_p90", "xa_p90", "sca_p90", "fouls_p90", "errors_p90"}
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			})
		})

		Convey("When weights are empty", func() {
			d.Weights = nil
			d.NegativeMetrics = nil
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			})
		})

		Convey("When a subscore category is unknown", func() {
			d.Subscores = map[string][]string{"vibes": {"clr_p90"}}
			_, err := roles.Resolve(d)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			})
		})
	})
}

func TestResolveAll(t *testing.T) {
	Convey("Given two definitions with the same id", t, func() {
		_, err := roles.ResolveAll([]roles.Definition{minimal(), minimal()})

		Convey("Then the duplicate is rejected", func() {
			So(errors.Is(err, roles.ErrInvalidRole), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "duplicate")
		})
	})
}

func TestDefaults(t *testing.T) {
	Convey("Given the built-in roles", t, func() {
		rs, err := roles.ResolveAll(roles.DefaultDefinitions())

		Convey("Then all three resolve", func() {
			So(err, ShouldBeNil)
			So(rs, ShouldHaveLength, 3)
			So(rs[0].ID, ShouldEqual, roles.BallPlayingCB)
			So(rs[1].ID, ShouldEqual, roles.DeepPlaymaker)
			So(rs[2].ID, ShouldEqual, roles.WideCarrier)
		})

		Convey("Then every role carries five evidence KPIs and a security pair", func() {
			for _, r := range roles.Defaults() {
				So(r.Evidence, ShouldHaveLength, 5)
				So(r.Security, ShouldHaveLength, 2)
			}
		})

		Convey("Then weights sum to one", func() {
			for _, r := range roles.Defaults() {
				var sum float64
				for _, w := range r.Weights {
					sum += w.Weight
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
			}
		})
	})
}

const rolesYAML = `roles:
  - role_id: CBX
    position_bucket: CB
    must_have:
      min_minutes: 600
    weights:
      clr_p90: 0.7
      errors_or_dispossessed_neg: 0.3
    negative_metrics: [errors_or_dispossessed_neg]
    features: [clr_p90, errors_p90]
    invert_features: [errors_p90]
    subscores:
      defending: [clr_p90]
    security: [clr_p90, errors_p90]
    evidence: [clr_p90]
`

func TestLoad(t *testing.T) {
	Convey("Given a role file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "roles.yaml")
		So(os.WriteFile(path, []byte(rolesYAML), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			rs, err := roles.Load(path)

			Convey("Then the role is resolved", func() {
				So(err, ShouldBeNil)
				So(rs, ShouldHaveLength, 1)
				So(rs[0].ID, ShouldEqual, "CBX")
				So(rs[0].MustHaves, ShouldResemble, []roles.Threshold{{Metric: "minutes", Min: 600}})
				So(rs[0].Subscores, ShouldResemble, []roles.Category{{Name: "defending", Features: []string{"clr_p90"}}})
			})
		})
	})

	Convey("Given a missing role file", t, func() {
		_, err := roles.Load(filepath.Join(t.TempDir(), "nope.yaml"))

		Convey("Then loading fails with ErrLoadRoles", func() {
			So(errors.Is(err, roles.ErrLoadRoles), ShouldBeTrue)
		})
	})

	Convey("Given no path", t, func() {
		rs, err := roles.LoadOrDefault("")

		Convey("Then the built-in roles are used", func() {
			So(err, ShouldBeNil)
			So(rs, ShouldHaveLength, 3)
		})
	})

	Convey("Given the example role file", t, func() {
		rs, err := roles.Load(filepath.Join("..", "..", "..", "configs", "roles.yaml"))

		Convey("Then it matches the built-in roles", func() {
			So(err, ShouldBeNil)
			defaults := roles.Defaults()
			So(rs, ShouldHaveLength, len(defaults))
			for i := range defaults {
				So(rs[i].ID, ShouldEqual, defaults[i].ID)
				So(rs[i].Bucket, ShouldEqual, defaults[i].Bucket)
				So(rs[i].MustHaves, ShouldResemble, defaults[i].MustHaves)
				So(rs[i].Weights, ShouldResemble, defaults[i].Weights)
				So(rs[i].Features, ShouldResemble, defaults[i].Features)
				So(rs[i].Evidence, ShouldResemble, defaults[i].Evidence)
			}
		})
	})
}
