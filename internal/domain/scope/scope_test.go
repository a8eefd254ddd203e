package scope_test

import (
	"errors"
	"testing"

	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGet(t *testing.T) {
	Convey("Given the scope registry", t, func() {
		Convey("When looking up league_season", func() {
			s, err := scope.Get(scope.LeagueSeason)

			Convey("Then it groups by league, season and bucket", func() {
				So(err, ShouldBeNil)
				So(s.Name, ShouldEqual, "league_season")
				So(s.GroupColumns, ShouldResemble, []string{"league", "season", "position_bucket"})
			})
		})

		Convey("When looking up the global scope", func() {
			s, err := scope.Get(scope.MultiLeagueMultiSeason)

			Convey("Then it is still bucketed", func() {
				So(err, ShouldBeNil)
				So(s.GroupColumns, ShouldResemble, []string{"position_bucket"})
			})
		})

		Convey("When looking up an unknown name", func() {
			_, err := scope.Get("per_team")

			Convey("Then it fails with the offending name", func() {
				So(errors.Is(err, scope.ErrUnknownScope), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"per_team"`)
				So(err.Error(), ShouldContainSubstring, "league_multi_season")
			})
		})

		Convey("When mutating a returned scope", func() {
			s, _ := scope.Get(scope.LeagueSeason)
			s.GroupColumns[0] = "team_id"
			again, _ := scope.Get(scope.LeagueSeason)

			Convey("Then the registry is unaffected", func() {
				So(again.GroupColumns[0], ShouldEqual, "league")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Validate accepts registered names and rejects others", t, func() {
		So(scope.Validate(scope.Names()...), ShouldBeNil)
		So(errors.Is(scope.Validate("league_season", "nope"), scope.ErrUnknownScope), ShouldBeTrue)
	})
}
