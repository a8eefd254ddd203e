// Package scope holds the static registry of percentile scopes: the grouping
// dimensions a percentile rank is computed within.
package scope

import (
	"fmt"
	"strings"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// Scope names.
const (
	LeagueSeason           = "league_season"
	LeagueMultiSeason      = "league_multi_season"
	MultiLeagueSeason      = "multi_league_season"
	MultiLeagueMultiSeason = "multi_league_multi_season"

	// Default is the scope role scores are computed in.
	Default = LeagueSeason
)

// Scope is a named grouping configuration.
type Scope struct {
	Name         string
	GroupColumns []string
}

var registry = []Scope{ //nolint:gochecknoglobals // static registry
	// compare within league+season, bucketed
	{Name: LeagueSeason, GroupColumns: []string{model.ColLeague, model.ColSeason, model.ColPositionBucket}},
	// within league across seasons
	{Name: LeagueMultiSeason, GroupColumns: []string{model.ColLeague, model.ColPositionBucket}},
	// across leagues within a season
	{Name: MultiLeagueSeason, GroupColumns: []string{model.ColSeason, model.ColPositionBucket}},
	// global pool, still bucketed
	{Name: MultiLeagueMultiSeason, GroupColumns: []string{model.ColPositionBucket}},
}

// Get looks a scope up by name.
func Get(name string) (Scope, error) {
	for _, s := range registry {
		if s.Name == name {
			return Scope{Name: s.Name, GroupColumns: append([]string(nil), s.GroupColumns...)}, nil
		}
	}
	return Scope{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownScope, name, strings.Join(Names(), ", "))
}

// Names lists registered scopes in registry order.
func Names() []string {
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.Name
	}
	return out
}

// Validate checks every name against the registry.
func Validate(names ...string) error {
	for _, n := range names {
		if _, err := Get(n); err != nil {
			return err
		}
	}
	return nil
}
