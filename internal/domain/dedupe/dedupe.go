// Package dedupe enforces the one-row-per-grain rule on the metric table.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rberkkaratas/recruitment-support/internal/domain/model"
)

// Deduper records seen grain keys so each is accepted once.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64
}

// inMemoryDeduper implements Deduper with a mutex-guarded set.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	capacity int
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, max(d.capacity, 0))
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the number of distinct keys recorded.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// KeyFunc extracts the grain key of a row.
type KeyFunc func(r *model.Record) string

// ByPlayerTeamSeason keys rows on player_team_season_id.
func ByPlayerTeamSeason(r *model.Record) string { return r.PlayerTeamSeasonID }

// Rows keeps the first row for every key and returns the dropped duplicates'
// keys in input order. ds is not modified.
func Rows(ctx context.Context, d Deduper, ds *model.Dataset, key KeyFunc) (*model.Dataset, []model.Key) {
	keep := make([]int, 0, ds.Len())
	var dropped []model.Key
	for i := range ds.Rows {
		if d.SeenAndRecord(ctx, key(&ds.Rows[i])) {
			dropped = append(dropped, ds.Rows[i].Key)
			continue
		}
		keep = append(keep, i)
	}
	return ds.Subset(keep), dropped
}
