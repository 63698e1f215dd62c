package details

import (
	"context"

	"github.com/mmcdole/marquee/internal/domain"
)

// Ticket identifies one detail request
type Ticket struct {
	Gen    uint64
	ItemID string
}

// Loader tracks which item the overlay currently wants details for.
// Results are applied only for the most recently requested item.
type Loader struct {
	agg *Aggregator
	gen domain.Generation

	current domain.Details
	loaded  bool
}

// NewLoader creates a loader around agg
func NewLoader(agg *Aggregator) *Loader {
	return &Loader{agg: agg}
}

// Begin supersedes any outstanding request and returns the ticket for item
func (l *Loader) Begin(item domain.MediaItem) Ticket {
	l.loaded = false
	return Ticket{Gen: l.gen.Next(), ItemID: item.ID}
}

// Fetch runs the aggregator. It is safe to call off the UI goroutine.
func (l *Loader) Fetch(ctx context.Context, item domain.MediaItem) domain.Details {
	return l.agg.Fetch(ctx, item)
}

// Apply stores d if t is still the latest ticket and reports whether it did
func (l *Loader) Apply(t Ticket, d domain.Details) bool {
	if !l.gen.IsCurrent(t.Gen) {
		return false
	}
	l.current = d
	l.loaded = true
	return true
}

// Current returns the applied details for the latest request
func (l *Loader) Current() (domain.Details, bool) {
	return l.current, l.loaded
}
