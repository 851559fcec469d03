package engine

import "time"

// ============================================================================
// ENGINE — snapshot + filter state + full recomputation
// ============================================================================
// Single-threaded, synchronous, pull-based: Recompute is a pure function of
// the current snapshot and filter state and always returns fresh result
// structures. Nothing here blocks, suspends, or locks; callers that share
// an Engine across goroutines serialize access themselves.
// ============================================================================

// Engine owns one snapshot and the mutable filter state.
type Engine struct {
	snap    *Snapshot
	filters Filters
	clock   func() time.Time
}

// Option configures engine behavior via functional options pattern.
type Option func(*Engine)

// WithClock injects the time source used for the default filter window and
// the delay ranking. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New creates an engine over snap with the default 90-day filter window.
func New(snap *Snapshot, opts ...Option) *Engine {
	e := &Engine{snap: snap, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.filters = DefaultFilters(e.clock())
	return e
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// ReplaceSnapshot swaps in a freshly loaded snapshot.
func (e *Engine) ReplaceSnapshot(snap *Snapshot) { e.snap = snap }

// Filters returns the current filter state.
func (e *Engine) Filters() Filters { return e.filters }

// SetFilters replaces the whole filter state in one step. Multi-field
// edits go through here so no recomputation ever observes a partially
// updated state.
func (e *Engine) SetFilters(f Filters) { e.filters = f }

// Reset restores the default trailing 90-day window and clears every
// other predicate, as a single atomic replacement.
func (e *Engine) Reset() { e.filters = DefaultFilters(e.clock()) }

// Single-field mutations, one per user action.

func (e *Engine) SetDateFrom(v string)       { e.filters.DateFrom = v }
func (e *Engine) SetDateTo(v string)         { e.filters.DateTo = v }
func (e *Engine) SetClassification(v string) { e.filters.Classification = v }
func (e *Engine) SetStatus(v string)         { e.filters.Status = v }
func (e *Engine) SetReferred(v string)       { e.filters.Referred = v }
func (e *Engine) SetAgentCode(v string)      { e.filters.AgentCode = v }
func (e *Engine) SetProvince(v string)       { e.filters.Province = v }

// Recompute runs the filter engine and every aggregator against the
// current inputs and returns a fresh dashboard. Previous results are
// never patched.
func (e *Engine) Recompute() *Dashboard {
	interactions, clients := Apply(e.snap, e.filters)
	return &Dashboard{
		Filters:  e.filters,
		Overview: BuildOverview(interactions, e.snap),
		Clients:  BuildClientStats(clients, interactions),
		Agents:   BuildAgentStats(e.snap, interactions, clients, e.filters.AgentCode, e.clock()),
		Geo:      BuildGeoStats(e.snap),
	}
}

// Filtered returns the current filtered pair without recomputing the
// aggregators; the table endpoints use it.
func (e *Engine) Filtered() ([]Interaction, []Client) {
	return Apply(e.snap, e.filters)
}
