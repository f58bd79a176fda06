package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/roach88/linkage/internal/config"
	"github.com/roach88/linkage/internal/metrics"
	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// Store is the persistence contract the engine depends on.
// Implemented by store.Store (SQLite) and store.Memory.
//
// ListGroupIDs must enumerate in ascending id order.
type Store interface {
	ListGroupIDs(ctx context.Context) ([]string, error)
	LoadGroup(ctx context.Context, id string) ([]record.Record, error)
	LoadProfile(ctx context.Context, id string) (store.Profile, error)
	SaveGroup(ctx context.Context, id string, members []record.Record) error
	SaveProfile(ctx context.Context, id string, p store.Profile) error
	SaveGroupWithProfile(ctx context.Context, id string, members []record.Record, p store.Profile) error
	Clear(ctx context.Context) error
}

// Engine files batches of records into groups.
//
// Thread-safety model:
//   - Run/RunFresh: safe from any goroutine; batches are serialized
//   - the Store must not be written by anything else while a batch runs
type Engine struct {
	mu sync.Mutex

	store     Store
	weights   map[string]float64
	threshold float64
	ids       GroupIDGenerator
	clock     *Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithIDGenerator sets the generator for new group ids.
// Default: UUIDv7Generator.
func WithIDGenerator(g GroupIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine over s using cfg's weights and threshold.
//
// The weights map is copied, so later changes to cfg do not affect the
// engine.
func New(s Store, cfg config.Config, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("new engine: nil store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	e := &Engine{
		store:     s,
		weights:   maps.Clone(cfg.Weights),
		threshold: cfg.Threshold,
		ids:       UUIDv7Generator{},
		clock:     NewClock(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Result summarizes one batch.
type Result struct {
	// Batch is the engine's sequence number for this batch, starting at 1.
	Batch int64 `json:"batch"`
	// GroupsFormed counts groups created by this batch.
	GroupsFormed int `json:"groups_formed"`
	// GroupsTotal counts all groups in the store after the batch.
	GroupsTotal int `json:"groups_total"`
	// Assigned counts records filed into a group.
	Assigned int `json:"assigned"`
	// Comparisons counts weighted field comparisons made while scoring.
	Comparisons int `json:"comparisons"`
	// Skipped lists records dropped before matching.
	Skipped []*RecordError `json:"skipped"`
	// Orphans lists records with no anchor group.
	Orphans []*RecordError `json:"orphans"`
	// Groups maps every group id to its members after the batch.
	Groups map[string][]record.Record `json:"-"`
}

// Run files records on top of the groups already in the store.
//
// Record-level problems (no key, no anchor) never fail the batch; they are
// reported in the Result. A store error or context cancellation stops the
// batch. Records filed before the stop stay persisted.
func (e *Engine) Run(ctx context.Context, records []record.Record) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run(ctx, records)
}

// RunFresh clears the store, then runs the batch exactly like Run.
func (e *Engine) RunFresh(ctx context.Context, records []record.Record) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("run fresh: %w", err)
	}
	e.logger.Info("store cleared")

	return e.run(ctx, records)
}

func (e *Engine) run(ctx context.Context, records []record.Record) (*Result, error) {
	start := time.Now()
	defer e.metrics.ObserveBatch(start)
	seq := e.clock.Next()

	st, err := loadState(ctx, e.store)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("state loaded", "batch", seq, "groups", len(st.ids), "records", len(records))

	b := &batch{engine: e, st: st, res: &Result{
		Batch:   seq,
		Skipped: []*RecordError{},
		Orphans: []*RecordError{},
	}}
	work := b.intake(records)

	for _, p := range b.passes() {
		before := work.Len()
		err := work.drain(func(pd *pending) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return p.claim(ctx, pd)
		})
		if err != nil {
			return nil, fmt.Errorf("pass %s: %w", p.name, err)
		}
		e.logger.Debug("pass complete",
			"pass", p.name,
			"claimed", before-work.Len(),
			"pending", work.Len(),
		)
	}

	for _, p := range work.items {
		b.orphan(p)
	}

	b.res.GroupsTotal = len(st.ids)
	b.res.Groups = st.snapshot()

	e.logger.Info("batch complete",
		"batch", seq,
		"records", len(records),
		"assigned", b.res.Assigned,
		"groups_formed", b.res.GroupsFormed,
		"groups_total", b.res.GroupsTotal,
		"comparisons", b.res.Comparisons,
		"skipped", len(b.res.Skipped),
		"orphans", len(b.res.Orphans),
	)
	return b.res, nil
}
