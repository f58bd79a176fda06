package engine

import (
	"sync"

	"github.com/google/uuid"
)

// GroupIDGenerator mints ids for new groups.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type GroupIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 group ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ascending id
// order matches creation order. The engine's tie-breaking relies on
// ascending id order, which therefore favours older groups.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined group ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("g1", "g2")
//	gen.Generate() // "g1"
//	gen.Generate() // "g2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed. This is a fail-fast approach to
// catch a test that forms more groups than expected.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
