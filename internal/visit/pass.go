package visit

import (
	"sync"

	"github.com/google/uuid"
)

// PassIDGenerator issues the identifier logged with every rule firing of a
// normalization pass.
type PassIDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-sortable UUIDv7 pass ids.
// It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined pass ids, for deterministic tests and
// golden traces. Once the list is exhausted it keeps returning the last id.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator returns a generator yielding ids in order.
// With no ids it always yields "pass-fixed".
func NewFixedGenerator(ids ...string) *FixedGenerator {
	if len(ids) == 0 {
		ids = []string{"pass-fixed"}
	}
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
