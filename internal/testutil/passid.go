package testutil

// FixedPassID issues the same pass id every time.
//
// Unlike visit.FixedGenerator which returns ids in sequence, every pass run
// with FixedPassID shares one id, so repeated runs of a scenario produce
// identical logs and traces.
//
// Thread-safety: FixedPassID is stateless and safe for concurrent use.
type FixedPassID struct {
	id string
}

// NewFixedPassID creates a fixed pass id generator.
//
// If id is empty, Generate() returns "test-pass-default".
func NewFixedPassID(id string) *FixedPassID {
	if id == "" {
		id = "test-pass-default"
	}
	return &FixedPassID{id: id}
}

// Generate returns the fixed id.
//
// Implements visit.PassIDGenerator.
func (g *FixedPassID) Generate() string {
	return g.id
}
