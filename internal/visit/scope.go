package visit

import (
	"log/slog"
	"slices"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
)

// Scope is handed to a rule for the duration of one Visit call.
// It must not be retained after Visit returns.
type Scope struct {
	d    *dispatcher
	rule int
}

// VisitInner resolves n from scratch, with every rule eligible.
// Use it for children and for nodes a rule has just built.
func (s *Scope) VisitInner(n expr.Node, c *ambient.Context) (expr.Node, error) {
	return s.d.engine.resolve(s.d.pass, n, c, nil, s.d.depth+1)
}

// ContinueVisit resolves n with the current rule excluded, on top of the
// rules already excluded for the node being visited. A rule that would
// accept its own output calls this instead of VisitInner so that resolution
// ends.
func (s *Scope) ContinueVisit(n expr.Node, c *ambient.Context) (expr.Node, error) {
	excluded := append(slices.Clip(s.d.excluded), s.rule)
	return s.d.engine.resolve(s.d.pass, n, c, excluded, s.d.depth+1)
}

// Rule returns the name of the rule being run.
func (s *Scope) Rule() string {
	return s.d.engine.rules[s.rule].name
}

// PassID returns the id of the current pass.
func (s *Scope) PassID() string {
	return s.d.pass.id
}

// Depth returns the nesting depth of the node being visited; the root is at
// depth 0.
func (s *Scope) Depth() int {
	return s.d.depth
}

// Logger returns the engine's logger.
func (s *Scope) Logger() *slog.Logger {
	return s.d.engine.logger
}
