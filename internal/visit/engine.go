package visit

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
)

// DefaultMaxDepth bounds nested VisitInner and ContinueVisit calls.
const DefaultMaxDepth = 512

// Engine resolves expression trees against an ordered rule list.
type Engine struct {
	rules    []Registration
	byKind   map[expr.Kind][]int
	logger   *slog.Logger
	passIDs  PassIDGenerator
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules appends rules. Registration order across all WithRules options
// is the order rules are tried in.
func WithRules(regs ...Registration) Option {
	return func(e *Engine) {
		e.rules = append(e.rules, regs...)
	}
}

// WithLogger sets the logger for pass and firing events.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPassIDs sets the pass id generator.
//
// Default: UUIDv7Generator
// Use NewFixedGenerator in tests that compare logs or traces.
func WithPassIDs(g PassIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.passIDs = g
		}
	}
}

// WithMaxDepth sets the recursion limit.
//
// Default: 512 (DefaultMaxDepth)
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// New builds an engine. Rule names must be unique and non-empty.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:   slog.Default(),
		passIDs:  UUIDv7Generator{},
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.maxDepth < 1 {
		return nil, fmt.Errorf("max depth must be positive, got %d", e.maxDepth)
	}

	e.byKind = make(map[expr.Kind][]int)
	seen := make(map[string]bool, len(e.rules))
	for i, reg := range e.rules {
		if strings.TrimSpace(reg.name) == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if !reg.valid {
			return nil, fmt.Errorf("rule %q: rule is nil", reg.name)
		}
		if seen[reg.name] {
			return nil, fmt.Errorf("rule %q: registered twice", reg.name)
		}
		seen[reg.name] = true
		e.byKind[reg.kind] = append(e.byKind[reg.kind], i)
	}

	return e, nil
}

// Rules returns rule names in registration order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, reg := range e.rules {
		names[i] = reg.name
	}
	return names
}

// Firing records one rule handling one node.
type Firing struct {
	Rule    string
	Kind    expr.Kind
	Depth   int
	Changed bool
}

// Result is the outcome of a successful pass.
type Result struct {
	Root    expr.Node
	PassID  string
	Firings []Firing
}

// Normalize resolves root under c. On failure it returns a nil tree and
// the first error raised; no partial result is produced.
func (e *Engine) Normalize(root expr.Node, c *ambient.Context) (expr.Node, error) {
	res, err := e.Run(root, c)
	if err != nil {
		return nil, err
	}
	return res.Root, nil
}

// Run is Normalize with the pass id and the firings that produced the
// result.
func (e *Engine) Run(root expr.Node, c *ambient.Context) (*Result, error) {
	p := &pass{id: e.passIDs.Generate()}

	e.logger.Debug("normalization pass starting",
		"pass_id", p.id,
		"rules", len(e.rules),
		"capabilities", c.Capabilities(),
	)

	out, err := e.resolve(p, root, c, nil, 0)
	if err != nil {
		e.logger.Error("normalization pass failed",
			"pass_id", p.id,
			"firings", len(p.firings),
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("normalization pass finished",
		"pass_id", p.id,
		"firings", len(p.firings),
		"changed", out != root,
	)

	return &Result{Root: out, PassID: p.id, Firings: p.firings}, nil
}

// pass is the mutable state of one Normalize call. A pass runs on a single
// goroutine.
type pass struct {
	id      string
	firings []Firing
}

func (e *Engine) resolve(p *pass, n expr.Node, c *ambient.Context, excluded []int, depth int) (expr.Node, error) {
	if n == nil {
		return nil, &RuntimeError{
			Code:    ErrCodeInvalidNode,
			Message: "cannot resolve a nil node",
			PassID:  p.id,
		}
	}
	if depth > e.maxDepth {
		return nil, newDepthError(p.id, depth, e.maxDepth)
	}
	return n.Accept(&dispatcher{engine: e, pass: p, excluded: excluded, depth: depth}, c)
}

// dispatcher receives the node's callback from Accept. It carries the
// per-resolution state rules see through their Scope.
type dispatcher struct {
	engine   *Engine
	pass     *pass
	excluded []int
	depth    int
}

func (d *dispatcher) VisitConstant(n expr.ConstantNode, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitSource(n expr.SourceNode, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitSelection(n expr.SelectionNode, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitOrder(n expr.OrderNode, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitProjection(n expr.ProjectionNode, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitComparison(n *expr.Comparison, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

func (d *dispatcher) VisitConjunction(n *expr.Conjunction, c *ambient.Context) (expr.Node, error) {
	return dispatch(d, n, c)
}

// dispatch offers n to the rules registered for its variant, in order, and
// returns the first accepting rule's result.
func dispatch[N expr.Node](d *dispatcher, n N, c *ambient.Context) (expr.Node, error) {
	e := d.engine
	var self expr.Node = n
	kind := self.Kind()

	for _, id := range e.byKind[kind] {
		if slices.Contains(d.excluded, id) {
			continue
		}
		reg := e.rules[id]
		rule, ok := reg.binding.(Rule[N])
		if !ok || !rule.Accepts(n) {
			continue
		}

		slot := len(d.pass.firings)
		d.pass.firings = append(d.pass.firings, Firing{Rule: reg.name, Kind: kind, Depth: d.depth})

		out, err := rule.Visit(n, c, &Scope{d: d, rule: id})
		if err != nil {
			return nil, newRuleError(d.pass.id, reg.name, kind.String(), err)
		}
		if out == nil {
			return nil, &RuntimeError{
				Code:    ErrCodeInvalidResult,
				Message: "rule returned no node",
				PassID:  d.pass.id,
				Rule:    reg.name,
				Kind:    kind.String(),
			}
		}

		changed := out != self
		d.pass.firings[slot].Changed = changed
		e.logger.Debug("rule fired",
			"pass_id", d.pass.id,
			"rule", reg.name,
			"kind", kind.String(),
			"depth", d.depth,
			"changed", changed,
		)
		return out, nil
	}

	return self, nil
}
