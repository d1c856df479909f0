package testutil

import (
	"slices"
	"sync"

	"github.com/roach88/qnorm/internal/expr"
)

// Provider is a fake query provider that records every tree it executes and
// answers with a canned result.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Provider struct {
	mu     sync.Mutex
	name   string
	result any
	err    error
	calls  []expr.Node
}

// NewProvider creates a provider named name that returns nil results until
// told otherwise.
func NewProvider(name string) *Provider {
	return &Provider{name: name}
}

// Name implements normalize.Provider.
func (p *Provider) Name() string {
	return p.name
}

// Returns sets the result of every later Execute call.
func (p *Provider) Returns(result any) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result = result
	p.err = nil
	return p
}

// Fails makes every later Execute call fail with err.
func (p *Provider) Fails(err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	return p
}

// Execute implements normalize.Provider.
func (p *Provider) Execute(n expr.Node) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, n)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// Calls returns the executed trees in call order.
func (p *Provider) Calls() []expr.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// Reset forgets recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
