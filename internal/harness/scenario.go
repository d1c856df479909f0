package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qnorm/internal/expr"
)

// Scenario defines a normalization scenario: a tree, the providers it
// refers to, and what normalizing it on behalf of one provider must yield.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Provider names the provider running the pass. Empty runs the pass
	// with no provider bound.
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	// PassID is a fixed pass id for deterministic traces.
	// If empty, defaults to "test-pass-default".
	PassID string `yaml:"pass_id,omitempty" json:"pass_id,omitempty"`

	// MaxDepth overrides the engine recursion limit when positive.
	MaxDepth int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`

	// Providers declares the fake providers nodes may refer to.
	Providers []ProviderSpec `yaml:"providers" json:"providers"`

	// Tree is the tree to normalize.
	Tree *NodeSpec `yaml:"tree" json:"tree"`

	// Expect is the required outcome.
	Expect Expectation `yaml:"expect" json:"expect"`
}

// ProviderSpec declares a fake provider.
type ProviderSpec struct {
	Name string `yaml:"name" json:"name"`

	// Rows is the canned result of every execution.
	Rows []map[string]any `yaml:"rows,omitempty" json:"rows,omitempty"`

	// Error makes every execution fail with this message.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Expectation is the required outcome of a scenario. Exactly one of Tree
// and Error is set.
type Expectation struct {
	// Tree is the expected normalized tree.
	Tree *NodeSpec `yaml:"tree,omitempty" json:"tree,omitempty"`

	// Error is the expected error code (e.g. "MISSING_STATE").
	Error string `yaml:"error,omitempty" json:"error,omitempty"`

	// Executions is the expected number of executions per provider.
	// Providers not listed are not checked.
	Executions map[string]int `yaml:"executions,omitempty" json:"executions,omitempty"`
}

// NodeSpec describes one node. Kind selects which other fields apply.
type NodeSpec struct {
	Kind string `yaml:"kind" json:"kind"`

	// Name is the source name (source, repository).
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Provider is the serving provider (repository, query).
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	// Input is the set-valued child (selection, order, projection) or the
	// deferred expression (query).
	Input *NodeSpec `yaml:"input,omitempty" json:"input,omitempty"`

	// Where is the predicate (selection).
	Where *NodeSpec `yaml:"where,omitempty" json:"where,omitempty"`

	// By lists sort keys, most significant first (order).
	By []SortSpec `yaml:"by,omitempty" json:"by,omitempty"`

	// Fields lists kept fields (projection).
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Field, Op and Operand form a comparison (compare).
	Field   string    `yaml:"field,omitempty" json:"field,omitempty"`
	Op      string    `yaml:"op,omitempty" json:"op,omitempty"`
	Operand *NodeSpec `yaml:"operand,omitempty" json:"operand,omitempty"`

	// Terms are the conjoined predicates (and).
	Terms []*NodeSpec `yaml:"terms,omitempty" json:"terms,omitempty"`

	// Value is a scalar or a list of scalars (constant).
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Rows is a set of rows (constant).
	Rows []map[string]any `yaml:"rows,omitempty" json:"rows,omitempty"`
}

// SortSpec is one sort key.
type SortSpec struct {
	Field string `yaml:"field" json:"field"`
	Desc  bool   `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// Node kinds accepted in scenarios.
const (
	NodeSource     = "source"
	NodeRepository = "repository"
	NodeQuery      = "query"
	NodeConstant   = "constant"
	NodeSelection  = "selection"
	NodeOrder      = "order"
	NodeProjection = "projection"
	NodeCompare    = "compare"
	NodeAnd        = "and"
)

var nodeKinds = []string{
	NodeSource, NodeRepository, NodeQuery, NodeConstant,
	NodeSelection, NodeOrder, NodeProjection, NodeCompare, NodeAnd,
}

// scenarioSchema closes the CUE form of a scenario so typos are rejected the
// way KnownFields rejects them in YAML.
const scenarioSchema = `
#Sort: {
	field: string
	desc?: bool
}

#Node: {
	kind:      "source" | "repository" | "query" | "constant" | "selection" | "order" | "projection" | "compare" | "and"
	name?:     string
	provider?: string
	input?:    #Node
	where?:    #Node
	by?: [...#Sort]
	fields?: [...string]
	field?:   string
	op?:      string
	operand?: #Node
	terms?: [...#Node]
	value?: _
	rows?: [...{...}]
}

#Provider: {
	name:   string
	rows?: [...{...}]
	error?: string
}

#Scenario: {
	name:        string
	description: string
	provider?:   string
	pass_id?:    string
	max_depth?:  int
	providers: [...#Provider]
	tree: #Node
	expect: {
		tree?:  #Node
		error?: string
		executions?: {[string]: int}
	}
}
`

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// evaluated as CUE; anything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if filepath.Ext(path) == ".cue" {
		scenario, err = parseCUE(data, path)
	} else {
		scenario, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// FindScenarios returns the scenario files in dir, sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".cue":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func parseCUE(data []byte, path string) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", formatCUEError(err))
	}

	value = schema.LookupPath(cue.ParsePath("#Scenario")).Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", formatCUEError(err))
	}

	var scenario Scenario
	if err := value.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", formatCUEError(err))
	}
	return &scenario, nil
}

// formatCUEError keeps the first CUE error and prefixes its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		return fmt.Errorf("%s:%d:%d: %w", pos.Filename(), pos.Line(), pos.Column(), first)
	}
	return first
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}

	names := make(map[string]bool, len(s.Providers))
	for i, p := range s.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("providers[%d]: duplicate provider %q", i, p.Name)
		}
		names[p.Name] = true
	}

	if s.Provider != "" && !names[s.Provider] {
		return fmt.Errorf("provider %q is not declared", s.Provider)
	}

	if s.Tree == nil {
		return fmt.Errorf("tree is required")
	}
	if err := validateNode("tree", s.Tree, names); err != nil {
		return err
	}

	hasTree, hasError := s.Expect.Tree != nil, s.Expect.Error != ""
	if hasTree == hasError {
		return fmt.Errorf("expect: exactly one of tree and error is required")
	}
	if hasTree {
		if err := validateNode("expect.tree", s.Expect.Tree, names); err != nil {
			return err
		}
	}
	for name := range s.Expect.Executions {
		if !names[name] {
			return fmt.Errorf("expect.executions: provider %q is not declared", name)
		}
	}

	return nil
}

// validateNode checks field presence per kind. Type rules (what may be an
// input or a predicate) are left to the expression constructors.
func validateNode(path string, n *NodeSpec, providers map[string]bool) error {
	if n == nil {
		return fmt.Errorf("%s: node is required", path)
	}
	if !slices.Contains(nodeKinds, n.Kind) {
		return fmt.Errorf("%s: unknown kind %q (want one of %s)", path, n.Kind, strings.Join(nodeKinds, ", "))
	}

	switch n.Kind {
	case NodeSource:
		if n.Name == "" {
			return fmt.Errorf("%s: name is required for source", path)
		}
	case NodeRepository:
		if n.Name == "" {
			return fmt.Errorf("%s: name is required for repository", path)
		}
		if !providers[n.Provider] {
			return fmt.Errorf("%s: provider %q is not declared", path, n.Provider)
		}
	case NodeQuery:
		if !providers[n.Provider] {
			return fmt.Errorf("%s: provider %q is not declared", path, n.Provider)
		}
		return validateNode(path+".input", n.Input, providers)
	case NodeConstant:
		if (n.Value == nil) == (n.Rows == nil) {
			return fmt.Errorf("%s: exactly one of value and rows is required for constant", path)
		}
	case NodeSelection:
		if err := validateNode(path+".input", n.Input, providers); err != nil {
			return err
		}
		return validateNode(path+".where", n.Where, providers)
	case NodeOrder:
		if len(n.By) == 0 {
			return fmt.Errorf("%s: by is required for order", path)
		}
		return validateNode(path+".input", n.Input, providers)
	case NodeProjection:
		if len(n.Fields) == 0 {
			return fmt.Errorf("%s: fields is required for projection", path)
		}
		return validateNode(path+".input", n.Input, providers)
	case NodeCompare:
		if n.Field == "" {
			return fmt.Errorf("%s: field is required for compare", path)
		}
		if !expr.Operator(n.Op).Valid() {
			return fmt.Errorf("%s: unknown operator %q", path, n.Op)
		}
		return validateNode(path+".operand", n.Operand, providers)
	case NodeAnd:
		if len(n.Terms) == 0 {
			return fmt.Errorf("%s: terms is required for and", path)
		}
		for i, term := range n.Terms {
			if err := validateNode(fmt.Sprintf("%s.terms[%d]", path, i), term, providers); err != nil {
				return err
			}
		}
	}

	return nil
}
