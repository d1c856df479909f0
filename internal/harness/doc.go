// Package harness runs normalization scenarios: declarative trees,
// fake providers, and the outcome normalizing the tree must have.
//
// # Scenario Format
//
// Scenarios are YAML files (unknown fields rejected):
//
//	name: inline_same_provider
//	description: "A same-provider query is inlined"
//	provider: local
//	providers:
//	  - name: local
//	  - name: remote
//	    rows:
//	      - { name: ada, age: 36 }
//	tree:
//	  kind: selection
//	  input:
//	    kind: query
//	    provider: local
//	    input: { kind: repository, provider: local, name: customers }
//	  where: { kind: compare, field: age, op: ">=", operand: { kind: constant, value: 18 } }
//	expect:
//	  tree: { ... }          # or: error: MISSING_STATE
//	  executions: { remote: 0 }
//
// The same structure may be written in CUE (a .cue file); it is unified with
// a closed schema before decoding, so misspelled fields fail there too.
//
// # Node Kinds
//
//   - source: a named source (name)
//   - repository: a provider's repository of a source (provider, name)
//   - query: a deferred query on a provider (provider, input)
//   - constant: a scalar, list of scalars, or rows (value | rows)
//   - selection, order, projection: set operators (input plus where | by | fields)
//   - compare, and: predicates
//
// Scenario entities are rows (expr.Row), so every set-valued node denotes
// expr.Sequence[expr.Row].
//
// # Deterministic Testing
//
// Every run uses a fixed pass id (scenario.pass_id, or "test-pass-default")
// and fresh providers, so traces are identical across runs and can be
// compared against golden files with RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/inline.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
