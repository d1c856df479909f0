// Package expr defines the immutable expression tree that qnorm normalizes.
//
// ARCHITECTURE:
//
// A tree describes a query logically: where the entities come from (Source),
// how they are filtered (Selection with Comparison/Conjunction predicates),
// ordered (Order with an OrderCriterion chain) and projected (Projection).
// Constant nodes embed values, including deferred queries that have been
// built against some provider but not executed yet.
//
//	[client code] → [expr tree] → [visit.Engine + rules] → [normalized tree] → [backend]
//
// TYPED NODES:
//
// Every node is an Expression[R], where R is the Go type the node denotes
// once evaluated. Set-valued nodes denote Sequence[E]; predicates denote
// bool. The type parameter makes ill-typed trees unrepresentable at compile
// time: an Order[Customer] cannot be built over a Source[Invoice].
//
// SEALED VARIANTS:
//
// The set of node kinds is closed. Expression carries an unexported marker
// method, so only types in this package implement it, and each variant
// dispatches to its own Visitor method from Accept:
//
//	switch n.Kind() {
//	case KindConstant:    // ConstantNode
//	case KindSource:      // SourceNode
//	case KindSelection:   // SelectionNode
//	case KindOrder:       // OrderNode
//	case KindProjection:  // ProjectionNode
//	case KindComparison:  // *Comparison
//	case KindConjunction: // *Conjunction
//	}
//
// Generic variants also satisfy a non-generic view (ConstantNode, OrderNode,
// ...) so a visitor can handle every instantiation of a variant with one
// method.
//
// IMMUTABILITY:
//
// Constructors validate required children and return an error instead of a
// half-built node. Nodes have no setters; ThenBy and the With* rebuilders
// return new nodes and share unchanged children. A rebuilder given exactly
// the children the node already has returns the receiver, so a pass that
// changes nothing returns the original tree.
//
// Equality is structural (Equal); Fingerprint hashes the canonical
// description of a tree for cheap comparison and golden traces.
package expr
