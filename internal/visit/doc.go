// Package visit implements the composite visitor engine that drives
// normalization.
//
// An Engine owns an ordered list of rules. Each rule is registered for
// exactly one node variant (OnConstant, OnOrder, ...), which is the
// type-level half of matching; the rule's Accepts method is the
// instance-level half. For every node the engine walks the rules registered
// for the node's variant in registration order and hands the node to the
// first rule that accepts it. A node no rule accepts is returned unchanged.
//
// Resolution uses double dispatch: the engine calls node.Accept with a
// per-resolution dispatcher, and the node calls back the Visitor method for
// its own variant, so rules receive statically typed nodes and the engine
// never inspects node types itself.
//
// RECURSION:
//
// Rules recurse through the Scope they are given:
//   - VisitInner resolves a child as a fresh root.
//   - ContinueVisit resolves a node with the current rule excluded, along
//     with every rule already excluded for the node being resolved. Rules
//     whose output can match their own Accepts use it to hand the node on
//     to later rules without matching themselves again.
//
// FAILURES:
//
// A pass is all or nothing. The first rule error aborts the pass and
// Normalize returns it as a *RuntimeError (wrapping the rule's own error)
// together with a nil tree.
//
// CONCURRENCY:
//
// The rule list is fixed by New and never modified. Per-pass state lives in
// the dispatcher and the ambient context, so one Engine may run any number
// of passes concurrently.
package visit
