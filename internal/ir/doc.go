// Package ir defines the canonical value model used to describe expression
// trees.
//
// Every node in internal/expr can describe itself as an IRObject. The
// description is serialized with MarshalCanonical (RFC 8785 ordering, NFC
// strings, no HTML escaping) and hashed with domain separation, so two
// structurally equal trees always produce the same bytes and the same
// fingerprint. Golden traces in internal/harness are built from the same
// bytes.
//
// Floats are not part of the model. Callers that need to describe a float
// render it as a string first.
package ir
