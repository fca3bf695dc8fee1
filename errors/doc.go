// Package errors provides structured error types for class file decoding.
//
// Errors carry a Phase (where in decoding), a Kind (what went wrong), the
// byte offset into the input buffer where applicable, and optional path,
// value and cause context. Two errors match under errors.Is when their
// Phase and Kind are equal, so callers can probe for a failure class
// without string matching:
//
//	if errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindTypeMismatch}) {
//	    // an index resolved to the wrong entry kind
//	}
//
// IsKind matches on Kind alone, across phases.
package errors
