package ddcouple

import "errors"

// Failure classes for the coupling layer. Callers dispatch with errors.Is;
// the wrapped message carries the specifics.
var (
	// ErrGeometric reports a geometric mismatch: interface entities that
	// should coincide with subdomain surface entities but do not.
	ErrGeometric = errors.New("geometric mismatch")

	// ErrStructural reports inconsistent mesh or space structure: bad
	// indices, duplicated adjacency, conflicting correspondences.
	ErrStructural = errors.New("structural inconsistency")

	// ErrExternalSolver reports a failure in a delegated factorization or
	// iterative solve.
	ErrExternalSolver = errors.New("external solver failure")
)
