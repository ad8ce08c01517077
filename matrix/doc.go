// Package matrix is the elimination engine of matcalc.
//
// The package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked accessors and an
//     optional finite-only numeric policy.
//   - RREF / ReducedRowEchelonForm: Gauss–Jordan elimination with partial
//     pivoting, producing the Reduced Row Echelon Form of any rectangular input.
//   - Det / Determinant: partial-pivoting triangularization tracking the swap
//     sign and the product of pivots.
//   - Rank, Inverse and IsReducedRowEchelon built on the same elimination loop.
//
// Every operation works on a private copy: inputs are never mutated and no
// state survives a call, so concurrent callers never interfere.
//
// Pivot selection compares against zero exactly unless WithPivotTolerance is
// supplied; see options.go.
package matrix
