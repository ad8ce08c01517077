// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set and typed contract errors.
// All kernels return these sentinels (optionally wrapped with an operation
// tag) and tests match them via errors.Is / errors.As. No kernel panics on
// user-triggered error conditions.

package matrix

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap with matrixErrorf(op, err) so the
// outer message reads "<Op>: matrix: ...", and errors.Is still matches.
//
// ERROR PRIORITY (enforced in tests):
// nil -> malformed shape -> NaN/Inf -> non-square -> singular.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy (ingestion, Set).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	// Always delivered inside a *DimensionError.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrMalformed signals a grid that violates the rectangular contract:
	// zero rows, zero columns, or rows of different lengths.
	// Always delivered inside a *MalformedInputError.
	ErrMalformed = errors.New("matrix: malformed input")

	// ErrSingular is returned by Inverse when the matrix has no inverse.
	// Det and RREF never return it: singular input is a valid result there.
	ErrSingular = errors.New("matrix: singular matrix")
)

// DimensionError reports a square-only operation invoked on a non-square matrix.
// It unwraps to ErrNonSquare.
type DimensionError struct {
	Rows, Cols int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: got %dx%d", ErrNonSquare.Error(), e.Rows, e.Cols)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *DimensionError) Unwrap() error { return ErrNonSquare }

// MalformedInputError reports a [][]float64 grid that is not a valid matrix.
// Row is the offending row index (-1 when the grid itself is empty);
// Want/Got are the expected and observed row lengths.
type MalformedInputError struct {
	Row       int
	Want, Got int
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Row < 0:
		return ErrMalformed.Error() + ": no rows"
	case e.Got == 0 && e.Want == 0:
		return fmt.Sprintf("%s: row %d is empty", ErrMalformed.Error(), e.Row)
	default:
		return fmt.Sprintf("%s: row %d has %d columns, want %d", ErrMalformed.Error(), e.Row, e.Got, e.Want)
	}
}

// Unwrap exposes the sentinel for errors.Is.
func (e *MalformedInputError) Unwrap() error { return ErrMalformed }
