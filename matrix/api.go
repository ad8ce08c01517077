// SPDX-License-Identifier: MIT
// Package matrix: public API facades.
//
// Purpose:
//   - Provide thin entry points over plain [][]float64 grids for front ends
//     (CLI, HTTP) that never touch *Dense directly.
//   - Keep the logic in one place: each facade validates the grid, then
//     delegates to the canonical kernel in impl_elimination.go.
//
// Determinism & Policy:
//   - Facades never change the loop orders or numeric policy of the kernels.
//   - Grids are copied on the way in and on the way out.

package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned by ParseOperation for names other than
// "determinant"/"det" and "rref".
var ErrUnknownOperation = errors.New("matrix: unknown operation")

// ReducedRowEchelonForm returns the RREF of a rectangular grid.
//
// Errors:
//   - *MalformedInputError for empty or ragged grids.
//   - ErrNaNInf for non-finite cells under the default policy.
//
// Complexity: O(r*c*min(r,c)).
func ReducedRowEchelonForm(rows [][]float64, opts ...Option) ([][]float64, error) {
	d, err := NewDenseFromRows(rows, opts...)
	if err != nil {
		return nil, matrixErrorf(opRREF, err)
	}
	out, err := RREF(d, opts...)
	if err != nil {
		return nil, err
	}

	return out.ToRows(), nil
}

// Determinant returns the determinant of a square grid.
//
// Errors:
//   - *MalformedInputError for empty or ragged grids.
//   - ErrNaNInf for non-finite cells under the default policy.
//   - *DimensionError when the grid is not square.
//
// Complexity: O(n^3).
func Determinant(rows [][]float64, opts ...Option) (float64, error) {
	d, err := NewDenseFromRows(rows, opts...)
	if err != nil {
		return 0, matrixErrorf(opDeterminant, err)
	}

	return Det(d, opts...)
}

// InverseOf returns the inverse of a square grid. ErrSingular when none exists.
func InverseOf(rows [][]float64, opts ...Option) ([][]float64, error) {
	d, err := NewDenseFromRows(rows, opts...)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	inv, err := Inverse(d, opts...)
	if err != nil {
		return nil, err
	}

	return inv.ToRows(), nil
}

// ParseOperation maps a user-supplied name onto an Operation.
// Accepts "determinant", "det" and "rref" in any case.
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "determinant", "det":
		return OpDeterminant, nil
	case "rref":
		return OpRREF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// Result carries the outcome of Evaluate. Exactly one of Determinant
// (OpDeterminant) or Matrix (OpRREF) is meaningful.
type Result struct {
	Op          Operation
	Determinant float64
	Matrix      [][]float64
}

// Evaluate runs op on rows. It is the single switch point front ends use to
// pick between the two computations.
func Evaluate(op Operation, rows [][]float64, opts ...Option) (Result, error) {
	switch op {
	case OpDeterminant:
		det, err := Determinant(rows, opts...)
		if err != nil {
			return Result{}, err
		}

		return Result{Op: op, Determinant: det}, nil
	case OpRREF:
		out, err := ReducedRowEchelonForm(rows, opts...)
		if err != nil {
			return Result{}, err
		}

		return Result{Op: op, Matrix: out}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}
}
