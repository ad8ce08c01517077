// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil checks here.
//
// Determinism & Performance:
//  - All checks are pure and deterministic. Only IsReducedRowEchelon allocates.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil *Dense stored in the interface is also rejected.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is square (Rows == Cols).
// Assumes m is non-nil. Returns *DimensionError (unwraps to ErrNonSquare).
// Complexity: O(1).
func ValidateSquare(m Matrix) error {
	if m.Rows() != m.Cols() {
		return &DimensionError{Rows: m.Rows(), Cols: m.Cols()}
	}

	return nil
}

// ValidateRows checks a [][]float64 grid against the matrix contract:
// at least one row, at least one column, all rows the same length.
// Returns *MalformedInputError (unwraps to ErrMalformed) on the first violation.
// Complexity: O(r).
func ValidateRows(rows [][]float64) error {
	if len(rows) == 0 {
		return &MalformedInputError{Row: -1}
	}
	want := len(rows[0])
	if want == 0 {
		return &MalformedInputError{Row: 0}
	}
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != want {
			return &MalformedInputError{Row: i, Want: want, Got: len(rows[i])}
		}
	}

	return nil
}

// ValidateFinite scans m for NaN/±Inf and reports the first hit in i→j order.
// Complexity: O(r*c).
func ValidateFinite(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if d, ok := m.(*Dense); ok {
		for off, v := range d.data {
			if isNonFinite(v) {
				return denseErrorf(ctxAt, off/d.c, off%d.c, ErrNaNInf)
			}
		}

		return nil
	}
	var i, j int
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return err
			}
			if isNonFinite(v) {
				return denseErrorf(ctxAt, i, j, ErrNaNInf)
			}
		}
	}

	return nil
}

// IsReducedRowEchelon reports whether m satisfies the RREF guarantees within tol:
//   - every nonzero row has a leading entry equal to 1;
//   - leading columns strictly increase with the row index;
//   - a leading 1 is the only nonzero entry in its column;
//   - all-zero rows sit below every nonzero row.
//
// Complexity: O(r*c).
func IsReducedRowEchelon(m Matrix, tol float64) (bool, error) {
	if err := ValidateNotNil(m); err != nil {
		return false, err
	}
	d, err := toDense(m)
	if err != nil {
		return false, err
	}

	lastLead := -1
	seenZeroRow := false
	var i, j, k int
	for i = 0; i < d.r; i++ {
		lead := -1
		row := d.row(i)
		for j = 0; j < d.c; j++ {
			if math.Abs(row[j]) > tol {
				lead = j
				break
			}
		}
		if lead < 0 {
			seenZeroRow = true
			continue
		}
		// A nonzero row below a zero row, a non-unit lead, or a lead that does
		// not move right all break the form.
		if seenZeroRow || lead <= lastLead || math.Abs(row[lead]-1) > tol {
			return false, nil
		}
		for k = 0; k < d.r; k++ {
			if k != i && math.Abs(d.data[k*d.c+lead]) > tol {
				return false, nil
			}
		}
		lastLead = lead
	}

	return true, nil
}

// Equal reports whether a and b share a shape and agree element-wise within tol.
// Complexity: O(r*c).
func Equal(a, b Matrix, tol float64) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, err
	}
	if err := ValidateNotNil(b); err != nil {
		return false, err
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false, nil
	}
	var i, j int
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			x, err := a.At(i, j)
			if err != nil {
				return false, err
			}
			y, err := b.At(i, j)
			if err != nil {
				return false, err
			}
			if !(math.Abs(x-y) <= tol) {
				return false, nil
			}
		}
	}

	return true, nil
}
