// SPDX-License-Identifier: MIT
// Package matrix - elimination kernels (RREF, determinant, rank, inverse).
//
// Purpose:
//   - Implement partial-pivoting row reduction exactly once (eliminate) and
//     derive every public kernel from it by choosing a sweep mode.
//   - Keep inputs immutable: each kernel works on a private *Dense copy.
//
// Determinism:
//   - Fixed col→row loop order; pivot ties resolve to the lowest row index.
//   - No allocation inside the sweep apart from the pivot column record.

package matrix

import (
	"fmt"
	"math"
)

// Operation tags for unified error wrapping.
const (
	opRREF        = "RREF"
	opDeterminant = "Det"
	opRank        = "Rank"
	opInverse     = "Inverse"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// sweep selects what eliminate produces.
type sweep uint8

const (
	// sweepReduce runs full Gauss–Jordan: unit pivots, column cleared above and below.
	sweepReduce sweep = iota
	// sweepTriangular runs forward elimination only and accumulates sign*Πpivots.
	sweepTriangular
)

// pivotState is the transient cursor of one elimination run.
type pivotState struct {
	row, col  int     // next pivot row; current column
	sign      float64 // ±1, flipped on every row swap (triangular sweep)
	product   float64 // running product of pivots (triangular sweep)
	singular  bool    // triangular sweep hit an all-zero column
	pivotCols []int   // leading column of each pivot row, ascending
}

// eliminate runs partial-pivoting elimination on d in place.
//
// Implementation:
//   - Stage 1: for col = 0..c-1 while row < r, pick the largest |entry| in
//     column col among rows row..r-1 (first occurrence wins ties).
//   - Stage 2: |pivot| <= eps marks a free column. Reduce: flush the
//     candidates to 0 and move on without advancing row. Triangular: the
//     matrix is singular; stop.
//   - Stage 3: swap the pivot row up. Reduce: scale it to a unit pivot and
//     clear the column in every other row. Triangular: accumulate the pivot
//     and clear the column below.
//   - Stage 4 (reduce): normalize -0 to +0 across the buffer.
//
// Behavior highlights:
//   - Pivot cells end exactly 1 and cleared cells exactly 0.
//   - NaN pivots are not "zero" (NaN <= eps is false), so NaN spreads to
//     the output where the caller can see it.
//
// Complexity:
//   - Time O(r*c*min(r,c)), Space O(min(r,c)) for pivotCols.
func eliminate(d *Dense, mode sweep, eps float64) pivotState {
	st := pivotState{sign: 1, product: 1}
	r, c := d.r, d.c
	data := d.data

	var i, j, p int
	var pv, f float64
	for st.col = 0; st.col < c; st.col++ {
		if st.row >= r {
			break
		}

		p = pickPivot(d, st.row, st.col)
		pv = data[p*c+st.col]
		if math.Abs(pv) <= eps {
			if mode == sweepTriangular {
				st.singular = true
				st.product = 0

				return st
			}
			for i = st.row; i < r; i++ {
				data[i*c+st.col] = 0
			}
			continue
		}

		if p != st.row {
			d.swapRows(p, st.row)
			st.sign = -st.sign
		}
		pr := d.row(st.row)

		switch mode {
		case sweepTriangular:
			st.product *= pv
			for i = st.row + 1; i < r; i++ {
				ri := d.row(i)
				f = ri[st.col] / pv
				ri[st.col] = 0
				if f == 0 {
					continue
				}
				for j = st.col + 1; j < c; j++ {
					ri[j] -= f * pr[j]
				}
			}
		default:
			for j = st.col + 1; j < c; j++ {
				pr[j] /= pv
			}
			pr[st.col] = 1
			for i = 0; i < r; i++ {
				if i == st.row {
					continue
				}
				ri := d.row(i)
				f = ri[st.col]
				ri[st.col] = 0
				if f == 0 {
					continue
				}
				for j = st.col + 1; j < c; j++ {
					ri[j] -= f * pr[j]
				}
			}
		}

		st.pivotCols = append(st.pivotCols, st.col)
		st.row++
	}

	if mode == sweepReduce {
		for i = range data {
			if data[i] == 0 {
				data[i] = 0 // drops the sign of -0
			}
		}
	}

	return st
}

// pickPivot returns the row in [from, r) holding the largest |d[row][col]|.
// Strict '>' keeps the first occurrence on ties.
func pickPivot(d *Dense, from, col int) int {
	best := from
	bestAbs := math.Abs(d.data[from*d.c+col])
	var a float64
	for i := from + 1; i < d.r; i++ {
		a = math.Abs(d.data[i*d.c+col])
		if a > bestAbs {
			best, bestAbs = i, a
		}
	}

	return best
}

// prepare copies m into a private *Dense and applies the ingestion policy.
func prepare(m Matrix, o Options) (*Dense, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, err
	}
	if o.validateNaNInf {
		if err = ValidateFinite(d); err != nil {
			return nil, err
		}
	}
	d.validateNaNInf = o.validateNaNInf

	return d, nil
}

// RREF returns the Reduced Row Echelon Form of m as a new *Dense.
//
// Implementation:
//   - Stage 1: ValidateNotNil; copy m (input is never mutated); policy check.
//   - Stage 2: eliminate with sweepReduce.
//
// Behavior highlights:
//   - Total over rectangular finite input: singular or rank-deficient
//     matrices yield zero rows at the bottom, never an error.
//
// Errors:
//   - ErrNilMatrix; ErrNaNInf under the validating policy; ErrInvalidDimensions
//     for a foreign Matrix reporting an empty shape.
//
// Complexity:
//   - Time O(r*c*min(r,c)), Space O(r*c).
func RREF(m Matrix, opts ...Option) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRREF, err)
	}
	o := gatherOptions(opts...)
	d, err := prepare(m, o)
	if err != nil {
		return nil, matrixErrorf(opRREF, err)
	}
	eliminate(d, sweepReduce, o.eps)

	return d, nil
}

// Det returns the determinant of the square matrix m.
//
// Implementation:
//   - Stage 1: ValidateNotNil, ValidateSquare before any copy, so a shape
//     error leaves nothing computed.
//   - Stage 2: eliminate with sweepTriangular on a private copy.
//   - Stage 3: sign * Πpivots, or exactly 0 when a column had no usable pivot.
//
// Errors:
//   - ErrNilMatrix; *DimensionError (ErrNonSquare); ErrNaNInf under the policy.
//
// Notes:
//   - No rounding here. Display precision belongs to the presentation layer.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Det(m Matrix, opts ...Option) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opDeterminant, err)
	}
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opDeterminant, err)
	}
	o := gatherOptions(opts...)
	d, err := prepare(m, o)
	if err != nil {
		return 0, matrixErrorf(opDeterminant, err)
	}

	st := eliminate(d, sweepTriangular, o.eps)
	if st.singular {
		return 0, nil
	}

	return st.sign * st.product, nil
}

// Rank returns the number of pivot rows found by the Gauss–Jordan sweep.
// Complexity: O(r*c*min(r,c)).
func Rank(m Matrix, opts ...Option) (int, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opRank, err)
	}
	o := gatherOptions(opts...)
	d, err := prepare(m, o)
	if err != nil {
		return 0, matrixErrorf(opRank, err)
	}

	return len(eliminate(d, sweepReduce, o.eps).pivotCols), nil
}

// Inverse computes A^{-1} by Gauss–Jordan reduction of the augmented [A | I].
//
// Implementation:
//   - Stage 1: validate non-nil and square; copy A into the left half of an
//     n×2n buffer and I into the right half.
//   - Stage 2: eliminate with sweepReduce.
//   - Stage 3: A is invertible iff the first n pivots sit in columns 0..n-1;
//     the right half is then A^{-1}.
//
// Errors:
//   - ErrNilMatrix; *DimensionError; ErrNaNInf; ErrSingular.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Inverse(m Matrix, opts ...Option) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	o := gatherOptions(opts...)
	a, err := prepare(m, o)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	n := a.r
	aug, err := NewDense(n, 2*n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	var i int
	for i = 0; i < n; i++ {
		row := aug.row(i)
		copy(row[:n], a.row(i))
		row[n+i] = 1
	}

	st := eliminate(aug, sweepReduce, o.eps)
	if len(st.pivotCols) < n || st.pivotCols[n-1] != n-1 {
		return nil, matrixErrorf(opInverse, ErrSingular)
	}

	inv, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	inv.validateNaNInf = o.validateNaNInf
	for i = 0; i < n; i++ {
		copy(inv.row(i), aug.row(i)[n:])
	}

	return inv, nil
}
