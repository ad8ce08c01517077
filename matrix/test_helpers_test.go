// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for the kernels.
//   • Keep random data seeded so every run sees the same matrices.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/matcalc/matrix"
)

// tol is the element-wise tolerance for results that pass through division.
const tol = 1e-9

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing the kernels onto their At-based fallback path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err, "NewDense(%d,%d)", r, c)

	return m
}

// MustFromRows builds a *Dense from a literal grid or fails the test.
func MustFromRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err, "At(%d,%d)", i, j)

	return v
}

// RequireRowsInDelta compares two grids element-wise within delta.
func RequireRowsInDelta(t *testing.T, want, got [][]float64, delta float64) {
	t.Helper()
	require.Len(t, got, len(want), "row count")
	for i := range want {
		require.Len(t, got[i], len(want[i]), "row %d length", i)
		for j := range want[i] {
			require.InDelta(t, want[i][j], got[i][j], delta, "cell (%d,%d)", i, j)
		}
	}
}

// RandomRows returns an r×c grid of uniform values in [-10, 10).
func RandomRows(rng *rand.Rand, r, c int) [][]float64 {
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = rng.Float64()*20 - 10
		}
	}

	return out
}

// CopyRows deep-copies a grid.
func CopyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = append([]float64(nil), rows[i]...)
	}

	return out
}

// IdentityRows returns I_n as a grid.
func IdentityRows(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}

	return out
}

// relDelta scales an absolute tolerance by the magnitude of want.
func relDelta(want float64) float64 {
	if want < 0 {
		want = -want
	}
	if want < 1 {
		return tol
	}

	return tol * want
}
