package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/matcalc/matrix"
)

func TestParseOperation(t *testing.T) {
	for in, want := range map[string]matrix.Operation{
		"determinant": matrix.OpDeterminant,
		"DET":         matrix.OpDeterminant,
		" rref ":      matrix.OpRREF,
		"RREF":        matrix.OpRREF,
	} {
		got, err := matrix.ParseOperation(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := matrix.ParseOperation("inverse")
	require.ErrorIs(t, err, matrix.ErrUnknownOperation)
}

func TestEvaluate(t *testing.T) {
	res, err := matrix.Evaluate(matrix.OpDeterminant, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	require.Equal(t, matrix.OpDeterminant, res.Op)
	require.InDelta(t, -2, res.Determinant, 1e-12)
	require.Nil(t, res.Matrix)

	res, err = matrix.Evaluate(matrix.OpRREF, [][]float64{{1, 2}, {2, 4}})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {0, 0}}, res.Matrix)

	_, err = matrix.Evaluate(matrix.OpDeterminant, [][]float64{{1, 2}})
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	_, err = matrix.Evaluate(matrix.OpRREF, [][]float64{})
	require.ErrorIs(t, err, matrix.ErrMalformed)

	_, err = matrix.Evaluate(matrix.Operation("trace"), [][]float64{{1}})
	require.ErrorIs(t, err, matrix.ErrUnknownOperation)
}

func TestFacades_ErrorPriority(t *testing.T) {
	// Malformed wins over non-square: a ragged grid never reaches the square check.
	_, err := matrix.Determinant([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrMalformed)
	require.NotErrorIs(t, err, matrix.ErrNonSquare)

	_, err = matrix.ReducedRowEchelonForm([][]float64{{}})
	require.ErrorIs(t, err, matrix.ErrMalformed)
}
