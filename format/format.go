// Package format renders engine results for display.
//
// Rounding happens here and nowhere else: the engine returns full-precision
// values and front ends pick the display precision (DefaultDigits unless
// configured otherwise).
package format

import (
	"math"
	"strconv"
	"strings"
)

// DefaultDigits is the display precision of determinants and RREF cells.
const DefaultDigits = 4

// maxExact bounds the values printed through the integer branch of Value;
// beyond it float64 cannot tell neighbouring integers apart.
const maxExact = 1 << 53

// Round rounds v to digits decimals, half away from zero. -0 comes back as 0;
// NaN and ±Inf pass through.
func Round(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if math.Abs(v) >= maxExact {
		// Already integral; scaling would only lose bits.
		return v
	}
	if digits < 0 {
		digits = 0
	}
	p := math.Pow(10, float64(digits))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}

	return r
}

// Value prints integers bare and everything else with at most digits
// decimals, trailing zeros trimmed: 2 -> "2", 0.1 -> "0.1", 1/3 -> "0.3333".
func Value(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < maxExact {
		return strconv.FormatFloat(Round(v, 0), 'f', -1, 64)
	}
	s := strconv.FormatFloat(Round(v, digits), 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}

	return s
}

// Fixed prints v with exactly digits decimals and a leading space in place
// of a sign for non-negative values, so columns line up: " 1.0000", "-2.5000".
func Fixed(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	s := strconv.FormatFloat(Round(v, digits), 'f', digits, 64)
	if strings.HasPrefix(s, "-") {
		return s
	}

	return " " + s
}

// Grid renders rows as Fixed cells, tab-separated, one line per row.
func Grid(rows [][]float64, digits int) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(Fixed(v, digits))
		}
	}

	return b.String()
}

// RoundGrid returns a rounded copy of rows.
func RoundGrid(rows [][]float64, digits int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = Round(v, digits)
		}
	}

	return out
}
