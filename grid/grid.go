// Package grid turns user-entered text into a matrix grid.
//
// It is the input boundary in front of the elimination engine: every cell
// must be present, parse as a real number and be finite, and the grid must be
// rectangular. Errors carry the 0-based cell coordinates and print them
// 1-based for people.
package grid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/katalvlaran/matcalc/matrix"
)

var (
	// ErrMissingValue marks an empty cell.
	ErrMissingValue = errors.New("grid: please input all values")
	// ErrNotNumber marks a cell that does not parse as a real number.
	ErrNotNumber = errors.New("grid: value is not a number")
	// ErrNotFinite marks NaN, ±Inf, or a literal overflowing float64.
	ErrNotFinite = errors.New("grid: value must be finite")
	// ErrNoDims marks an empty rows or columns field.
	ErrNoDims = errors.New("grid: please enter values")
	// ErrInvalidDims marks a rows or columns field that is not a positive integer.
	ErrInvalidDims = errors.New("grid: please enter valid integers")
	// ErrTooLarge marks a grid exceeding the configured maximum dimension.
	ErrTooLarge = errors.New("grid: matrix too large")
)

// CellError reports the first bad cell of a grid.
type CellError struct {
	Row, Col int
	Text     string
	Err      error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %d (%q): %v", e.Row+1, e.Col+1, e.Text, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// ParseDims parses the rows/columns fields of a size form.
func ParseDims(rows, cols string) (int, int, error) {
	rows, cols = strings.TrimSpace(rows), strings.TrimSpace(cols)
	if rows == "" || cols == "" {
		return 0, 0, ErrNoDims
	}
	r, err := strconv.Atoi(rows)
	if err != nil || r <= 0 {
		return 0, 0, fmt.Errorf("%w: rows %q", ErrInvalidDims, rows)
	}
	c, err := strconv.Atoi(cols)
	if err != nil || c <= 0 {
		return 0, 0, fmt.Errorf("%w: columns %q", ErrInvalidDims, cols)
	}

	return r, c, nil
}

// ParseCells converts a rectangular grid of text cells into numbers.
// Shape is checked first (*matrix.MalformedInputError), then cells in
// row-major order; the first failure is returned as *CellError.
func ParseCells(cells [][]string) ([][]float64, error) {
	if err := checkShape(cells); err != nil {
		return nil, err
	}
	out := make([][]float64, len(cells))
	for i, row := range cells {
		out[i] = make([]float64, len(row))
		for j, text := range row {
			v, err := parseCell(text)
			if err != nil {
				return nil, &CellError{Row: i, Col: j, Text: text, Err: err}
			}
			out[i][j] = v
		}
	}

	return out, nil
}

// ParseText reads a grid from free text: rows are separated by ';' or
// newlines, cells by whitespace or commas. Blank rows are ignored.
//
//	ParseText("1 2; 3 4")   // [[1 2] [3 4]]
//	ParseText("1,2\n3,4\n") // [[1 2] [3 4]]
func ParseText(s string) ([][]float64, error) {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' })
	cells := make([][]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
		if len(fields) == 0 {
			continue
		}
		cells = append(cells, fields)
	}

	return ParseCells(cells)
}

// CheckSize rejects grids whose row or column count exceeds maxDim.
// maxDim <= 0 disables the check.
func CheckSize(rows [][]float64, maxDim int) error {
	if maxDim <= 0 {
		return nil
	}
	if len(rows) > maxDim {
		return fmt.Errorf("%w: %d rows, limit %d", ErrTooLarge, len(rows), maxDim)
	}
	for _, r := range rows {
		if len(r) > maxDim {
			return fmt.Errorf("%w: %d columns, limit %d", ErrTooLarge, len(r), maxDim)
		}
	}

	return nil
}

func parseCell(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrNotFinite
		}

		return 0, ErrNotNumber
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}

	return v, nil
}

func checkShape(cells [][]string) error {
	if len(cells) == 0 {
		return &matrix.MalformedInputError{Row: -1}
	}
	want := len(cells[0])
	if want == 0 {
		return &matrix.MalformedInputError{Row: 0}
	}
	for i := 1; i < len(cells); i++ {
		if len(cells[i]) != want {
			return &matrix.MalformedInputError{Row: i, Want: want, Got: len(cells[i])}
		}
	}

	return nil
}
