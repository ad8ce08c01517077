package grid

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrBadDocument marks a YAML/JSON document that is not a list of rows.
var ErrBadDocument = errors.New("grid: document must be a list of rows")

// documentKey is the mapping key that may wrap the rows, matching the
// {"matrix": [[...]]} request body of the HTTP API.
const documentKey = "matrix"

// Decode reads one YAML or JSON document holding a matrix, either as a bare
// sequence of rows or as a mapping with a "matrix" key. Cells go through the
// same checks as ParseCells; a null cell counts as missing.
func Decode(r io.Reader) ([][]float64, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrBadDocument)
		}

		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.MappingNode {
		node = lookup(node, documentKey)
		if node == nil {
			return nil, fmt.Errorf("%w: missing %q key", ErrBadDocument, documentKey)
		}
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d", ErrBadDocument, node.Line)
	}

	cells := make([][]string, 0, len(node.Content))
	for _, rowNode := range node.Content {
		if rowNode.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: line %d: row is not a list", ErrBadDocument, rowNode.Line)
		}
		row := make([]string, 0, len(rowNode.Content))
		for _, cell := range rowNode.Content {
			if cell.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: cell is not a scalar", ErrBadDocument, cell.Line)
			}
			if cell.Tag == "!!null" {
				row = append(row, "")
				continue
			}
			row = append(row, cell.Value)
		}
		cells = append(cells, row)
	}

	return ParseCells(cells)
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	return nil
}
