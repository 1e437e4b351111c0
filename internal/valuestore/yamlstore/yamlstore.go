// Package yamlstore implements the minimal-edit YAML backend for
// ValueStore. It decodes into a yaml.Node tree (gopkg.in/yaml.v3), which
// retains each scalar's original Line/Column, and splices the raw bytes at
// that position rather than re-encoding the tree -- re-encoding would
// normalize quoting, indentation, and comment placement across the whole
// document.
package yamlstore

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Read returns the scalar string at selector.
func Read(data []byte, selector []string) (string, error) {
	node, err := navigate(data, selector)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

// Write replaces the scalar string at selector with newValue.
func Write(data []byte, selector []string, newValue string) ([]byte, error) {
	node, err := navigate(data, selector)
	if err != nil {
		return nil, err
	}
	start, end, err := span(data, node)
	if err != nil {
		return nil, err
	}
	replacement := encodeScalar(node, newValue)
	out := make([]byte, 0, len(data)+len(replacement)-(end-start))
	out = append(out, data[:start]...)
	out = append(out, replacement...)
	out = append(out, data[end:]...)
	return out, nil
}

func navigate(data []byte, selector []string) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty yaml document")
	}
	cur := root.Content[0]
	for _, key := range selector {
		next, err := step(cur, key)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if cur.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("selector does not point to a scalar value")
	}
	return cur, nil
}

func step(node *yaml.Node, key string) (*yaml.Node, error) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				return node.Content[i+1], nil
			}
		}
		return nil, fmt.Errorf("key %q not found", key)
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("selector segment %q is not a valid index", key)
		}
		if idx < 0 || idx >= len(node.Content) {
			return nil, fmt.Errorf("index %d out of range", idx)
		}
		return node.Content[idx], nil
	default:
		return nil, fmt.Errorf("cannot descend into scalar at key %q", key)
	}
}

// span computes the byte offset range of node's raw token in data, using
// its 1-indexed Line/Column. For quoted scalars the opening quote is
// included so Write can re-quote the replacement consistently.
func span(data []byte, node *yaml.Node) (int, int, error) {
	lineStart, err := offsetOfLine(data, node.Line)
	if err != nil {
		return 0, 0, err
	}
	start := lineStart + node.Column - 1
	if start < 0 || start > len(data) {
		return 0, 0, fmt.Errorf("scalar position out of range")
	}
	contentLen := len(node.Value)
	end := start + contentLen
	switch node.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		// start currently points at the opening quote; value content
		// begins one byte later and the closing quote follows it.
		end = start + 1 + contentLen + 1
	}
	if end > len(data) {
		return 0, 0, fmt.Errorf("scalar span exceeds document length")
	}
	return start, end, nil
}

func offsetOfLine(data []byte, line int) (int, error) {
	if line <= 1 {
		return 0, nil
	}
	seen := 1
	for i, b := range data {
		if b == '\n' {
			seen++
			if seen == line {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("line %d not found", line)
}

func encodeScalar(node *yaml.Node, newValue string) []byte {
	switch node.Style {
	case yaml.DoubleQuotedStyle:
		return []byte(`"` + newValue + `"`)
	case yaml.SingleQuotedStyle:
		return []byte(`'` + newValue + `'`)
	default:
		return []byte(newValue)
	}
}
