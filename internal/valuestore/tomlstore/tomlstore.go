// Package tomlstore implements the TOML backend for ValueStore. Reads go
// through pelletier/go-toml/v2, decoding into a generic map so the same
// dotted/indexed selector used for JSON and YAML works unchanged. Writes
// are hand-rolled: go-toml/v2 has no formatting-preserving encoder, and
// spec.md §9 is explicit that "rewriting through a generic serializer is a
// correctness regression" -- so Write scans the document's own
// `[table.path]` headers and `key = "value"` lines rather than
// re-marshaling the decoded map.
package tomlstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Read returns the string value at selector.
func Read(data []byte, selector []string) (string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing toml: %w", err)
	}
	var cur any = doc
	for _, key := range selector {
		next, err := step(cur, key)
		if err != nil {
			return "", err
		}
		cur = next
	}
	s, ok := cur.(string)
	if !ok {
		return "", fmt.Errorf("selector does not point to a string value")
	}
	return s, nil
}

func step(cur any, key string) (any, error) {
	switch v := cur.(type) {
	case map[string]any:
		next, ok := v[key]
		if !ok {
			return nil, fmt.Errorf("key %q not found", key)
		}
		return next, nil
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("selector segment %q is not a valid index", key)
		}
		if idx < 0 || idx >= len(v) {
			return nil, fmt.Errorf("index %d out of range", idx)
		}
		return v[idx], nil
	default:
		return nil, fmt.Errorf("cannot descend into scalar at key %q", key)
	}
}

// Write splices newValue into the last selector segment's `key = "..."`
// line, scoped to the `[table]` (or `[table.sub]`) header matching every
// preceding selector segment. Array-index segments in the middle of a
// selector are not supported by the line scanner and return an error --
// real-world TOML manifests (Cargo.toml, pyproject.toml) never index an
// array to reach a version field.
func Write(data []byte, selector []string, newValue string) ([]byte, error) {
	if len(selector) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	tablePath := selector[:len(selector)-1]
	finalKey := selector[len(selector)-1]

	lines := splitKeepEnds(data)
	tableStart, tableEnd, err := findTable(lines, tablePath)
	if err != nil {
		return nil, err
	}

	for i := tableStart; i < tableEnd; i++ {
		key, quoteStart, quoteEnd, ok := parseKeyLine(lines[i], finalKey)
		if !ok {
			continue
		}
		_ = key
		line := lines[i]
		newLine := line[:quoteStart] + `"` + newValue + `"` + line[quoteEnd:]
		lines[i] = newLine
		return []byte(strings.Join(lines, "")), nil
	}
	return nil, fmt.Errorf("key %q not found in table %v", finalKey, tablePath)
}

func splitKeepEnds(data []byte) []string {
	s := string(data)
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// findTable locates the [a.b.c] header matching path (empty path means the
// implicit root table before any header) and returns the half-open line
// range belonging to it.
func findTable(lines []string, path []string) (start, end int, err error) {
	want := strings.Join(path, ".")
	if want == "" {
		// root table: everything up to the first header.
		for i, l := range lines {
			if isTableHeader(l) {
				return 0, i, nil
			}
		}
		return 0, len(lines), nil
	}
	for i, l := range lines {
		name, ok := tableHeaderName(l)
		if !ok || name != want {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if isTableHeader(lines[j]) {
				return i + 1, j, nil
			}
		}
		return i + 1, len(lines), nil
	}
	return 0, 0, fmt.Errorf("table %q not found", want)
}

func isTableHeader(line string) bool {
	_, ok := tableHeaderName(line)
	return ok
}

func tableHeaderName(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "[") || strings.HasPrefix(t, "[[") {
		return "", false
	}
	end := strings.Index(t, "]")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(t[1:end]), true
}

// parseKeyLine reports whether line is a `key = "value"` assignment for
// key, returning the byte offsets (within line) of the value's opening and
// past-closing quote.
func parseKeyLine(line, key string) (matchedKey string, quoteStart, quoteEnd int, ok bool) {
	t := strings.TrimLeft(line, " \t")
	lead := len(line) - len(t)
	eq := strings.Index(t, "=")
	if eq < 0 {
		return "", 0, 0, false
	}
	name := strings.TrimSpace(t[:eq])
	if name != key {
		return "", 0, 0, false
	}
	rest := t[eq+1:]
	trimmedRest := strings.TrimLeft(rest, " \t")
	valOffset := lead + eq + 1 + (len(rest) - len(trimmedRest))
	if !strings.HasPrefix(trimmedRest, `"`) {
		return "", 0, 0, false
	}
	closeIdx := strings.Index(trimmedRest[1:], `"`)
	if closeIdx < 0 {
		return "", 0, 0, false
	}
	start := valOffset
	end := valOffset + 1 + closeIdx + 1
	return key, start, end, true
}
