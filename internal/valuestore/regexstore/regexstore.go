// Package regexstore implements the regex-location backend: the first
// capturing group of the first match is the value; a write replaces only
// that capture's byte range, per spec.md §4.2.
package regexstore

import (
	"fmt"
	"regexp"
)

// Read returns the first capture group of the first match of pattern.
func Read(data []byte, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("compiling pattern: %w", err)
	}
	loc := re.FindSubmatchIndex(data)
	if loc == nil || len(loc) < 4 {
		return "", fmt.Errorf("pattern %q has no match with a capturing group", pattern)
	}
	return string(data[loc[2]:loc[3]]), nil
}

// Write replaces the first capture group's byte range with newValue.
func Write(data []byte, pattern string, newValue string) ([]byte, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	loc := re.FindSubmatchIndex(data)
	if loc == nil || len(loc) < 4 {
		return nil, fmt.Errorf("pattern %q has no match with a capturing group", pattern)
	}
	out := make([]byte, 0, len(data)+len(newValue)-(loc[3]-loc[2]))
	out = append(out, data[:loc[2]]...)
	out = append(out, newValue...)
	out = append(out, data[loc[3]:]...)
	return out, nil
}
