// Package jsonstore implements the minimal-edit JSON backend for
// ValueStore: locate a string value by a dotted/indexed selector and
// replace only its literal's byte span, leaving every other byte of the
// manifest untouched. encoding/json's streaming Decoder gives token
// boundaries via InputOffset without needing a third-party JSON library --
// this is the one format where the standard library's own streaming API
// is precise enough to do minimal-edit correctly, so no corpus dependency
// is substituted here (see DESIGN.md).
package jsonstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Read returns the string value at selector.
func Read(data []byte, selector []string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	start, end, err := navigate(dec, data, selector)
	if err != nil {
		return "", err
	}
	return unquote(data[start:end])
}

// Write replaces the string value at selector with newValue, preserving
// every other byte.
func Write(data []byte, selector []string, newValue string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	start, end, err := navigate(dec, data, selector)
	if err != nil {
		return nil, err
	}
	quoted, err := json.Marshal(newValue)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(quoted)-(end-start))
	out = append(out, data[:start]...)
	out = append(out, quoted...)
	out = append(out, data[end:]...)
	return out, nil
}

func unquote(raw []byte) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("value is not a JSON string: %w", err)
	}
	return s, nil
}

// navigate walks dec following selector and returns the byte span
// (including surrounding quotes) of the leaf string token.
func navigate(dec *json.Decoder, data []byte, selector []string) (start, end int, err error) {
	if len(selector) == 0 {
		return 0, 0, fmt.Errorf("empty selector")
	}
	return navigateRec(dec, data, selector)
}

func navigateRec(dec *json.Decoder, data []byte, path []string) (int, int, error) {
	prevOffset := int(dec.InputOffset())
	tok, err := dec.Token()
	if err != nil {
		return 0, 0, fmt.Errorf("reading token: %w", err)
	}

	if len(path) == 0 {
		s, ok := tok.(string)
		if !ok {
			return 0, 0, fmt.Errorf("selector does not point to a string value")
		}
		_ = s
		end := int(dec.InputOffset())
		start := findStringStart(data, prevOffset, end)
		return start, end, nil
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return 0, 0, fmt.Errorf("expected object or array at this path segment, found scalar")
	}

	key := path[0]
	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return 0, 0, err
			}
			keyStr, _ := keyTok.(string)
			if keyStr == key {
				return navigateRec(dec, data, path[1:])
			}
			if err := skipValue(dec); err != nil {
				return 0, 0, err
			}
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("key %q not found", key)
	case '[':
		idx, err := strconv.Atoi(key)
		if err != nil {
			return 0, 0, fmt.Errorf("selector segment %q is not a valid array index", key)
		}
		i := 0
		for dec.More() {
			if i == idx {
				return navigateRec(dec, data, path[1:])
			}
			if err := skipValue(dec); err != nil {
				return 0, 0, err
			}
			i++
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("index %d out of range", idx)
	default:
		return 0, 0, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// skipValue consumes one complete JSON value (object, array, or scalar)
// from dec without inspecting it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		for dec.More() {
			if _, err := dec.Token(); err != nil { // key
				return err
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		_, err := dec.Token() // closing '}'
		return err
	case '[':
		for dec.More() {
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		_, err := dec.Token() // closing ']'
		return err
	}
	return nil
}

// findStringStart locates the opening quote of the string token that ends
// at end (the offset just past its closing quote), scanning back from
// end-2 no further than prevOffset, skipping escaped quotes.
func findStringStart(data []byte, prevOffset, end int) int {
	for idx := end - 2; idx > prevOffset; idx-- {
		if data[idx] != '"' {
			continue
		}
		backslashes := 0
		for j := idx - 1; j >= prevOffset && data[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return idx
		}
	}
	return prevOffset
}
