// Package xmlstore implements the XML backend for ValueStore using
// beevik/etree. Write sets one element's text and re-serializes the whole
// document through etree; it is not a minimal-edit writer, so bytes outside
// the replaced text can change (each tag is written in etree's own form).
package xmlstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Read returns the text content of the element at selector (a path of
// element tag names starting with the root element; a "tag#N" segment
// selects the Nth, zero-based, same-named child).
func Read(data []byte, selector []string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("parsing xml: %w", err)
	}
	el, err := navigate(doc.Root(), selector)
	if err != nil {
		return "", err
	}
	return el.Text(), nil
}

// Write replaces the element's text content with newValue.
func Write(data []byte, selector []string, newValue string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = false
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	el, err := navigate(doc.Root(), selector)
	if err != nil {
		return nil, err
	}
	el.SetText(newValue)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing xml: %w", err)
	}
	return out, nil
}

func navigate(root *etree.Element, selector []string) (*etree.Element, error) {
	if root == nil {
		return nil, fmt.Errorf("empty xml document")
	}
	cur := root
	// The first selector segment names the root element itself; verify
	// it, then descend through the rest.
	if len(selector) == 0 {
		return cur, nil
	}
	if cur.Tag != selector[0] {
		return nil, fmt.Errorf("root element is %q, selector expects %q", cur.Tag, selector[0])
	}
	for _, seg := range selector[1:] {
		tag, idx := parseSegment(seg)
		children := cur.FindElements(tag)
		if idx >= len(children) {
			return nil, fmt.Errorf("element %q[%d] not found under %q", tag, idx, cur.Tag)
		}
		cur = children[idx]
	}
	return cur, nil
}

// parseSegment splits a "tag" or "tag#N" segment into the tag name and the
// sibling index to select (0 when unspecified).
func parseSegment(seg string) (tag string, index int) {
	if i := strings.LastIndex(seg, "#"); i >= 0 {
		if n, err := strconv.Atoi(seg[i+1:]); err == nil {
			return seg[:i], n
		}
	}
	return seg, 0
}
