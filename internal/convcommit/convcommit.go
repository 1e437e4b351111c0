// Package convcommit parses the conventional-commit shape from the
// GLOSSARY of spec.md: a summary line `type(scope)?!?: ...`, optionally
// followed by a body and trailers such as `BREAKING CHANGE:`.
package convcommit

import "strings"

// Parsed is the result of parsing one commit message.
type Parsed struct {
	Type       string
	Scope      string
	Breaking   bool
	Parseable  bool
	Summary    string
}

// Parse extracts the conventional-commit type, scope, and breaking flag
// from message. Parseable is false for a message that does not match the
// `type(scope)?!?: ...` shape at all -- the `-` size key in spec.md §3.
func Parse(message string) Parsed {
	summary := firstLine(message)
	breaking := hasBreakingTrailer(message)

	colon := strings.Index(summary, ":")
	if colon < 0 {
		return Parsed{Breaking: breaking, Parseable: false, Summary: summary}
	}
	head := summary[:colon]
	head = strings.TrimSpace(head)
	if head == "" {
		return Parsed{Breaking: breaking, Parseable: false, Summary: summary}
	}

	bang := false
	if strings.HasSuffix(head, "!") {
		bang = true
		head = strings.TrimSuffix(head, "!")
	}

	typ := head
	scope := ""
	if open := strings.Index(head, "("); open >= 0 && strings.HasSuffix(head, ")") {
		typ = head[:open]
		scope = head[open+1 : len(head)-1]
	}
	if !isValidType(typ) {
		return Parsed{Breaking: breaking, Parseable: false, Summary: summary}
	}

	return Parsed{
		Type:      typ,
		Scope:     scope,
		Breaking:  breaking || bang,
		Parseable: true,
		Summary:   summary,
	}
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

func hasBreakingTrailer(message string) bool {
	return strings.Contains(message, "BREAKING CHANGE:") || strings.Contains(message, "BREAKING-CHANGE:")
}

// isValidType requires a lowercase identifier -- conventional-commit types
// are words like feat, fix, chore, docs, not arbitrary sentence fragments
// that happen to contain a colon.
func isValidType(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && r != '-' {
			return false
		}
	}
	return true
}
