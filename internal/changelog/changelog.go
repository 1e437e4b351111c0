// Package changelog renders a project's changelog from its configured
// template, splicing the result between the BEGIN/END markers from
// spec.md §6 so everything else in the file survives verbatim.
package changelog

import (
	"bytes"
	"os"
	"strings"
	"text/template"

	"github.com/versio-release/versio/internal/model"
)

const (
	beginMarker = "### VERSIO BEGIN CONTENT ###"
	endMarker   = "### VERSIO END CONTENT ###"
)

// Release is the template data for one project's rendered changelog entry.
// OldContent is filled in by Render from the existing file before the
// template executes, per spec.md §4.8 phase 2.
type Release struct {
	Project    model.Project
	Version    string
	Groups     []model.PlanGroup
	OldContent string
}

var templateFuncs = template.FuncMap{
	"slice": func(s string, a, b int) string {
		if b > len(s) {
			b = len(s)
		}
		return s[a:b]
	},
}

var defaultTemplate = template.Must(template.New("changelog").Funcs(templateFuncs).Parse(
	`## {{.Version}}
{{range .Groups}}{{range .Group.Commits}}- {{.Summary}} ({{slice .Hash 0 7}})
{{end}}{{end}}`))

// Render produces the new body for target's changelog file, preserving
// everything outside the BEGIN/END marker lines.
func Render(target model.ChangelogTarget, rel Release) (string, error) {
	tmpl := defaultTemplate
	if target.Template != "" {
		t, err := template.New("changelog").Funcs(templateFuncs).Parse(target.Template)
		if err != nil {
			return "", err
		}
		tmpl = t
	}

	existing := ""
	if data, err := os.ReadFile(target.File); err == nil {
		existing = string(data)
	}
	rel.OldContent = extractOldContent(existing)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rel); err != nil {
		return "", err
	}
	rendered := buf.String()

	return splice(existing, rendered), nil
}

// extractOldContent returns the substring between the first line
// containing beginMarker and the next line containing endMarker, empty
// when either marker is absent.
func extractOldContent(existing string) string {
	lines := strings.Split(existing, "\n")
	start, end := -1, -1
	for i, l := range lines {
		if start == -1 && strings.Contains(l, beginMarker) {
			start = i
			continue
		}
		if start != -1 && strings.Contains(l, endMarker) {
			end = i
			break
		}
	}
	if start == -1 || end == -1 {
		return ""
	}
	return strings.Join(lines[start+1:end], "\n")
}

// splice inserts rendered between the markers, adding them (at the top of
// the file) if they are not present yet.
func splice(existing, rendered string) string {
	lines := strings.Split(existing, "\n")
	start, end := -1, -1
	for i, l := range lines {
		if start == -1 && strings.Contains(l, beginMarker) {
			start = i
			continue
		}
		if start != -1 && strings.Contains(l, endMarker) {
			end = i
			break
		}
	}
	if start == -1 || end == -1 {
		var buf strings.Builder
		buf.WriteString(beginMarker + "\n")
		buf.WriteString(rendered)
		if !strings.HasSuffix(rendered, "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(endMarker + "\n")
		if existing != "" {
			buf.WriteString(existing)
		}
		return buf.String()
	}
	var buf strings.Builder
	buf.WriteString(strings.Join(lines[:start+1], "\n"))
	buf.WriteString("\n")
	buf.WriteString(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(strings.Join(lines[end:], "\n"))
	return buf.String()
}
