package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versio-release/versio/internal/model"
)

func TestRenderCreatesMarkersWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "CHANGELOG.md")

	rel := Release{
		Version: "1.1.0",
		Groups: []model.PlanGroup{
			{Group: model.PRGroup{Commits: []model.Commit{{Hash: "abcdef1234567", Message: "feat: add widget"}}}},
		},
	}

	out, err := Render(model.ChangelogTarget{File: file}, rel)
	require.NoError(t, err)
	assert.Contains(t, out, "### VERSIO BEGIN CONTENT ###")
	assert.Contains(t, out, "### VERSIO END CONTENT ###")
	assert.Contains(t, out, "## 1.1.0")
	assert.Contains(t, out, "- feat: add widget (abcdef1)")
}

func TestRenderSplicesBetweenExistingMarkers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "CHANGELOG.md")
	existing := "# Changelog\n\n### VERSIO BEGIN CONTENT ###\nold entry\n### VERSIO END CONTENT ###\n\nhistorical notes\n"
	require.NoError(t, os.WriteFile(file, []byte(existing), 0o644))

	rel := Release{Version: "2.0.0"}
	out, err := Render(model.ChangelogTarget{File: file}, rel)
	require.NoError(t, err)

	assert.Contains(t, out, "# Changelog")
	assert.Contains(t, out, "## 2.0.0")
	assert.NotContains(t, out, "old entry")
	assert.Contains(t, out, "historical notes")
}

func TestRenderUsesCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "CHANGELOG.md")

	rel := Release{Version: "3.0.0"}
	out, err := Render(model.ChangelogTarget{File: file, Template: "release {{.Version}}"}, rel)
	require.NoError(t, err)
	assert.Contains(t, out, "release 3.0.0")
}

func TestRenderRejectsMalformedTemplate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "CHANGELOG.md")

	_, err := Render(model.ChangelogTarget{File: file, Template: "{{.Version"}, Release{})
	assert.Error(t, err)
}
