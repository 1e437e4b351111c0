package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versio-release/versio/internal/model"
)

func TestDefaultIsAngularWithFailCatchAll(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultPrevTag, cfg.Options.PrevTag)
	assert.Equal(t, model.SizeMinor, cfg.Sizes.ByType["feat"])
	assert.Equal(t, model.SizePatch, cfg.Sizes.ByType["fix"])
	assert.Equal(t, model.SizeFail, cfg.Sizes.CatchAll)
}

func TestParseMinimalDocument(t *testing.T) {
	doc := []byte(`
projects:
  - name: api
    id: 1
    version:
      file: package.json
      json: version
sizes:
  use_angular: true
`)
	cfg, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 1)

	p := cfg.Projects[0]
	assert.Equal(t, "api", p.Name)
	assert.Equal(t, uint(1), p.ID)
	assert.Equal(t, ".", p.Root)
	assert.Equal(t, []string{"**/*"}, p.Includes)
	assert.Equal(t, model.VersionFile, p.Version.Kind)
	assert.Equal(t, model.FormatJSON, p.Version.Format)
	assert.Equal(t, []model.SelectorAtom{{Key: "version"}}, p.Version.Selector)
}

func TestParseRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Parse([]byte("bogus: true\n"))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateProjectID(t *testing.T) {
	doc := []byte(`
projects:
  - name: a
    id: 1
    version: {file: a.json, json: version}
  - name: b
    id: 1
    version: {file: b.json, json: version}
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestParseRejectsDependencyCycle(t *testing.T) {
	doc := []byte(`
projects:
  - name: a
    id: 1
    version: {file: a.json, json: version}
    depends:
      2: {size: match}
  - name: b
    id: 2
    version: {file: b.json, json: version}
    depends:
      1: {size: match}
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestParseSizesWithoutAngularRequiresCatchAll(t *testing.T) {
	doc := []byte(`
projects: []
sizes:
  major: ["!"]
  patch: ["fix"]
`)
	_, err := Parse(doc)
	assert.Error(t, err)

	doc = []byte(`
projects: []
sizes:
  major: ["!"]
  patch: ["fix"]
  none: ["*"]
`)
	cfg, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, model.SizeNone, cfg.Sizes.CatchAll)
	assert.Equal(t, model.SizePatch, cfg.Sizes.ByType["fix"])
}

func TestVersionTagsRequiresTagPrefix(t *testing.T) {
	doc := []byte(`
projects:
  - name: a
    id: 1
    version:
      tags: {default: "0.1.0"}
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestParseSubsRequiresPlaceholder(t *testing.T) {
	doc := []byte(`
projects:
  - name: a
    id: 1
    version: {file: a.json, json: version}
    subs:
      dirs: "release-dir"
`)
	_, err := Parse(doc)
	assert.Error(t, err)

	doc = []byte(`
projects:
  - name: a
    id: 1
    version: {file: a.json, json: version}
    subs:
      dirs: "v<>"
`)
	cfg, err := Parse(doc)
	require.NoError(t, err)
	require.NotNil(t, cfg.Projects[0].Subs)
	assert.Equal(t, "v<>", cfg.Projects[0].Subs.DirPattern)
}

func TestParseDottedSelector(t *testing.T) {
	atoms := parseDottedSelector("a.b.c")
	assert.Equal(t, []model.SelectorAtom{{Key: "a"}, {Key: "b"}, {Key: "c"}}, atoms)
}
