package planbuild

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/historical"
	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/verrors"
)

func newRepoWithConfig(t *testing.T, configYAML string) (*git.Repository, string) {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	f, err := wt.Filesystem.Create(".versio.yaml")
	require.NoError(t, err)
	_, err = f.Write([]byte(configYAML))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = wt.Add(".versio.yaml")
	require.NoError(t, err)
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}
	hash, err := wt.Commit("initial config", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return repo, hash.String()
}

func commit(hash, message string, paths ...string) model.Commit {
	changed := map[string]struct{}{}
	for _, p := range paths {
		changed[p] = struct{}{}
	}
	return model.Commit{Hash: hash, Message: message, ChangedPaths: changed}
}

const twoProjectConfig = `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
  - name: web
    id: 2
    root: web
    version: {file: web/package.json, json: version}
    depends:
      1: {size: patch}
sizes:
  use_angular: true
`

func TestBuildDirectFeatAdvancesMinor(t *testing.T) {
	repo, hash := newRepoWithConfig(t, twoProjectConfig)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "Add widget", Commits: []model.Commit{commit(hash, "feat: add widget", "api/index.js")}},
	}
	current := CurrentVersions{1: "1.0.0", 2: "2.0.0"}

	plan, err := Build(testConfig(t, twoProjectConfig), groups, projector, current, Options{})
	require.NoError(t, err)

	entry, ok := plan.EntryFor(1)
	require.True(t, ok)
	assert.Equal(t, "1.1.0", entry.TargetVersion)
}

func TestBuildDependencyPropagatesDeclaredSize(t *testing.T) {
	cfg := testConfig(t, twoProjectConfig)
	repo, hash := newRepoWithConfig(t, twoProjectConfig)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "Fix bug", Commits: []model.Commit{commit(hash, "fix: bug", "api/index.js")}},
	}
	current := CurrentVersions{1: "1.0.0", 2: "2.0.0"}

	plan, err := Build(cfg, groups, projector, current, Options{})
	require.NoError(t, err)

	api, ok := plan.EntryFor(1)
	require.True(t, ok)
	assert.Equal(t, "1.0.1", api.TargetVersion)

	web, ok := plan.EntryFor(2)
	require.True(t, ok)
	assert.Equal(t, "2.0.1", web.TargetVersion)
	assert.Equal(t, model.SizePatch, web.DependencyBumps[1])
}

func TestBuildUncoveredProjectHasNoEntry(t *testing.T) {
	cfg := testConfig(t, twoProjectConfig)
	repo, hash := newRepoWithConfig(t, twoProjectConfig)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "Docs", Commits: []model.Commit{commit(hash, "docs: update readme", "README.md")}},
	}
	current := CurrentVersions{1: "1.0.0", 2: "2.0.0"}

	plan, err := Build(cfg, groups, projector, current, Options{})
	require.NoError(t, err)
	assert.Empty(t, plan.Entries)
}

func TestBuildFailSizeReturnsPolicyFail(t *testing.T) {
	cfg := testConfig(t, `
projects:
  - name: api
    id: 1
    version: {file: api/package.json, json: version}
sizes:
  major: ["!"]
  patch: ["fix"]
  fail: ["wip"]
  none: ["*"]
`)
	repo, hash := newRepoWithConfig(t, twoProjectConfig)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "oops", Commits: []model.Commit{commit(hash, "wip: broken", "api/index.js")}},
	}
	current := CurrentVersions{1: "1.0.0"}

	_, err := Build(cfg, groups, projector, current, Options{})
	require.Error(t, err)
	var policyFail *verrors.PolicyFail
	assert.ErrorAs(t, err, &policyFail)
}

func TestBuildTagOnlyWhenCoveredButNoSize(t *testing.T) {
	cfg := testConfig(t, `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
sizes:
  use_angular: true
`)
	repo, hash := newRepoWithConfig(t, `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
`)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "chore", Commits: []model.Commit{commit(hash, "chore: tidy", "api/index.js")}},
	}
	current := CurrentVersions{1: "1.0.0"}

	plan, err := Build(cfg, groups, projector, current, Options{})
	require.NoError(t, err)
	entry, ok := plan.EntryFor(1)
	require.True(t, ok)
	assert.True(t, entry.TagOnly)
	assert.Equal(t, "1.0.0", entry.TargetVersion)
}

func TestBuildSubdivisionWarningWhenDirMissing(t *testing.T) {
	cfg := testConfig(t, `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
    subs:
      dirs: "v<>"
      tops: [1]
sizes:
  use_angular: true
`)
	repo, hash := newRepoWithConfig(t, twoProjectConfig)
	projector := historical.New(repo, ".versio.yaml")

	groups := []model.PRGroup{
		{Number: 1, Title: "breaking", Commits: []model.Commit{commit(hash, "feat!: break api", "api/index.js")}},
	}
	current := CurrentVersions{1: "1.0.0"}

	_, err := Build(cfg, groups, projector, current, Options{DirExists: func(string) bool { return false }})
	require.Error(t, err)
	var warn *verrors.SubdivisionWarning
	assert.ErrorAs(t, err, &warn)
}

func testConfig(t *testing.T, yamlDoc string) model.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yamlDoc))
	require.NoError(t, err)
	return cfg
}
