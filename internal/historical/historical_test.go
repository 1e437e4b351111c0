package historical

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *git.Repository {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	return repo
}

func commitFile(t *testing.T, repo *git.Repository, path, content string) string {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	f, err := wt.Filesystem.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = wt.Add(path)
	require.NoError(t, err)
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}
	hash, err := wt.Commit("update config", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return hash.String()
}

const configV1 = `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
`

const configV2 = `
projects:
  - name: api
    id: 1
    root: api
    version: {file: api/package.json, json: version}
  - name: web
    id: 2
    root: web
    version: {file: web/package.json, json: version}
`

func TestAtProjectsConfigFromCommitTree(t *testing.T) {
	repo := newRepo(t)
	h1 := commitFile(t, repo, ".versio.yaml", configV1)
	h2 := commitFile(t, repo, ".versio.yaml", configV2)

	p := New(repo, ".versio.yaml")

	cfg1 := p.At(h1)
	require.Len(t, cfg1.Projects, 1)
	_, ok := cfg1.ProjectByID(2)
	assert.False(t, ok)

	cfg2 := p.At(h2)
	require.Len(t, cfg2.Projects, 2)
	_, ok = cfg2.ProjectByID(2)
	assert.True(t, ok)
}

func TestAtFallsBackOnMissingConfig(t *testing.T) {
	repo := newRepo(t)
	h := commitFile(t, repo, "README.md", "hello")

	p := New(repo, ".versio.yaml")
	cfg := p.At(h)
	assert.Empty(t, cfg.Projects)
}

func TestAtCachesResult(t *testing.T) {
	repo := newRepo(t)
	h := commitFile(t, repo, ".versio.yaml", configV1)

	p := New(repo, ".versio.yaml")
	first := p.At(h)
	second := p.At(h)
	assert.Equal(t, first, second)
}

func TestCoversAt(t *testing.T) {
	repo := newRepo(t)
	h := commitFile(t, repo, ".versio.yaml", configV1)

	p := New(repo, ".versio.yaml")
	assert.True(t, p.CoversAt(h, 1, map[string]struct{}{"api/index.js": {}}))
	assert.False(t, p.CoversAt(h, 1, map[string]struct{}{"web/index.js": {}}))
	assert.False(t, p.CoversAt(h, 99, map[string]struct{}{"api/index.js": {}}))
}
