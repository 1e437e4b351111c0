package commitwalk

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/versio-release/versio/internal/verrors"
)

func newRepo(t *testing.T) *git.Repository {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	return repo
}

func commitFile(t *testing.T, repo *git.Repository, path, content, message string, when time.Time) plumbing.Hash {
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
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: when}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return hash
}

func TestWalkReturnsCommitsOldestFirst(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h1 := commitFile(t, repo, "a.txt", "1", "first", base)
	h2 := commitFile(t, repo, "a.txt", "2", "second", base.Add(time.Hour))
	h3 := commitFile(t, repo, "b.txt", "1", "third", base.Add(2*time.Hour))

	commits, err := Walk(repo, h1.String(), h3.String())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, h2.String(), commits[0].Hash)
	require.Equal(t, h3.String(), commits[1].Hash)
	require.Contains(t, commits[1].ChangedPaths, "b.txt")
}

func TestWalkWithEmptyMarkerReturnsEverything(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h1 := commitFile(t, repo, "a.txt", "1", "first", base)
	h2 := commitFile(t, repo, "a.txt", "2", "second", base.Add(time.Hour))

	commits, err := Walk(repo, "", h2.String())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, h1.String(), commits[0].Hash)
}

func TestWalkMarkerNotAncestorErrors(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h1 := commitFile(t, repo, "a.txt", "1", "first", base)
	_ = h1

	other, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	foreign := commitFile(t, other, "x.txt", "1", "foreign", base)

	h2 := commitFile(t, repo, "a.txt", "2", "second", base.Add(time.Hour))

	_, err = Walk(repo, foreign.String(), h2.String())
	require.Error(t, err)
}

func TestWalkMarkerNewerThanHeadIsMarkerLost(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h1 := commitFile(t, repo, "a.txt", "1", "first", base)
	h2 := commitFile(t, repo, "a.txt", "2", "second", base.Add(time.Hour))

	// marker is h2, head is the older h1 -- h2 is not an ancestor of h1.
	_, err := Walk(repo, h2.String(), h1.String())
	require.Error(t, err)
	var lost *verrors.MarkerLostError
	require.ErrorAs(t, err, &lost)
}
