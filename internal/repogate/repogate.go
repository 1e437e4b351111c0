// Package repogate implements RepoGate: the four-level VCS capability
// abstraction from spec.md §4.3, over go-git/go-git/v5. golang-dep's own
// vcs_repo.go shells out to git/hg/bzr/svn binaries through
// Masterminds/vcs; this module only ever targets git, so it replaces that
// layer with go-git's pure-Go implementation, keeping the same "detect a
// capability ceiling, then clamp to what the caller prefers" shape.
package repogate

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"

	"github.com/versio-release/versio/internal/verrors"
)

// Level is one of the four totally ordered capability levels.
type Level int

const (
	LevelNone Level = iota
	LevelLocal
	LevelRemote
	LevelSmart
)

func (l Level) String() string {
	switch l {
	case LevelLocal:
		return "local"
	case LevelRemote:
		return "remote"
	case LevelSmart:
		return "smart"
	default:
		return "none"
	}
}

// Gate is a RepoGate bound to one repository and one effective level.
type Gate struct {
	repo      *git.Repository
	root      string
	level     Level
	dryRun    bool
	auth      transport.AuthMethod
	remoteURL string
}

// Detect determines the maximum level actually available: none always;
// local if a repository is present on a branch; remote if the branch has
// exactly one configured remote; smart if that remote's URL matches a
// recognized pull-request-hosting origin.
func Detect(root string) (Level, *git.Repository, string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return LevelNone, nil, "", nil
		}
		return LevelNone, nil, "", err
	}
	head, err := repo.Head()
	if err != nil {
		return LevelLocal, repo, "", nil
	}
	if !head.Name().IsBranch() {
		return LevelNone, repo, "", nil
	}
	remotes, err := repo.Remotes()
	if err != nil || len(remotes) != 1 {
		return LevelLocal, repo, "", nil
	}
	urls := remotes[0].Config().URLs
	if len(urls) == 0 {
		return LevelLocal, repo, "", nil
	}
	remoteURL := urls[0]
	if isRecognizedHost(remoteURL) {
		return LevelSmart, repo, remoteURL, nil
	}
	return LevelRemote, repo, remoteURL, nil
}

func isRecognizedHost(remoteURL string) bool {
	host := hostOf(remoteURL)
	return host == "github.com"
}

func hostOf(remoteURL string) string {
	if strings.HasPrefix(remoteURL, "git@") {
		rest := strings.TrimPrefix(remoteURL, "git@")
		if i := strings.IndexAny(rest, ":/"); i >= 0 {
			return rest[:i]
		}
		return rest
	}
	u, err := url.Parse(remoteURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Open computes the effective level from preferred, required, and detected
// levels, and opens a Gate. An empty intersection is a fatal configuration
// error reported before any read, per spec.md §4.3.
func Open(root string, preferred, required Level, dryRun bool, auth transport.AuthMethod) (*Gate, error) {
	detected, repo, remoteURL, err := Detect(root)
	if err != nil {
		return nil, errors.Wrap(err, "detecting repository capability")
	}
	effective := preferred
	if detected < effective {
		effective = detected
	}
	if effective < required {
		return nil, verrors.NewConfigError(
			fmt.Sprintf("no VCS capability level satisfies preferred=%s required=%s detected=%s", preferred, required, detected), nil)
	}
	return &Gate{repo: repo, root: root, level: effective, dryRun: dryRun, auth: auth, remoteURL: remoteURL}, nil
}

func min3(a, b, c Level) Level {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Level returns the gate's effective capability level.
func (g *Gate) Level() Level { return g.level }

// RemoteURL returns the single configured remote's URL, or "".
func (g *Gate) RemoteURL() string { return g.remoteURL }

func (g *Gate) requireAtLeast(min Level, op string) error {
	if g.level < min {
		return verrors.NewConfigError(fmt.Sprintf("operation %q requires VCS level %s, effective level is %s", op, min, g.level), nil)
	}
	return nil
}

func (g *Gate) requireWritable() error {
	if g.dryRun {
		return verrors.NewConfigError("writes are forbidden under --dry-run", nil)
	}
	return nil
}

// Head returns the HEAD commit hash.
func (g *Gate) Head() (string, error) {
	if err := g.requireAtLeast(LevelLocal, "read HEAD"); err != nil {
		return "", err
	}
	ref, err := g.repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// IsAncestor reports whether ancestor is an ancestor of (or equal to) descendant.
func (g *Gate) IsAncestor(ancestor, descendant string) (bool, error) {
	if err := g.requireAtLeast(LevelLocal, "walk commit ancestry"); err != nil {
		return false, err
	}
	descCommit, err := g.repo.CommitObject(plumbing.NewHash(descendant))
	if err != nil {
		return false, err
	}
	ancCommit, err := g.repo.CommitObject(plumbing.NewHash(ancestor))
	if err != nil {
		return false, err
	}
	// go-git's IsAncestor also reports true when the two commits are equal.
	return ancCommit.IsAncestor(descCommit)
}

// ResolveTag returns the commit hash a tag (annotated or lightweight) points at.
func (g *Gate) ResolveTag(name string) (string, bool, error) {
	if err := g.requireAtLeast(LevelLocal, "resolve tag"); err != nil {
		return "", false, err
	}
	ref, err := g.repo.Tag(name)
	if err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	obj, err := g.repo.TagObject(ref.Hash())
	if err == nil {
		commit, err := obj.Commit()
		if err != nil {
			return "", false, err
		}
		return commit.Hash.String(), true, nil
	}
	return ref.Hash().String(), true, nil
}

// TagMessage returns an annotated tag's body, or "" for a lightweight tag
// or one that does not exist.
func (g *Gate) TagMessage(name string) (string, error) {
	if err := g.requireAtLeast(LevelLocal, "read tag message"); err != nil {
		return "", err
	}
	ref, err := g.repo.Tag(name)
	if err != nil {
		return "", nil
	}
	obj, err := g.repo.TagObject(ref.Hash())
	if err != nil {
		return "", nil
	}
	return obj.Message, nil
}

// ListTags implements valuestore.TagReader: repository tags whose name
// starts with prefix.
func (g *Gate) ListTags(ctx context.Context, prefix string) ([]string, error) {
	if err := g.requireAtLeast(LevelLocal, "list tags"); err != nil {
		return nil, err
	}
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, err
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// CreateTag implements valuestore.TagWriter: an annotated or lightweight
// tag at HEAD.
func (g *Gate) CreateTag(ctx context.Context, name, message string, annotated bool) error {
	if err := g.requireWritable(); err != nil {
		return err
	}
	if err := g.requireAtLeast(LevelLocal, "create tag"); err != nil {
		return err
	}
	head, err := g.repo.Head()
	if err != nil {
		return err
	}
	var opts *git.CreateTagOptions
	if annotated {
		if message == "" {
			message = name // go-git rejects an annotated tag without a message
		}
		opts = &git.CreateTagOptions{Message: message}
	}
	_, err = g.repo.CreateTag(name, head.Hash(), opts)
	return err
}

// MoveTag force-moves an existing tag to the given commit. The lock-tags
// policy (spec.md §4.7 step 5, §8) forbids calling this for per-project
// tags that existed at the prior marker -- PlanExecutor enforces that
// rule, not Gate.
func (g *Gate) MoveTag(name, commitHash string, message string, annotated bool) error {
	if err := g.requireWritable(); err != nil {
		return err
	}
	if err := g.requireAtLeast(LevelLocal, "move tag"); err != nil {
		return err
	}
	_ = g.repo.DeleteTag(name)
	var opts *git.CreateTagOptions
	if annotated {
		if message == "" {
			message = name // go-git rejects an annotated tag without a message
		}
		opts = &git.CreateTagOptions{Message: message}
	}
	_, err := g.repo.CreateTag(name, plumbing.NewHash(commitHash), opts)
	return err
}

// IsClean reports whether the working tree has no uncommitted
// modifications, no untracked files, and no in-progress merge/rebase --
// the "current" check from spec.md §5.
func (g *Gate) IsClean() (bool, error) {
	if g.level == LevelNone {
		return true, nil
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, marker := range []string{"MERGE_HEAD", "rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(g.root, ".git", marker)); err == nil {
			return false, nil
		}
	}
	return status.IsClean(), nil
}

// Commit stages paths and creates a commit with the given identity and
// message, returning the new commit hash.
func (g *Gate) Commit(paths []string, authorName, authorEmail, message string) (string, error) {
	if err := g.requireWritable(); err != nil {
		return "", err
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return "", err
		}
	}
	sig := &object.Signature{Name: authorName, Email: authorEmail}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// Push pushes the current branch and the named tag refs. A rejected push
// (non-fast-forward / remote advanced) surfaces as *verrors.PushConflict,
// per spec.md §4.8 phase 7 and §5.
func (g *Gate) Push(ctx context.Context, branch string, tags []string) error {
	if err := g.requireWritable(); err != nil {
		return err
	}
	if err := g.requireAtLeast(LevelRemote, "push"); err != nil {
		return err
	}
	refSpecs := []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))}
	for _, t := range tags {
		refSpecs = append(refSpecs, config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", t, t)))
	}
	err := g.repo.PushContext(ctx, &git.PushOptions{RefSpecs: refSpecs, Auth: g.auth})
	if err != nil {
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return &verrors.PushConflict{Ref: branch, Cause: err}
		}
		var authErr *transport.ErrAuthenticationRequired
		if errors.As(err, &authErr) {
			return &verrors.RemoteAuthError{Remote: g.remoteURL, Cause: err}
		}
		return err
	}
	return nil
}

// Fetch updates remote-tracking refs.
func (g *Gate) Fetch(ctx context.Context) error {
	if err := g.requireAtLeast(LevelRemote, "fetch"); err != nil {
		return err
	}
	err := g.repo.FetchContext(ctx, &git.FetchOptions{Auth: g.auth})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// Repository exposes the underlying *git.Repository for CommitWalker,
// which needs direct object access this gate does not wrap one-for-one.
func (g *Gate) Repository() *git.Repository { return g.repo }

// NewBasicAuth builds an http.BasicAuth for token-based remotes (the
// credential token from spec.md §6 "Environment").
func NewBasicAuth(username, token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: username, Password: token}
}
