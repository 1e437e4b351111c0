// Package historical implements HistoricalProjector: reconstructing the
// configuration as it existed at any ancestor commit (spec.md §4.6), and
// answering "did this commit cover this project?" -- the authority the
// two-config design in spec.md §9 depends on.
package historical

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/globset"
	"github.com/versio-release/versio/internal/model"
)

// Projector materializes configuration at any commit in repo.
type Projector struct {
	repo       *git.Repository
	configPath string
	cache      map[string]model.Config
}

// New returns a Projector reading configPath (e.g. ".versio.yaml") out of
// each commit's tree.
func New(repo *git.Repository, configPath string) *Projector {
	return &Projector{repo: repo, configPath: configPath, cache: map[string]model.Config{}}
}

// At returns the configuration as written at commit hash. Absent or
// malformed configuration at C is treated as "no projects, angular sizes"
// and never returns an error -- the projector never fails, per spec.md
// §4.6.
func (p *Projector) At(commitHash string) model.Config {
	if cfg, ok := p.cache[commitHash]; ok {
		return cfg
	}
	cfg := p.project(commitHash)
	p.cache[commitHash] = cfg
	return cfg
}

func (p *Projector) project(commitHash string) model.Config {
	fallback := config.Default()
	c, err := p.repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return fallback
	}
	tree, err := c.Tree()
	if err != nil {
		return fallback
	}
	file, err := tree.File(p.configPath)
	if err != nil {
		return fallback
	}
	content, err := file.Contents()
	if err != nil {
		return fallback
	}
	cfg, err := config.Parse([]byte(content))
	if err != nil {
		return fallback
	}
	return cfg
}

// Covers reports whether commit, as projected at its own commit hash, is
// covered by project p: p exists in the config at the commit's hash (the
// caller must pass the already-fetched config for that commit) and some
// changed path, relative to p's root as of that projection, matches p's
// include globs and not its exclude globs.
func Covers(p model.Project, changedPaths map[string]struct{}) bool {
	set := globset.New(p.Root, p.Includes, p.Excludes)
	return set.MatchesAny(changedPaths)
}

// CoversAt is a convenience wrapper: project p as it exists in the
// configuration projected at commitHash, checked against changedPaths.
func (pr *Projector) CoversAt(commitHash string, projectID uint, changedPaths map[string]struct{}) bool {
	cfg := pr.At(commitHash)
	proj, ok := cfg.ProjectByID(projectID)
	if !ok {
		return false
	}
	return Covers(proj, changedPaths)
}
