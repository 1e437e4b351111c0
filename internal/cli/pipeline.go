package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-github/v64/github"
	"golang.org/x/oauth2"

	"github.com/versio-release/versio/internal/commitwalk"
	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/historical"
	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/planbuild"
	"github.com/versio-release/versio/internal/prstitch"
	"github.com/versio-release/versio/internal/repogate"
	"github.com/versio-release/versio/internal/valuestore"
	"github.com/versio-release/versio/internal/verrors"
)

// session bundles everything the plan/release/check/etc. commands need
// after opening the repository once.
type session struct {
	root      string
	cfg       model.Config
	gate      *repogate.Gate
	store     *valuestore.Store
	projector *historical.Projector
}

func openSession(flags *globalFlags) (*session, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, flags.configPath))
	if err != nil {
		return nil, err
	}
	if flags.prevTag != "" {
		cfg.Options.PrevTag = flags.prevTag
	}

	preferred, err := parseLevel(flags.vcsLevel)
	if err != nil {
		return nil, err
	}
	gate, err := repogate.Open(root, preferred, repogate.LevelNone, flags.dryRun, nil)
	if err != nil {
		return nil, err
	}

	if gate.Level() >= repogate.LevelLocal && !(flags.noCurrent && gate.Level() == repogate.LevelLocal) {
		clean, err := gate.IsClean()
		if err != nil {
			return nil, err
		}
		if !clean {
			return nil, verrors.NewConfigError("working tree is not current (uncommitted changes, untracked files, or in-progress merge/rebase)", nil)
		}
	}

	store := valuestore.New(root, gate)
	projector := historical.New(gate.Repository(), flags.configPath)

	return &session{root: root, cfg: cfg, gate: gate, store: store, projector: projector}, nil
}

// currentVersions reads each project's current version through the
// session's ValueStore.
func (s *session) currentVersions(ctx context.Context) (planbuild.CurrentVersions, error) {
	out := planbuild.CurrentVersions{}
	for _, p := range s.cfg.Projects {
		v, err := s.store.Read(ctx, p.Version, p.TagPrefix, p.TagPrefixSeparator)
		if err != nil {
			return nil, err
		}
		out[p.ID] = v
	}
	return out, nil
}

// buildPlan runs the full pipeline: CommitWalker -> (PRStitcher | Singleton)
// -> PlanBuilder, and returns the resulting Plan. enforceSubdivision
// selects whether the subdivision guard runs; when it runs and fails, the
// error is a *verrors.SubdivisionWarning, which release treats as fatal and
// plan reports as a warning.
func (s *session) buildPlan(ctx context.Context, lockTags bool, enforceSubdivision bool) (model.Plan, error) {
	head, err := s.gate.Head()
	if err != nil {
		return model.Plan{}, err
	}
	markerHash, _, err := s.gate.ResolveTag(s.cfg.Options.PrevTag)
	if err != nil {
		return model.Plan{}, err
	}

	commits, err := commitwalk.Walk(s.gate.Repository(), markerHash, head)
	if err != nil {
		return model.Plan{}, err
	}

	var groups []model.PRGroup
	if s.gate.Level() >= repogate.LevelSmart {
		owner, repoName := ownerRepo(s.gate.RemoteURL())
		groups, err = prstitch.Stitch(ctx, newGitHubClient(ctx), s.gate.Repository(), owner, repoName, commits)
		if err != nil {
			groups = prstitch.Singleton(commits)
		}
	} else {
		groups = prstitch.Singleton(commits)
	}

	current, err := s.currentVersions(ctx)
	if err != nil {
		return model.Plan{}, err
	}

	opts := planbuild.Options{LockTags: lockTags}
	if enforceSubdivision {
		opts.DirExists = func(dir string) bool { return dirExists(s.root, dir) }
	}
	return planbuild.Build(s.cfg, groups, s.projector, current, opts)
}

// newGitHubClient builds a prstitch.Client authenticated with
// GITHUB_TOKEN when set, and unauthenticated (rate-limited) otherwise --
// prstitch.Stitch files any commit whose query fails under the "Other
// commits" group, so an unauthenticated client is a safe default (spec.md
// §6 "Environment").
func newGitHubClient(ctx context.Context) prstitch.Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return prstitch.NewGitHubClient(github.NewClient(nil))
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return prstitch.NewGitHubClient(github.NewClient(oauth2.NewClient(ctx, ts)))
}

func dirExists(root, dir string) bool {
	info, err := os.Stat(filepath.Join(root, dir))
	return err == nil && info.IsDir()
}

// ownerRepo splits a GitHub remote URL into its owner/repo components.
func ownerRepo(remoteURL string) (string, string) {
	s := remoteURL
	for _, prefix := range []string{"git@github.com:", "https://github.com/", "http://github.com/", "ssh://git@github.com/"} {
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			s = s[len(prefix):]
			break
		}
	}
	s = trimSuffix(s, ".git")
	owner, repoName := "", ""
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			owner, repoName = s[:i], s[i+1:]
			break
		}
	}
	return owner, repoName
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}

func printPlan(plan model.Plan, showAll bool) {
	for _, e := range plan.Entries {
		marker := ""
		if e.TagOnly {
			marker = " (tag-only)"
		}
		fmt.Printf("%s (%d): %s -> %s%s\n", e.Project.Name, e.Project.ID, e.CurrentVersion, e.TargetVersion, marker)
		if !showAll {
			continue
		}
		for _, g := range e.Groups {
			title := g.Group.Title
			if title == "" {
				title = "(ungrouped)"
			}
			fmt.Printf("  [%s] %s\n", g.Size, title)
			for _, c := range g.Group.Commits {
				fmt.Printf("    %s %s\n", c.Hash[:min(7, len(c.Hash))], c.Summary())
			}
		}
	}
}

