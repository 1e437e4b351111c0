// Package planbuild implements PlanBuilder, the central algorithm of
// spec.md §4.7: combining the current configuration, the stitched commit
// groups, the historical projector, and the size map into a Plan.
package planbuild

import (
	"fmt"
	"sort"

	"github.com/versio-release/versio/internal/convcommit"
	"github.com/versio-release/versio/internal/globset"
	"github.com/versio-release/versio/internal/historical"
	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/semverx"
	"github.com/versio-release/versio/internal/verrors"
)

// CurrentVersions supplies each project's version as read by ValueStore;
// PlanBuilder never reads files itself so it stays pure over its inputs
// (spec.md §8 "Plan output is pure").
type CurrentVersions map[uint]string

// Options controls policy toggles that alter step 5 and the subdivision
// guard of the algorithm.
type Options struct {
	LockTags bool
	// DirExists reports whether the given repo-relative directory exists
	// in the commit the plan targets. Nil skips the subdivision guard
	// entirely (used by callers that only need sizes, not the guard).
	DirExists func(dir string) bool
}

// Build runs the six steps of spec.md §4.7 and returns the resulting Plan.
func Build(cfg model.Config, groups []model.PRGroup, projector *historical.Projector, current CurrentVersions, opts Options) (model.Plan, error) {
	induced := map[uint]model.Size{}
	planGroups := map[uint][]model.PlanGroup{}
	coveredAtAll := map[uint]bool{}

	// Step 1: seed.
	for _, p := range cfg.Projects {
		induced[p.ID] = model.SizeNone
	}

	// Step 2 + 3: per-group aggregation, then direct advance.
	for _, g := range groups {
		perProject := map[uint]model.Size{}
		for _, c := range g.Commits {
			parsed := convcommit.Parse(c.Message)
			size := sizeOfCommit(cfg.Sizes, parsed)
			for _, p := range cfg.Projects {
				if !projectExistedAndCoversAt(projector, p, c) {
					continue
				}
				coveredAtAll[p.ID] = true
				if size > perProject[p.ID] {
					perProject[p.ID] = size
				}
				if size == model.SizeFail {
					return model.Plan{}, &verrors.PolicyFail{
						CommitHash:    c.Hash,
						CommitSummary: c.Summary(),
						Type:          parsed.Type,
					}
				}
			}
		}
		for id, s := range perProject {
			planGroups[id] = append(planGroups[id], model.PlanGroup{Group: g, Size: s})
			if s > induced[id] {
				induced[id] = s
			}
		}
	}

	// Step 4: dependency propagation to a fixed point. Sizes only
	// increase and the lattice is finite, so this terminates; cycles are
	// rejected at config-load time (internal/config checkDependencyCycles).
	matchTargets := map[uint]bool{}
	changed := true
	for changed {
		changed = false
		for _, q := range cfg.Projects {
			for depID, edge := range q.Depends {
				depSize, ok := induced[depID]
				if !ok || depSize == model.SizeNone {
					continue
				}
				if edge.Match {
					if !matchTargets[q.ID] {
						matchTargets[q.ID] = true
						changed = true
					}
					continue
				}
				if edge.Size > induced[q.ID] {
					induced[q.ID] = edge.Size
					changed = true
				}
			}
		}
	}

	// Steps 3/6 continued: bump each project's target and build entries.
	entries := make([]model.PlanEntry, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		cur, ok := current[p.ID]
		if !ok {
			return model.Plan{}, &verrors.LocationError{Location: p.Name, Reason: "no current version supplied"}
		}
		size := induced[p.ID]
		target := cur
		if size != model.SizeNone {
			bumped, err := semverx.Bump(cur, size)
			if err != nil {
				return model.Plan{}, err
			}
			target = bumped
		}

		dependencyBumps := map[uint]model.Size{}
		for depID, edge := range p.Depends {
			if edge.Match && matchTargets[p.ID] {
				if depTarget, ok := lookupTarget(cfg, depID, current, induced); ok {
					target = depTarget
				}
				dependencyBumps[depID] = induced[depID]
			} else if s, ok := induced[depID]; ok && s != model.SizeNone && edge.Size != model.SizeNone {
				dependencyBumps[depID] = edge.Size
			}
		}

		tagOnly := size == model.SizeNone && coveredAtAll[p.ID]
		if opts.LockTags {
			tagOnly = false
		}

		gte, err := semverx.GTE(target, cur)
		if err != nil {
			return model.Plan{}, err
		}
		if !gte {
			return model.Plan{}, fmt.Errorf("internal error: computed target %s for project %d is less than current %s", target, p.ID, cur)
		}

		if target == cur && len(dependencyBumps) == 0 && !coveredAtAll[p.ID] {
			continue // no plan entry: no direct coverage, no dependency advance (spec.md §3 invariant)
		}

		if err := checkSubdivision(p, cur, target, opts.DirExists); err != nil {
			return model.Plan{}, err
		}

		entries = append(entries, model.PlanEntry{
			Project:         p,
			CurrentVersion:  cur,
			TargetVersion:   target,
			Groups:          planGroups[p.ID],
			DependencyBumps: dependencyBumps,
			TagOnly:         tagOnly,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Project.ID < entries[j].Project.ID })
	return model.Plan{Entries: entries}, nil
}

func lookupTarget(cfg model.Config, depID uint, current CurrentVersions, induced map[uint]model.Size) (string, bool) {
	cur, ok := current[depID]
	if !ok {
		return "", false
	}
	size := induced[depID]
	if size == model.SizeNone {
		return cur, true
	}
	bumped, err := semverx.Bump(cur, size)
	if err != nil {
		return "", false
	}
	return bumped, true
}

func sizeOfCommit(sizes model.SizeMap, parsed convcommit.Parsed) model.Size {
	if !parsed.Parseable {
		return sizes.Unparseable
	}
	return sizes.SizeOf(parsed.Type, parsed.Breaking)
}

// projectExistedAndCoversAt is the historical coverage rule from spec.md
// §4.6: a commit covers project p iff p exists in the config at the
// commit AND some changed path, projected at that commit, matches p's
// include/exclude globs. Coverage is historical; project identity,
// membership, and write targets are current (spec.md §9).
func projectExistedAndCoversAt(projector *historical.Projector, currentProject model.Project, c model.Commit) bool {
	histCfg := projector.At(c.Hash)
	histProject, ok := histCfg.ProjectByID(currentProject.ID)
	if !ok {
		return false
	}
	set := globset.New(histProject.Root, histProject.Includes, histProject.Excludes)
	return set.MatchesAny(c.ChangedPaths)
}

func checkSubdivision(p model.Project, cur, target string, dirExists func(string) bool) error {
	if p.Subs == nil || dirExists == nil {
		return nil
	}
	curV, err := semverx.Parse(cur)
	if err != nil {
		return err
	}
	targetV, err := semverx.Parse(target)
	if err != nil {
		return err
	}
	if targetV.Major() <= curV.Major() {
		return nil
	}
	dir, required := p.Subs.RequiresDir(int(targetV.Major()))
	if !required {
		return nil
	}
	if dirExists(dir) {
		return nil
	}
	return &verrors.SubdivisionWarning{ProjectID: p.ID, ExpectedDir: dir}
}
