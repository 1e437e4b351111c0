// Package planexec implements PlanExecutor: applying a committed Plan as
// file edits, changelog renders, a hook, a commit, tags, and a push, in the
// seven ordered phases of spec.md §4.8, each a transaction boundary.
package planexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/template"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/valuestore"
	"github.com/versio-release/versio/internal/verrors"
	"github.com/versio-release/versio/internal/vlog"
)

// Gate is the subset of repogate.Gate PlanExecutor drives.
type Gate interface {
	Commit(paths []string, authorName, authorEmail, message string) (string, error)
	CreateTag(ctx context.Context, name, message string, annotated bool) error
	MoveTag(name, commitHash, message string, annotated bool) error
	ResolveTag(name string) (string, bool, error)
	Push(ctx context.Context, branch string, tags []string) error
}

// ApplyOptions controls which phases run and how.
type ApplyOptions struct {
	DryRun        bool
	ChangelogOnly bool
	LockTags      bool
	Branch        string
	SignTags      bool
}

// Executor applies Plans.
type Executor struct {
	Store *valuestore.Store
	Gate  Gate
	Log   *vlog.Logger
}

// Apply runs phases 1-7 against plan. All phases are idempotent on
// success; any failure before phase 7 leaves the working tree modified but
// nothing pushed (spec.md §5, §7).
func (e *Executor) Apply(ctx context.Context, cfg model.Config, plan model.Plan, opts ApplyOptions) error {
	if !plan.Changed() {
		return nil
	}

	changedFiles, err := e.writeLocations(ctx, cfg, plan)
	if err != nil {
		return err
	}

	rendered, err := e.renderChangelogs(plan)
	if err != nil {
		return err
	}
	changedFiles = append(changedFiles, rendered...)

	if hook := firstConfiguredHook(plan); hook != "" {
		if err := runHook(hook); err != nil {
			return err
		}
	}

	if opts.DryRun || opts.ChangelogOnly {
		return nil
	}

	commitHash, err := e.commit(cfg, changedFiles)
	if err != nil {
		return err
	}

	tagNames, err := e.tag(ctx, cfg, plan, commitHash, opts)
	if err != nil {
		return err
	}

	return e.Gate.Push(ctx, opts.Branch, tagNames)
}

// writeLocations is phase 1: ValueStore.write on each project's primary
// location and `also` entries (file and hook locations; tag-scheme
// locations are left to phase 6's per-project tags), plus dependency
// sub-file writes rendered through the dependent's value template.
func (e *Executor) writeLocations(ctx context.Context, cfg model.Config, plan model.Plan) ([]string, error) {
	var files []string
	for _, entry := range plan.Entries {
		if entry.TargetVersion == entry.CurrentVersion {
			continue
		}
		p := entry.Project
		if p.Version.Kind != model.VersionTags {
			if err := e.Store.Write(ctx, p.Version, entry.TargetVersion, p.TagPrefix, p.TagPrefixSeparator, false); err != nil {
				return nil, err
			}
			if p.Version.Kind == model.VersionFile {
				files = append(files, p.Version.File)
			}
		}
		for _, loc := range p.Also {
			if loc.Kind == model.VersionTags {
				continue
			}
			if err := e.Store.Write(ctx, loc, entry.TargetVersion, p.TagPrefix, p.TagPrefixSeparator, false); err != nil {
				return nil, err
			}
			if loc.Kind == model.VersionFile {
				files = append(files, loc.File)
			}
		}
	}

	for _, entry := range plan.Entries {
		p := entry.Project
		for depID, edge := range p.Depends {
			depTarget, ok := resolveDependeeTarget(plan, depID)
			if !ok {
				continue
			}
			if _, bumped := entry.DependencyBumps[depID]; !bumped && !edge.Match {
				continue
			}
			for _, write := range edge.Files {
				value, err := renderTemplate(write.Template, depTarget)
				if err != nil {
					return nil, &verrors.LocationError{Location: write.File, Reason: err.Error(), DependentID: p.ID, HasDependent: true}
				}
				loc := model.VersionLocation{Kind: model.VersionFile, File: write.File, Format: model.FormatRegex, Pattern: write.Pattern}
				if err := e.Store.Write(ctx, loc, value, "", "", false); err != nil {
					if le, ok := err.(*verrors.LocationError); ok {
						le.DependentID = p.ID
						le.HasDependent = true
					}
					return nil, err
				}
				files = append(files, write.File)
			}
		}
	}
	return files, nil
}

func resolveDependeeTarget(plan model.Plan, depID uint) (string, bool) {
	e, ok := plan.EntryFor(depID)
	if !ok {
		return "", false
	}
	return e.TargetVersion, true
}

func renderTemplate(tmplBody, version string) (string, error) {
	if tmplBody == "" {
		return version, nil
	}
	t, err := template.New("value").Parse(tmplBody)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, version); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderChangelogs is phase 2.
func (e *Executor) renderChangelogs(plan model.Plan) ([]string, error) {
	var files []string
	for _, entry := range plan.Entries {
		if entry.Project.Changelog == nil {
			continue
		}
		rel := changelog.Release{Project: entry.Project, Version: entry.TargetVersion, Groups: entry.Groups}
		body, err := changelog.Render(*entry.Project.Changelog, rel)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(entry.Project.Changelog.File, []byte(body), 0o644); err != nil {
			return nil, err
		}
		files = append(files, entry.Project.Changelog.File)
	}
	return files, nil
}

func firstConfiguredHook(plan model.Plan) string {
	for _, entry := range plan.Entries {
		if entry.Project.Hooks.PostWrite != "" {
			return entry.Project.Hooks.PostWrite
		}
	}
	return ""
}

// runHook is phase 3: a non-zero exit aborts the release with HookError
// before any staging.
func runHook(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Run(); err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return &verrors.HookError{Command: command, ExitCode: exitCode, Cause: err}
	}
	return nil
}

// commit is phase 5.
func (e *Executor) commit(cfg model.Config, changedFiles []string) (string, error) {
	msg, err := renderCommitMessage(cfg.Commit.Message)
	if err != nil {
		return "", err
	}
	return e.Gate.Commit(dedupe(changedFiles), cfg.Commit.Author, cfg.Commit.Email, msg)
}

func renderCommitMessage(tmplBody string) (string, error) {
	if !strings.Contains(tmplBody, "{{") {
		return tmplBody, nil
	}
	t, err := template.New("commit").Parse(tmplBody)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func dedupe(files []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// markerPayload is the JSON body of the prior-release marker tag, per
// spec.md §6.
type markerPayload struct {
	Versions map[string]string `json:"versions"`
}

// tag is phase 6: move the prior-release marker, and create per-project
// tags for projects whose target changed. The lock-tags policy forbids
// moving an existing per-project tag (new ones may still be created).
func (e *Executor) tag(ctx context.Context, cfg model.Config, plan model.Plan, commitHash string, opts ApplyOptions) ([]string, error) {
	versions := map[string]string{}
	for _, entry := range plan.Entries {
		versions[fmt.Sprintf("%d", entry.Project.ID)] = entry.TargetVersion
	}
	payload, err := json.Marshal(markerPayload{Versions: versions})
	if err != nil {
		return nil, err
	}

	if err := e.Gate.MoveTag(cfg.Options.PrevTag, commitHash, string(payload), true); err != nil {
		return nil, err
	}
	tagNames := []string{cfg.Options.PrevTag}

	for _, entry := range plan.Entries {
		p := entry.Project
		if p.TagPrefix == "" || entry.TargetVersion == entry.CurrentVersion {
			continue
		}
		name := p.TagPrefix + p.TagPrefixSeparator + "v" + entry.TargetVersion
		_, existedAtMarker, err := e.Gate.ResolveTag(name)
		if err != nil {
			return nil, err
		}
		if existedAtMarker {
			if opts.LockTags {
				continue
			}
			if err := e.Gate.MoveTag(name, commitHash, "", opts.SignTags); err != nil {
				return nil, err
			}
		} else if err := e.Gate.CreateTag(ctx, name, "", opts.SignTags); err != nil {
			return nil, err
		}
		tagNames = append(tagNames, name)
	}
	return tagNames, nil
}
