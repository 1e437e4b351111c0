// Package config implements ConfigLoader: parsing the declarative project
// document (default filename .versio.yaml) into the typed model.Config,
// with the strict-shape and validation rules from spec.md §4.1.
//
// Decoding goes through a yaml.v3 Decoder with KnownFields(true) into the
// raw struct types of raw.go, so unknown keys are rejected at the top level
// and in every nested struct (yaml.v3 dropped UnmarshalStrict in favor of
// decoder.KnownFields).
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/verrors"
)

// DefaultFileName is the config document's default filename.
const DefaultFileName = ".versio.yaml"

// DefaultPrevTag is the prior-release marker's default name.
const DefaultPrevTag = "versio-prev"

// Default returns the assumed configuration when no document is present:
// an empty project list with angular sizes and a `*:fail` entry.
func Default() model.Config {
	sizes, _ := buildSizeMap(rawSizes{UseAngular: true}, nil)
	sizes.CatchAll = model.SizeFail
	return model.Config{
		Options: model.Options{PrevTag: DefaultPrevTag},
		Sizes:   sizes,
	}
}

// Load reads and decodes the document at path. A missing file is not an
// error: it yields Default().
func Load(path string) (model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return model.Config{}, verrors.NewConfigError("reading "+path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into a model.Config, applying every
// validation rule from spec.md §4.1.
func Parse(data []byte) (model.Config, error) {
	var doc rawDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return model.Config{}, verrors.NewConfigError("parsing document", err)
	}
	return normalize(doc)
}

func normalize(doc rawDocument) (model.Config, error) {
	cfg := model.Config{
		Options: model.Options{PrevTag: DefaultPrevTag},
	}
	if doc.Options.PrevTag != "" {
		cfg.Options.PrevTag = doc.Options.PrevTag
	}
	cfg.Options.Signing = normalizeSigning(doc.Options.Signing)
	cfg.Commit = model.CommitMeta{
		Author:  firstNonEmpty(doc.Commit.Author, "versio"),
		Email:   firstNonEmpty(doc.Commit.Email, "versio@localhost"),
		Message: firstNonEmpty(doc.Commit.Message, "chore(release): versio release"),
	}

	// A document without a sizes section gets the same sizes as Default().
	sizes := Default().Sizes
	if doc.Sizes.UseAngular || len(doc.Sizes.Map()) > 0 {
		built, err := buildSizeMap(doc.Sizes, nil)
		if err != nil {
			return model.Config{}, err
		}
		sizes = built
	}
	cfg.Sizes = sizes

	seenID := make(map[uint]bool)
	seenPrefix := make(map[string]bool)
	projects := make([]model.Project, 0, len(doc.Projects))
	for _, rp := range doc.Projects {
		p, err := normalizeProject(rp)
		if err != nil {
			return model.Config{}, err
		}
		if seenID[p.ID] {
			return model.Config{}, verrors.NewConfigError(fmt.Sprintf("duplicate project id %d", p.ID), nil)
		}
		seenID[p.ID] = true
		if p.TagPrefix != "" {
			if seenPrefix[p.TagPrefix] {
				return model.Config{}, verrors.NewConfigError(fmt.Sprintf("duplicate tag prefix %q", p.TagPrefix), nil)
			}
			seenPrefix[p.TagPrefix] = true
		}
		projects = append(projects, p)
	}
	cfg.Projects = projects

	if err := checkDependencyCycles(projects); err != nil {
		return model.Config{}, err
	}

	return cfg, nil
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func normalizeSigning(r rawSigning) model.SigningPolicy {
	return model.SigningPolicy{
		Commits: parseSigningMode(r.Commits),
		Tags:    parseSigningMode(r.Tags),
		KeyPath: r.KeyPath,
	}
}

func parseSigningMode(s string) model.SigningMode {
	switch s {
	case "on":
		return model.SigningOn
	case "annotated":
		return model.SigningAnnotatedTagsOnly
	default:
		return model.SigningOff
	}
}

func buildSizeMap(r rawSizes, _ *model.SizeMap) (model.SizeMap, error) {
	sm := model.SizeMap{ByType: map[string]model.Size{}}
	if r.UseAngular {
		sm.Breaking = model.SizeMajor
		sm.ByType["feat"] = model.SizeMinor
		sm.ByType["fix"] = model.SizePatch
		for _, t := range []string{"build", "chore", "ci", "docs", "perf", "refactor", "style", "test"} {
			sm.ByType[t] = model.SizeNone
		}
	}
	catchAllSet := false
	for sizeName, types := range r.Map() {
		size, err := model.ParseSize(sizeName)
		if err != nil {
			return model.SizeMap{}, verrors.NewConfigError(err.Error(), nil)
		}
		for _, t := range types {
			switch t {
			case "!":
				sm.Breaking = size
			case "-":
				sm.Unparseable = size
			case "*":
				sm.CatchAll = size
				catchAllSet = true
			default:
				sm.ByType[t] = size
			}
		}
	}
	if !catchAllSet && !r.UseAngular {
		return model.SizeMap{}, verrors.NewConfigError("sizes map missing a catch-all `*` entry", nil)
	}
	if !catchAllSet {
		sm.CatchAll = model.SizeNone
	}
	return sm, nil
}

func normalizeProject(r rawProject) (model.Project, error) {
	if r.Name == "" {
		return model.Project{}, verrors.NewConfigError("project missing name", nil)
	}
	root := r.Root
	if root == "" {
		root = "."
	}
	includes := r.Includes
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}

	loc, err := normalizeVersionLocation(r.Version, r.TagPrefix)
	if err != nil {
		return model.Project{}, err
	}

	also := make([]model.VersionLocation, 0, len(r.Also))
	for _, a := range r.Also {
		l, err := normalizeVersionLocation(a, r.TagPrefix)
		if err != nil {
			return model.Project{}, err
		}
		also = append(also, l)
	}

	sep := r.TagPrefixSeparator
	if sep == "" {
		sep = "-"
	}

	var changelog *model.ChangelogTarget
	if r.Changelog != nil {
		changelog = &model.ChangelogTarget{File: r.Changelog.File, Template: r.Changelog.Template}
	}

	var subs *model.Subdivision
	if r.Subs != nil {
		dirs := r.Subs.Dirs
		if dirs == "" {
			dirs = "v<>"
		} else if !strings.Contains(dirs, "<>") {
			return model.Project{}, verrors.NewConfigError(fmt.Sprintf("subs.dirs %q must contain a <> placeholder", dirs), nil)
		}
		tops := r.Subs.Tops
		if tops == nil {
			tops = []int{0, 1}
		}
		subs = &model.Subdivision{DirPattern: dirs, Tops: tops}
	}

	depends := map[uint]model.DependencyEdge{}
	for depID, rd := range r.Depends {
		edge := model.DependencyEdge{DependeeID: depID}
		if rd.Size == "match" {
			edge.Match = true
		} else {
			size, err := model.ParseSize(rd.Size)
			if err != nil {
				return model.Project{}, verrors.NewConfigError(err.Error(), nil)
			}
			edge.Size = size
		}
		for _, f := range rd.Files {
			edge.Files = append(edge.Files, model.DependencyWrite{File: f.File, Pattern: f.Pattern, Template: f.Template})
		}
		depends[depID] = edge
	}

	p := model.Project{
		ID:                 r.ID,
		Name:               r.Name,
		Root:               root,
		Includes:           includes,
		Excludes:           r.Excludes,
		Also:               also,
		TagPrefix:          r.TagPrefix,
		TagPrefixSeparator: sep,
		Changelog:          changelog,
		Labels:             r.LabelList(),
		Depends:            depends,
		Subs:               subs,
		Version:            loc,
		Hooks:              model.HooksConfig{PostWrite: r.Hooks.PostWrite},
	}
	return p, nil
}

func normalizeVersionLocation(r *rawVersion, tagPrefix string) (model.VersionLocation, error) {
	if r == nil {
		return model.VersionLocation{}, verrors.NewConfigError("project missing version", nil)
	}
	switch {
	case r.Tags != nil:
		if tagPrefix == "" {
			return model.VersionLocation{}, verrors.NewConfigError("version: tags requires tag_prefix", nil)
		}
		return model.VersionLocation{Kind: model.VersionTags, TagDefault: r.Tags.Default}, nil
	case r.Get != "" || r.Set != "":
		return model.VersionLocation{Kind: model.VersionHook, GetCommand: r.Get, SetCommand: r.Set}, nil
	case r.File != "":
		format, err := parseFormat(r)
		if err != nil {
			return model.VersionLocation{}, err
		}
		loc := model.VersionLocation{Kind: model.VersionFile, File: r.File, Format: format}
		if format == model.FormatRegex {
			loc.Pattern = r.Pattern
		} else {
			sel, err := parseSelector(r.selectorField(format))
			if err != nil {
				return model.VersionLocation{}, err
			}
			loc.Selector = sel
		}
		return loc, nil
	default:
		return model.VersionLocation{}, verrors.NewConfigError("version location must be file, tags, or get/set", nil)
	}
}

func parseFormat(r *rawVersion) (model.Format, error) {
	switch {
	case r.JSON != nil:
		return model.FormatJSON, nil
	case r.YAML != nil:
		return model.FormatYAML, nil
	case r.TOML != nil:
		return model.FormatTOML, nil
	case r.XML != nil:
		return model.FormatXML, nil
	case r.Pattern != "":
		return model.FormatRegex, nil
	default:
		return 0, verrors.NewConfigError("file version location missing a format (json|yaml|toml|xml|pattern)", nil)
	}
}

func (r *rawVersion) selectorField(format model.Format) any {
	switch format {
	case model.FormatJSON:
		return r.JSON
	case model.FormatYAML:
		return r.YAML
	case model.FormatTOML:
		return r.TOML
	case model.FormatXML:
		return r.XML
	}
	return nil
}

// parseSelector accepts either a dotted string or a list of atoms. A
// numeric atom that is also a valid map key is ambiguous in the dotted
// form; the list form disambiguates by making index-vs-key explicit.
func parseSelector(raw any) ([]model.SelectorAtom, error) {
	switch v := raw.(type) {
	case string:
		return parseDottedSelector(v), nil
	case []any:
		atoms := make([]model.SelectorAtom, 0, len(v))
		for _, item := range v {
			switch t := item.(type) {
			case int:
				atoms = append(atoms, model.SelectorAtom{Index: t, IsIndex: true})
			case string:
				atoms = append(atoms, model.SelectorAtom{Key: t})
			default:
				return nil, verrors.NewConfigError("selector atom must be a string or integer", nil)
			}
		}
		return atoms, nil
	case nil:
		return nil, verrors.NewConfigError("missing selector", nil)
	default:
		return nil, verrors.NewConfigError("selector must be a dotted string or list of atoms", nil)
	}
}

func parseDottedSelector(s string) []model.SelectorAtom {
	var atoms []model.SelectorAtom
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			part := s[start:i]
			atoms = append(atoms, model.SelectorAtom{Key: part})
			start = i + 1
		}
	}
	return atoms
}

func checkDependencyCycles(projects []model.Project) error {
	adj := map[uint][]uint{}
	for _, p := range projects {
		for depID := range p.Depends {
			adj[p.ID] = append(adj[p.ID], depID)
		}
	}
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := map[uint]int{}
	var visit func(id uint) error
	visit = func(id uint) error {
		color[id] = grey
		ids := adj[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, dep := range ids {
			switch color[dep] {
			case grey:
				return verrors.NewConfigError(fmt.Sprintf("dependency cycle through project %d", dep), nil)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	ids := make([]uint, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
