// Package model holds the data types shared by every stage of the plan
// engine: the configuration document, project identity, version locations,
// the size lattice, commit/PR grouping, and the plan itself. Keeping them in
// one leaf package is what lets HistoricalProjector re-materialize a Config
// from an arbitrary commit using the exact same types ConfigLoader produces
// for HEAD -- the two-config design in SPEC_FULL.md §9 depends on there
// being a single Config type, not two.
package model

import "fmt"

// Size is a member of the ordered lattice {fail, major, minor, patch, none}.
type Size int

const (
	SizeNone Size = iota
	SizePatch
	SizeMinor
	SizeMajor
	SizeFail
)

func (s Size) String() string {
	switch s {
	case SizeFail:
		return "fail"
	case SizeMajor:
		return "major"
	case SizeMinor:
		return "minor"
	case SizePatch:
		return "patch"
	default:
		return "none"
	}
}

// Max returns the greater of s and other under the lattice order.
func (s Size) Max(other Size) Size {
	if other > s {
		return other
	}
	return s
}

// ParseSize maps a configuration string to a Size; the empty/unknown string
// maps to SizeNone so callers can treat a missing key as "no bump".
func ParseSize(s string) (Size, error) {
	switch s {
	case "fail":
		return SizeFail, nil
	case "major":
		return SizeMajor, nil
	case "minor":
		return SizeMinor, nil
	case "patch":
		return SizePatch, nil
	case "none", "":
		return SizeNone, nil
	default:
		return SizeNone, fmt.Errorf("unrecognized size %q", s)
	}
}

// SizeMap maps a conventional-commit type to a Size, plus the three special
// keys `!`, `-`, and `*` described in spec.md §3.
type SizeMap struct {
	ByType map[string]Size
	// Breaking is the size for `!`-suffixed types or a BREAKING CHANGE
	// trailer.
	Breaking Size
	// Unparseable is the size for commits that are not conventional
	// commits at all (the `-` key).
	Unparseable Size
	// CatchAll is the size for any type not otherwise matched (the `*`
	// key). ConfigLoader requires a `*` entry in a sizes section without
	// use_angular; with use_angular and no `*` entry it is SizeNone.
	CatchAll Size
}

// angularDefaults are overlaid, individually overridable, when
// sizes.use_angular is true.
var angularDefaults = map[string]Size{
	"feat":     SizeMinor,
	"fix":      SizePatch,
	"build":    SizeNone,
	"chore":    SizeNone,
	"ci":       SizeNone,
	"docs":     SizeNone,
	"perf":     SizeNone,
	"refactor": SizeNone,
	"style":    SizeNone,
	"test":     SizeNone,
}

// SizeOf resolves the size for a parsed commit type, honoring Breaking when
// breaking is true.
func (m SizeMap) SizeOf(commitType string, breaking bool) Size {
	if breaking {
		return m.Breaking
	}
	if s, ok := m.ByType[commitType]; ok {
		return s
	}
	return m.CatchAll
}

// VersionKind distinguishes the three VersionLocation cases.
type VersionKind int

const (
	VersionFile VersionKind = iota
	VersionTags
	VersionHook
)

// SelectorAtom is one step of a structured selector: either a map key or an
// array index, never both.
type SelectorAtom struct {
	Key      string
	Index    int
	IsIndex  bool
}

// Format names the manifest encoding a file-selector location is read
// through.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatXML
	FormatRegex
)

// VersionLocation is the tagged variant from spec.md §3/§4.2/§9: a
// file-selector (further split by Format), a tag-scheme, or a shell
// get/set hook pair.
type VersionLocation struct {
	Kind VersionKind

	// VersionFile fields.
	File     string
	Format   Format
	Selector []SelectorAtom // unused when Format == FormatRegex
	Pattern  string         // used when Format == FormatRegex

	// VersionTags fields.
	TagDefault string

	// VersionHook fields.
	GetCommand string
	SetCommand string
}

// DependencyEdge is one entry of a project's `depends` map: how much a
// dependee's advance should propagate, and where to also write the
// dependee's new version.
type DependencyEdge struct {
	DependeeID uint
	// Match is set for `size: match`; otherwise Size holds the named size.
	// Match takes priority over Size when set.
	Match bool
	Size  Size
	Files []DependencyWrite
}

// DependencyWrite is one sub-file write-location triggered by a dependency
// advance, with an optional value template (its sole variable is the raw
// version).
type DependencyWrite struct {
	File     string
	Pattern  string // regex location, per scenario 2 of spec.md §8
	Template string // optional text/template body; "" means the raw version
}

// Subdivision is the optional directory-pattern rule from spec.md §3.
type Subdivision struct {
	DirPattern string // contains the literal placeholder "<>"
	Tops       []int  // "top-level" majors that don't require a subdirectory
}

// RequiresDir reports whether major requires a subdirectory to exist, and
// what that directory is.
func (s Subdivision) RequiresDir(major int) (dir string, required bool) {
	for _, t := range s.Tops {
		if t == major {
			return "", false
		}
	}
	return substitutePlaceholder(s.DirPattern, major), true
}

func substitutePlaceholder(pattern string, major int) string {
	out := make([]byte, 0, len(pattern)+2)
	for i := 0; i < len(pattern); i++ {
		if i+1 < len(pattern) && pattern[i] == '<' && pattern[i+1] == '>' {
			out = append(out, []byte(fmt.Sprintf("%d", major))...)
			i++
			continue
		}
		out = append(out, pattern[i])
	}
	return string(out)
}

// ChangelogTarget names the file a project's changelog is rendered into and
// the template used, per spec.md §6.
type ChangelogTarget struct {
	File     string
	Template string
}

// Project is the immutable per-project configuration from spec.md §3.
type Project struct {
	ID                  uint
	Name                string
	Root                string
	Includes            []string
	Excludes            []string
	Also                []VersionLocation
	TagPrefix           string
	TagPrefixSeparator  string
	Changelog           *ChangelogTarget
	Labels              []string
	Depends             map[uint]DependencyEdge
	Subs                *Subdivision
	Version             VersionLocation
	Hooks               HooksConfig
}

// HooksConfig carries the optional post-write shell hook.
type HooksConfig struct {
	PostWrite string
}

// SigningMode distinguishes off/on/annotated-only signing policies.
type SigningMode int

const (
	SigningOff SigningMode = iota
	SigningOn
	SigningAnnotatedTagsOnly
)

// SigningPolicy is the concrete enum backing "the signing policy is on"
// language in spec.md §4.8/§6.
type SigningPolicy struct {
	Commits SigningMode
	Tags    SigningMode
	KeyPath string
}

// CommitMeta is the commit identity PlanExecutor uses in phase 5.
type CommitMeta struct {
	Author  string
	Email   string
	Message string // text/template body, executed with no data (no fields are available)
}

// Options is the top-level `options` document section.
type Options struct {
	PrevTag string
	Signing SigningPolicy
}

// Config is the root decoded document: the unit ConfigLoader produces for
// HEAD and HistoricalProjector re-produces for any ancestor commit.
type Config struct {
	Options  Options
	Projects []Project
	Sizes    SizeMap
	Commit   CommitMeta
}

// ProjectByID returns the project with the given id, or false.
func (c Config) ProjectByID(id uint) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Identity is a commit author or committer: a name and an email address.
type Identity struct {
	Name  string
	Email string
}

// Commit is the VCS-agnostic commit record CommitWalker yields.
type Commit struct {
	Hash         string
	Author       Identity
	Committer    Identity
	CommitTime   int64 // unix seconds, committer time
	Message      string
	Parents      []string
	ChangedPaths map[string]struct{}
}

// Summary returns the first line of Message.
func (c Commit) Summary() string {
	for i, r := range c.Message {
		if r == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// PRGroup groups commits belonging to one pull request, or the trailing
// "Other commits" pseudo-group when none applied.
type PRGroup struct {
	Number     int // 0 when pseudo-group
	Title      string
	URL        string
	Commits    []Commit
	BestEffort bool // squash retained verbatim because PR/branch unknown
}

// IsOther reports whether g is the pseudo-group for unmatched commits.
func (g PRGroup) IsOther() bool { return g.Number == 0 && g.Title == "Other commits" }

// NewestCommitTime returns the commit time of g's newest commit, used for
// the deterministic group tie-break in spec.md §4.5.
func (g PRGroup) NewestCommitTime() int64 {
	var max int64
	for _, c := range g.Commits {
		if c.CommitTime > max {
			max = c.CommitTime
		}
	}
	return max
}

// PlanGroup is a PRGroup annotated with its per-project aggregated size,
// retained in a Plan entry for changelog rendering and `--show-all`.
type PlanGroup struct {
	Group PRGroup
	Size  Size
}

// PlanEntry is one project's computed outcome.
type PlanEntry struct {
	Project         Project
	CurrentVersion  string
	TargetVersion   string
	Groups          []PlanGroup
	DependencyBumps map[uint]Size // dependee id -> size that propagated
	TagOnly         bool
}

// Plan is the derived decision record from spec.md §3.
type Plan struct {
	Entries []PlanEntry
}

// EntryFor returns the entry for the given project id, or false.
func (p Plan) EntryFor(id uint) (PlanEntry, bool) {
	for _, e := range p.Entries {
		if e.Project.ID == id {
			return e, true
		}
	}
	return PlanEntry{}, false
}

// Changed reports whether any entry advances past its current version.
func (p Plan) Changed() bool {
	for _, e := range p.Entries {
		if e.TargetVersion != e.CurrentVersion {
			return true
		}
	}
	return false
}
