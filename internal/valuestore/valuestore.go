// Package valuestore implements ValueStore: read(location) -> version,
// write(location, version) -> unit, dispatching to a minimal-edit backend
// per model.VersionLocation.Kind/Format so manifest files keep their
// surrounding formatting byte-for-byte outside the replaced token (spec.md
// §4.2, §9 "Value locations"). The XML backend is the exception: it
// re-serializes the document (see xmlstore).
package valuestore

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/semverx"
	"github.com/versio-release/versio/internal/valuestore/jsonstore"
	"github.com/versio-release/versio/internal/valuestore/regexstore"
	"github.com/versio-release/versio/internal/valuestore/tomlstore"
	"github.com/versio-release/versio/internal/valuestore/xmlstore"
	"github.com/versio-release/versio/internal/valuestore/yamlstore"
	"github.com/versio-release/versio/internal/verrors"
)

// TagReader/TagWriter let the tag-scheme location case delegate to
// whatever RepoGate implementation the caller wires in; this package does
// not import repogate.
type TagReader interface {
	ListTags(ctx context.Context, prefix string) ([]string, error)
}

type TagWriter interface {
	CreateTag(ctx context.Context, name, message string, annotated bool) error
}

// Store is the ValueStore contract from spec.md §4.2.
type Store struct {
	Root string // repository root; file locations are relative to it
	Tags TagReader
	Tagw TagWriter
}

// New returns a Store rooted at root, using gate for tag-scheme locations.
func New(root string, gate interface {
	TagReader
	TagWriter
}) *Store {
	return &Store{Root: root, Tags: gate, Tagw: gate}
}

// Read extracts the version string from loc.
func (s *Store) Read(ctx context.Context, loc model.VersionLocation, tagPrefix, tagSep string) (string, error) {
	switch loc.Kind {
	case model.VersionFile:
		return s.readFile(loc)
	case model.VersionTags:
		return s.readTag(ctx, loc, tagPrefix, tagSep)
	case model.VersionHook:
		return s.readHook(loc)
	default:
		return "", verrors.NewConfigError("unknown version location kind", nil)
	}
}

// Write replaces the version string at loc with newVersion.
func (s *Store) Write(ctx context.Context, loc model.VersionLocation, newVersion, tagPrefix, tagSep string, annotated bool) error {
	switch loc.Kind {
	case model.VersionFile:
		return s.writeFile(loc, newVersion)
	case model.VersionTags:
		return s.Tagw.CreateTag(ctx, tagName(tagPrefix, tagSep, newVersion), "", annotated)
	case model.VersionHook:
		return s.writeHook(loc, newVersion)
	default:
		return verrors.NewConfigError("unknown version location kind", nil)
	}
}

func tagName(prefix, sep, version string) string {
	if prefix == "" {
		return "v" + version
	}
	return prefix + sep + "v" + version
}

func (s *Store) path(file string) string {
	if s.Root == "" {
		return file
	}
	return s.Root + "/" + file
}

func (s *Store) readFile(loc model.VersionLocation) (string, error) {
	path := s.path(loc.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &verrors.LocationError{Location: path, Reason: "file not found", Cause: err}
	}
	value, err := readByFormat(loc, data)
	if err != nil {
		return "", &verrors.LocationError{Location: path, Reason: err.Error(), Cause: err}
	}
	return value, nil
}

func (s *Store) writeFile(loc model.VersionLocation, newVersion string) error {
	path := s.path(loc.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return &verrors.LocationError{Location: path, Reason: "file not found", Cause: err}
	}
	out, err := writeByFormat(loc, data, newVersion)
	if err != nil {
		return &verrors.LocationError{Location: path, Reason: err.Error(), Cause: err}
	}
	info, statErr := os.Stat(path)
	mode := os.FileMode(0o644)
	if statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		return &verrors.LocationError{Location: path, Reason: "write failed", Cause: err}
	}
	return nil
}

func readByFormat(loc model.VersionLocation, data []byte) (string, error) {
	switch loc.Format {
	case model.FormatJSON:
		return jsonstore.Read(data, atomStrings(loc.Selector))
	case model.FormatYAML:
		return yamlstore.Read(data, atomStrings(loc.Selector))
	case model.FormatTOML:
		return tomlstore.Read(data, atomStrings(loc.Selector))
	case model.FormatXML:
		return xmlstore.Read(data, atomStrings(loc.Selector))
	case model.FormatRegex:
		return regexstore.Read(data, loc.Pattern)
	default:
		return "", fmt.Errorf("unsupported format")
	}
}

func writeByFormat(loc model.VersionLocation, data []byte, newVersion string) ([]byte, error) {
	switch loc.Format {
	case model.FormatJSON:
		return jsonstore.Write(data, atomStrings(loc.Selector), newVersion)
	case model.FormatYAML:
		return yamlstore.Write(data, atomStrings(loc.Selector), newVersion)
	case model.FormatTOML:
		return tomlstore.Write(data, atomStrings(loc.Selector), newVersion)
	case model.FormatXML:
		return xmlstore.Write(data, atomStrings(loc.Selector), newVersion)
	case model.FormatRegex:
		return regexstore.Write(data, loc.Pattern, newVersion)
	default:
		return nil, fmt.Errorf("unsupported format")
	}
}

// atomStrings renders selector atoms as the plain string/int path the
// format-specific stores navigate; array indices are rendered as decimal
// strings, and the JSON, YAML and TOML navigators treat a numeric segment
// as an index when the current node is a sequence, a key otherwise --
// mirroring the "prefer map key when present, else array index" ambiguity
// rule in spec.md §4.1. The XML navigator treats every segment as a tag
// name and selects repeated siblings with "tag#N" instead.
func atomStrings(atoms []model.SelectorAtom) []string {
	out := make([]string, 0, len(atoms))
	for _, a := range atoms {
		if a.IsIndex {
			out = append(out, fmt.Sprintf("%d", a.Index))
		} else {
			out = append(out, a.Key)
		}
	}
	return out
}

func (s *Store) readTag(ctx context.Context, loc model.VersionLocation, prefix, sep string) (string, error) {
	tags, err := s.Tags.ListTags(ctx, prefix+sep+"v")
	if err != nil {
		return "", &verrors.LocationError{Location: "tags:" + prefix, Reason: "listing tags failed", Cause: err}
	}
	versions := make([]string, 0, len(tags))
	for _, t := range tags {
		versions = append(versions, strings.TrimPrefix(t, prefix+sep+"v"))
	}
	if best, ok := semverx.Max(versions); ok {
		return best, nil
	}
	if loc.TagDefault != "" {
		return loc.TagDefault, nil
	}
	return "", &verrors.LocationError{Location: "tags:" + prefix, Reason: "no matching tags and no default"}
}

func (s *Store) readHook(loc model.VersionLocation) (string, error) {
	cmd := exec.Command("sh", "-c", loc.GetCommand)
	cmd.Dir = s.Root
	out, err := cmd.Output()
	if err != nil {
		return "", &verrors.LocationError{Location: loc.GetCommand, Reason: "get hook failed", Cause: err}
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *Store) writeHook(loc model.VersionLocation, newVersion string) error {
	cmd := exec.Command("sh", "-c", loc.SetCommand+" "+shellQuote(newVersion))
	cmd.Dir = s.Root
	if err := cmd.Run(); err != nil {
		return &verrors.LocationError{Location: loc.SetCommand, Reason: "set hook failed", Cause: err}
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
