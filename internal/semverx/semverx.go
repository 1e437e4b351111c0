// Package semverx centralizes every semver parse/compare/bump operation
// behind Masterminds/semver/v3, so no other package needs to import it
// directly. Canonicalization (no leading zeros, always MAJOR.MINOR.PATCH)
// falls out of round-tripping through semver.Version.String.
package semverx

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/versio-release/versio/internal/model"
)

// Parse parses a MAJOR.MINOR.PATCH string, rejecting anything semver.
// NewVersion would accept but the plan engine's location contract (spec.md
// §3 VersionLocation invariant) does not: pre-release and build metadata.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid version: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return nil, fmt.Errorf("%q must be a bare MAJOR.MINOR.PATCH version", s)
	}
	return v, nil
}

// Canonical reparses and restringifies s, stripping any leading zeros.
func Canonical(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Bump applies size to current and returns the new canonical version
// string. SizeNone and SizeFail return current unchanged (fail is rejected
// long before Bump is reached by the caller).
func Bump(current string, size model.Size) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}
	switch size {
	case model.SizeMajor:
		nv := v.IncMajor()
		return nv.String(), nil
	case model.SizeMinor:
		nv := v.IncMinor()
		return nv.String(), nil
	case model.SizePatch:
		nv := v.IncPatch()
		return nv.String(), nil
	default:
		return v.String(), nil
	}
}

// Max returns the lexicographically-... no: the semver-max of the given
// version strings, skipping ones that fail to parse. ValueStore's tag-scheme
// read uses this to pick the current version among the repository's tags.
func Max(versions []string) (string, bool) {
	var best *semver.Version
	for _, s := range versions {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", false
	}
	return best.String(), true
}

// GTE reports whether a >= b under semver ordering.
func GTE(a, b string) (bool, error) {
	va, err := Parse(a)
	if err != nil {
		return false, err
	}
	vb, err := Parse(b)
	if err != nil {
		return false, err
	}
	return va.Compare(vb) >= 0, nil
}
