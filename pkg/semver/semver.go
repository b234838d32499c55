// Package semver implements the strict "v{major}.{minor}.{patch}" version
// scheme used for release tags. Parsing is deliberately unforgiving: a tag
// either matches the canonical rendering or it is rejected, never coerced.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	mastersemver "github.com/Masterminds/semver/v3"
)

// Element selects which component Bump increments.
type Element int

const (
	Major Element = iota
	Minor
	Patch
)

// String returns the lowercase element name.
func (e Element) String() string {
	switch e {
	case Major:
		return "major"
	case Minor:
		return "minor"
	default:
		return "patch"
	}
}

// ParseElement maps a case-insensitive element name to an Element.
// Unknown names fall back to Patch, matching the bump default.
func ParseElement(text string) Element {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "major":
		return Major
	case "minor":
		return Minor
	default:
		return Patch
	}
}

// Version is an immutable major.minor.patch triple. Name always equals the
// canonical "v{major}.{minor}.{patch}" rendering of the numeric components.
type Version struct {
	Name  string `json:"name"`
	Major uint64 `json:"major"`
	Minor uint64 `json:"minor"`
	Patch uint64 `json:"patch"`
}

// New builds a Version from its numeric components.
func New(major, minor, patch uint64) Version {
	v := Version{Major: major, Minor: minor, Patch: patch}
	v.Name = v.String()
	return v
}

// String renders the canonical tag name, "v1.2.3".
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Numeric renders the bare triple without the "v" prefix, "1.2.3".
func (v Version) Numeric() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse reads a version string with an optional leading "v". Exactly three
// dot-separated numeric components are accepted, or four when the fourth is a
// legacy build number consistent with the reconstructed three-part string
// (some older project files carry "1.2.3.0" style versions).
func Parse(text string) (Version, error) {
	trimmed := strings.TrimPrefix(text, "v")
	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 && len(parts) != 4 {
		return Version{}, fmt.Errorf("invalid semantic version %q: expected 3 or 4 components, got %d", text, len(parts))
	}

	nums := make([]uint64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid semantic version %q: component %q is not a number", text, part)
		}
		nums[i] = n
	}

	v := New(nums[0], nums[1], nums[2])
	switch len(parts) {
	case 3:
		if v.String() != "v"+trimmed {
			return Version{}, fmt.Errorf("invalid semantic version %q: not in canonical form", text)
		}
	case 4:
		if fmt.Sprintf("%s.%d", v, nums[3]) != "v"+trimmed {
			return Version{}, fmt.Errorf("invalid semantic version %q: malformed 4-part version", text)
		}
	}
	return v, nil
}

// MustParse is Parse for trusted constants; it panics on error.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether text parses as a strict semantic version.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// Bump returns a new Version with the given element incremented. Major zeroes
// minor and patch, Minor zeroes patch, Patch touches only itself. The receiver
// is never mutated.
func (v Version) Bump(element Element) Version {
	cur := mastersemver.New(v.Major, v.Minor, v.Patch, "", "")
	var next mastersemver.Version
	switch element {
	case Major:
		next = cur.IncMajor()
	case Minor:
		next = cur.IncMinor()
	default:
		next = cur.IncPatch()
	}
	return New(next.Major(), next.Minor(), next.Patch())
}

// Compare orders two versions numerically: -1 when a < b, 0 when equal,
// +1 when a > b. Lexicographic name comparison is wrong across digit-width
// boundaries (v9.0.0 vs v10.0.0), so all ordering goes through here.
func Compare(a, b Version) int {
	av := mastersemver.New(a.Major, a.Minor, a.Patch, "", "")
	bv := mastersemver.New(b.Major, b.Minor, b.Patch, "", "")
	return av.Compare(bv)
}

// CompareNames orders two version name strings, falling back to plain string
// comparison when either side is not a strict semantic version.
func CompareNames(a, b string) int {
	av, aerr := Parse(a)
	bv, berr := Parse(b)
	if aerr != nil || berr != nil {
		return strings.Compare(a, b)
	}
	return Compare(av, bv)
}
