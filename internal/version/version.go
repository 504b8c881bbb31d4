// Package version models driver and browser versions as ordered tuples of
// non-negative integers, e.g. "120.0.6099.109".
//
// The zero Version is the "no version" sentinel used when nothing is cached.
// It renders as "0" and compares older than every parsed version.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a string is not a dotted integer version.
var ErrInvalid = errors.New("invalid version")

// dottedRegex matches the first dotted version (two or more components) in free text.
var dottedRegex = regexp.MustCompile(`\d+(?:\.\d+)+`)

// Version is an ordered tuple of non-negative integers.
type Version struct {
	parts []int
}

// New returns a Version from its components.
func New(parts ...int) Version {
	if len(parts) == 0 {
		return Version{}
	}
	cp := make([]int, len(parts))
	copy(cp, parts)
	return Version{parts: cp}
}

// Parse parses a dot-separated version such as "120.0.6099.109".
// Surrounding whitespace is ignored. Every component must be a non-negative integer.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	fields := strings.Split(s, ".")
	parts := make([]int, 0, len(fields))
	for i, field := range fields {
		if field == "" || strings.HasPrefix(field, "+") || strings.HasPrefix(field, "-") {
			return Version{}, fmt.Errorf("%w: %q: component %d is not a non-negative integer", ErrInvalid, s, i)
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q: component %d is not a non-negative integer", ErrInvalid, s, i)
		}
		parts = append(parts, n)
	}

	return Version{parts: parts}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Extract finds the first dotted version in free-form text such as
// "Google Chrome 120.0.6099.109 " and parses it.
func Extract(output string) (Version, error) {
	match := dottedRegex.FindString(output)
	if match == "" {
		return Version{}, fmt.Errorf("%w: no version found in %q", ErrInvalid, strings.TrimSpace(output))
	}
	return Parse(match)
}

// IsZero reports whether v is the "no version" sentinel.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Len returns the number of components.
func (v Version) Len() int {
	return len(v.parts)
}

// Parts returns a copy of the components.
func (v Version) Parts() []int {
	cp := make([]int, len(v.parts))
	copy(cp, v.parts)
	return cp
}

// String renders the dotted form, or "0" for the zero Version.
func (v Version) String() string {
	if v.IsZero() {
		return "0"
	}
	strs := make([]string, len(v.parts))
	for i, p := range v.parts {
		strs[i] = strconv.Itoa(p)
	}
	return strings.Join(strs, ".")
}

// Equal reports whether v and other have identical components.
// Versions of different lengths are never equal.
func (v Version) Equal(other Version) bool {
	if len(v.parts) != len(other.parts) {
		return false
	}
	for i := range v.parts {
		if v.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// Compare compares v and other component-wise as integers and returns
// -1, 0 or 1. The zero Version is older than any other version. When lengths
// differ the shorter version is treated as if padded with zeros; callers that
// need a strict comparison check SameShape first.
func (v Version) Compare(other Version) int {
	switch {
	case v.IsZero() && other.IsZero():
		return 0
	case v.IsZero():
		return -1
	case other.IsZero():
		return 1
	}

	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}
	for i := 0; i < n; i++ {
		a, b := component(v.parts, i), component(other.parts, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Greater reports whether v is newer than other.
func (v Version) Greater(other Version) bool {
	return v.Compare(other) > 0
}

// SameShape reports whether both versions are non-zero and have the same
// number of components.
func SameShape(a, b Version) bool {
	return !a.IsZero() && !b.IsZero() && len(a.parts) == len(b.parts)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "0" and "" decode to
// the zero Version.
func (v *Version) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "0" {
		*v = Version{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func component(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}
