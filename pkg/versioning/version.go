// Package versioning implements the controller's anti-downgrade version
// comparison: field-wise numeric semantic-version ordering where missing
// trailing fields count as zero, so "1.0" and "1.0.0" are equal and
// "1.2" precedes "1.10".
package versioning

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Parse parses a semantic-version-shaped string. Partial versions such as
// "1" and "1.0" are coerced with zeroed trailing fields.
func Parse(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return v, nil
}

// Compare returns -1, 0, or 1 as a is ordered before, equal to, or after b.
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsDowngrade reports whether candidate is ordered strictly before current.
func IsDowngrade(candidate, current string) (bool, error) {
	cmp, err := Compare(candidate, current)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}
