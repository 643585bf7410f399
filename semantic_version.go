// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SemanticVersion represents a semantic version (major.minor.patch[-prerelease][+build]).
// Parsing and precedence follow the SemVer 2.0.0 rules implemented by Masterminds/semver;
// SemanticVersion only adapts that library to the Version interface used by the solver.
type SemanticVersion struct {
	v *semver.Version
}

// ParseSemanticVersion parses a semantic version string.
// Supports formats like: "1.2.3", "1.2.3-alpha", "1.2.3-alpha.1", "1.2.3+build".
func ParseSemanticVersion(s string) (*SemanticVersion, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %s: %w", s, err)
	}
	return &SemanticVersion{v: v}, nil
}

// String returns the string representation of the semantic version.
func (sv *SemanticVersion) String() string {
	return sv.v.String()
}

// Sort implements Version.Sort.
// Returns:
//
//	-1 if sv < other
//	 0 if sv == other
//	 1 if sv > other
//
// Build metadata is ignored for comparison, as required by SemVer 2.0.0.
func (sv *SemanticVersion) Sort(other Version) int {
	otherSV, ok := other.(*SemanticVersion)
	if !ok {
		return compareStrings(sv.String(), other.String())
	}
	return sv.v.Compare(otherSV.v)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Major returns the major version component.
func (sv *SemanticVersion) Major() int64 { return int64(sv.v.Major()) }

// Minor returns the minor version component.
func (sv *SemanticVersion) Minor() int64 { return int64(sv.v.Minor()) }

// Patch returns the patch version component.
func (sv *SemanticVersion) Patch() int64 { return int64(sv.v.Patch()) }

// Prerelease returns the prerelease identifier, or "" for a release version.
func (sv *SemanticVersion) Prerelease() string { return sv.v.Prerelease() }

// NewSemanticVersion creates a new SemanticVersion from the given major, minor, and patch versions.
func NewSemanticVersion(major, minor, patch int) *SemanticVersion {
	v := semver.New(uint64(major), uint64(minor), uint64(patch), "", "")
	return &SemanticVersion{v: &v}
}

// NewSemanticVersionWithPrerelease creates a new SemanticVersion with prerelease info.
func NewSemanticVersionWithPrerelease(major, minor, patch int, prerelease string) *SemanticVersion {
	v := semver.New(uint64(major), uint64(minor), uint64(patch), prerelease, "")
	return &SemanticVersion{v: &v}
}

// Verify interface compliance.
var (
	_ Version = (*SemanticVersion)(nil)
)
