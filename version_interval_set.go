// Copyright 2024 The University of Queensland
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
	"iter"
	"slices"
	"strings"
)

// VersionIntervalSet implements VersionSet using sorted, disjoint intervals.
// This representation efficiently handles common version constraints like ranges
// and unions.
//
// Intervals are stored in normalized form: sorted, non-empty, non-overlapping,
// and with no adjacent intervals that could be merged. This ensures efficient
// set operations and canonical string representations.
//
// Example:
//
//	set1, _ := ParseVersionRange(">=1.0.0, <2.0.0")
//	set2, _ := ParseVersionRange(">=1.5.0, <3.0.0")
//	union := set1.Union(set2) // >=1.0.0, <3.0.0
type VersionIntervalSet struct {
	intervals smallVec[versionInterval]
}

// newVersionIntervalSet creates a new VersionIntervalSet from intervals.
// The intervals are automatically normalized (sorted, merged, deduplicated).
func newVersionIntervalSet(intervals []versionInterval) *VersionIntervalSet {
	normalized := normalizeIntervals(intervals)
	return &VersionIntervalSet{intervals: newSmallVec(normalized)}
}

// intervalSetFromBounds creates a VersionSet from single lower and upper bounds.
func intervalSetFromBounds(lower, upper versionBound) VersionSet {
	if interval, ok := newInterval(lower, upper); ok {
		return &VersionIntervalSet{intervals: oneSmallVec(interval)}
	}
	return &VersionIntervalSet{}
}

// cloneIntervals creates a copy of the intervals slice for safe mutation.
func (s *VersionIntervalSet) cloneIntervals() []versionInterval {
	n := s.intervals.Len()
	if n == 0 {
		return nil
	}
	cloned := make([]versionInterval, n, n+1)
	items := s.intervals.Slice()
	copy(cloned, items)
	return cloned
}

// Empty returns a VersionSet containing no versions.
func (s *VersionIntervalSet) Empty() VersionSet {
	return &VersionIntervalSet{}
}

// Full returns a VersionSet containing all possible versions.
func (s *VersionIntervalSet) Full() VersionSet {
	return &VersionIntervalSet{
		intervals: oneSmallVec(versionInterval{
			lower: negativeInfinityBound(),
			upper: positiveInfinityBound(),
		}),
	}
}

// Singleton returns a VersionSet containing exactly one version.
func (s *VersionIntervalSet) Singleton(version Version) VersionSet {
	if version == nil {
		return &VersionIntervalSet{}
	}
	if interval, ok := newInterval(
		newLowerBound(version, true),
		newUpperBound(version, true),
	); ok {
		return &VersionIntervalSet{intervals: oneSmallVec(interval)}
	}
	return &VersionIntervalSet{}
}

// Union returns the set of versions in either this set or the other.
func (s *VersionIntervalSet) Union(other VersionSet) VersionSet {
	o := asIntervalSet(other)
	intervals := s.cloneIntervals()
	intervals = append(intervals, o.intervals.Slice()...)
	return newVersionIntervalSet(intervals)
}

// Intersection returns the set of versions in both this set and the other.
func (s *VersionIntervalSet) Intersection(other VersionSet) VersionSet {
	o := asIntervalSet(other)
	sv, ov := s.intervals.Slice(), o.intervals.Slice()
	if len(sv) == 0 || len(ov) == 0 {
		return &VersionIntervalSet{}
	}

	result := make([]versionInterval, 0, len(sv))
	i, j := 0, 0
	for i < len(sv) && j < len(ov) {
		if interval, ok := intersectInterval(sv[i], ov[j]); ok {
			result = append(result, interval)
		}

		if compareUpper(sv[i].upper, ov[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return newVersionIntervalSet(result)
}

// intersectInterval computes the intersection of two intervals.
func intersectInterval(a, b versionInterval) (versionInterval, bool) {
	return newInterval(
		laterBound(a.lower, b.lower, compareLower),    // Higher lower bound
		earlierBound(a.upper, b.upper, compareUpper), // Lower upper bound
	)
}

// Complement returns the set of versions NOT in this set.
func (s *VersionIntervalSet) Complement() VersionSet {
	sv := s.intervals.Slice()
	if len(sv) == 0 {
		return s.Full()
	}

	gaps := make([]versionInterval, 0, len(sv)+1)
	currentLower := negativeInfinityBound()

	for _, interval := range sv {
		gapUpper := interval.complementUpperBound()
		if gap, ok := newInterval(currentLower, gapUpper); ok {
			gaps = append(gaps, gap)
		}
		currentLower = interval.complementLowerBound()
	}

	if tail, ok := newInterval(currentLower, positiveInfinityBound()); ok {
		gaps = append(gaps, tail)
	}

	return newVersionIntervalSet(gaps)
}

// Contains tests if a specific version is in the set.
func (s *VersionIntervalSet) Contains(version Version) bool {
	for _, interval := range s.intervals.Slice() {
		if interval.contains(version) {
			return true
		}
	}
	return false
}

// IsEmpty returns true if the set contains no versions.
func (s *VersionIntervalSet) IsEmpty() bool {
	return s.intervals.Len() == 0
}

// IsSubset returns true if all versions in this set are also in the other set.
func (s *VersionIntervalSet) IsSubset(other VersionSet) bool {
	sv := s.intervals.Slice()
	if len(sv) == 0 {
		return true
	}

	o := asIntervalSet(other)
	ov := o.intervals.Slice()
	if len(ov) == 0 {
		return false
	}

	i, j := 0, 0
	for i < len(sv) {
		if j >= len(ov) {
			return false
		}

		if ov[j].covers(sv[i]) {
			i++
			continue
		}

		if upperLessThanLower(ov[j].upper, sv[i].lower) {
			j++
			continue
		}

		return false
	}

	return true
}

// IsDisjoint returns true if this set and the other set have no versions in common.
func (s *VersionIntervalSet) IsDisjoint(other VersionSet) bool {
	sv := s.intervals.Slice()
	if len(sv) == 0 {
		return true
	}

	o := asIntervalSet(other)
	ov := o.intervals.Slice()
	if len(ov) == 0 {
		return true
	}

	i, j := 0, 0
	for i < len(sv) && j < len(ov) {
		if sv[i].overlaps(ov[j]) {
			return false
		}

		if compareUpper(sv[i].upper, ov[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return true
}

// Simplify reduces the set to only the segments that contain at least one
// of versions. A retained segment that is also the outermost segment of the
// original set has its outer bound widened to infinity, unless that would
// take in one of versions. The result agrees with the receiver on every version in versions, but may
// disagree elsewhere - callers must only rely on that narrower guarantee.
func (s *VersionIntervalSet) Simplify(versions []Version) VersionSet {
	sv := s.intervals.Slice()
	if len(sv) == 0 || len(versions) == 0 {
		return s
	}

	kept := make([]int, 0, len(sv))
	for i, interval := range sv {
		for _, v := range versions {
			if interval.contains(v) {
				kept = append(kept, i)
				break
			}
		}
	}

	if len(kept) == 0 {
		return s
	}

	result := make([]versionInterval, len(kept))
	for n, idx := range kept {
		result[n] = sv[idx]
	}
	// addsVersion reports whether widened takes in a given version orig lacks.
	addsVersion := func(orig, widened versionInterval) bool {
		return slices.ContainsFunc(versions, func(v Version) bool { return widened.contains(v) && !orig.contains(v) })
	}
	if w := (versionInterval{lower: negativeInfinityBound(), upper: result[0].upper}); kept[0] == 0 && !addsVersion(result[0], w) {
		result[0] = w
	}
	last := len(result) - 1
	if w := (versionInterval{lower: result[last].lower, upper: positiveInfinityBound()}); kept[len(kept)-1] == len(sv)-1 && !addsVersion(result[last], w) {
		result[last] = w
	}

	return newVersionIntervalSet(result)
}

// Intervals returns an iterator over the internal version intervals.
// This enables using range-over-function syntax:
//
//	for interval := range versionSet.Intervals() {
//	    fmt.Printf("Range: %v to %v\n", interval.lower, interval.upper)
//	}
func (s *VersionIntervalSet) Intervals() iter.Seq[versionInterval] {
	return slices.Values(s.intervals.Slice())
}

// String returns a human-readable representation of the set.
// Empty sets display as "∅", full sets as "*", and intervals use standard operators.
func (s *VersionIntervalSet) String() string {
	sv := s.intervals.Slice()
	if len(sv) == 0 {
		return "∅"
	}

	if len(sv) == 1 {
		return intervalToString(sv[0])
	}

	parts := make([]string, len(sv))
	for i, interval := range sv {
		parts[i] = intervalToString(interval)
	}
	return strings.Join(parts, " || ")
}

// intervalToString converts a single interval to its string representation.
func intervalToString(interval versionInterval) string {
	if interval.lower.isNegInfinity() && interval.upper.isPosInfinity() {
		return "*"
	}

	if interval.lower.isFinite() && interval.upper.isFinite() {
		if interval.lower.version.Sort(interval.upper.version) == 0 &&
			interval.lower.inclusive && interval.upper.inclusive {
			return fmt.Sprintf("==%s", interval.lower.version)
		}
	}

	var parts []string

	if interval.lower.isFinite() {
		if interval.lower.inclusive {
			parts = append(parts, fmt.Sprintf(">=%s", interval.lower.version))
		} else {
			parts = append(parts, fmt.Sprintf(">%s", interval.lower.version))
		}
	}

	if interval.upper.isFinite() {
		if interval.upper.inclusive {
			parts = append(parts, fmt.Sprintf("<=%s", interval.upper.version))
		} else {
			parts = append(parts, fmt.Sprintf("<%s", interval.upper.version))
		}
	}

	if len(parts) == 0 {
		return "*"
	}

	return strings.Join(parts, ", ")
}

// asIntervalSet converts a VersionSet to VersionIntervalSet or panics.
// This is used internally for type assertion with a helpful error message.
func asIntervalSet(set VersionSet) *VersionIntervalSet {
	if set == nil {
		return &VersionIntervalSet{}
	}

	if iv, ok := set.(*VersionIntervalSet); ok {
		return iv
	}

	// Fallback: if the set behaves as empty/full, use that knowledge.
	if set.IsEmpty() {
		return &VersionIntervalSet{}
	}

	panic("unsupported VersionSet implementation")
}

// singletonVersionFromSet extracts a single version if the set contains exactly one.
// Returns (version, true) if singleton, (nil, false) otherwise.
func singletonVersionFromSet(set VersionSet) (Version, bool) {
	iv, ok := set.(*VersionIntervalSet)
	if !ok || iv.intervals.Len() != 1 {
		return nil, false
	}

	interval := iv.intervals.At(0)
	if !interval.lower.isFinite() || !interval.upper.isFinite() {
		return nil, false
	}

	if interval.lower.version.Sort(interval.upper.version) != 0 {
		return nil, false
	}

	if !interval.lower.inclusive || !interval.upper.inclusive {
		return nil, false
	}

	return interval.lower.version, true
}

var (
	_ VersionSet = (*VersionIntervalSet)(nil)
)
