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

import "fmt"

// boundKind distinguishes a finite version bound from the two unbounded
// sentinels. Comparisons never inspect the zero value of the Version field
// unless kind is boundKindFinite.
type boundKind int8

const (
	boundKindNegInf  boundKind = -1 // -infinity: no lower limit
	boundKindFinite  boundKind = 0  // a concrete version
	boundKindPosInf  boundKind = 1  // +infinity: no upper limit
)

// versionBound is one endpoint (lower or upper) of a versionInterval. A
// bound is either finite - pinned to a concrete version, with inclusivity
// recorded separately - or one of the two unbounded sentinels.
//
// Whether a bound plays the role of a lower or upper endpoint is not
// recorded on the value itself; callers track that through which of
// compareLower/compareUpper they use, since the tie-break between
// Included and Excluded at equal version flips depending on the role.
type versionBound struct {
	version   Version
	inclusive bool
	kind      boundKind
}

// newLowerBound builds a finite lower bound, or -infinity if version is nil.
func newLowerBound(version Version, inclusive bool) versionBound {
	if version == nil {
		return negativeInfinityBound()
	}
	return versionBound{version: version, inclusive: inclusive, kind: boundKindFinite}
}

// newUpperBound builds a finite upper bound, or +infinity if version is nil.
func newUpperBound(version Version, inclusive bool) versionBound {
	if version == nil {
		return positiveInfinityBound()
	}
	return versionBound{version: version, inclusive: inclusive, kind: boundKindFinite}
}

// negativeInfinityBound returns the unbounded-below sentinel.
func negativeInfinityBound() versionBound {
	return versionBound{kind: boundKindNegInf, inclusive: true}
}

// positiveInfinityBound returns the unbounded-above sentinel.
func positiveInfinityBound() versionBound {
	return versionBound{kind: boundKindPosInf, inclusive: true}
}

func (b versionBound) isNegInfinity() bool { return b.kind == boundKindNegInf }
func (b versionBound) isPosInfinity() bool { return b.kind == boundKindPosInf }
func (b versionBound) isFinite() bool      { return b.kind == boundKindFinite }

// String renders the bound for diagnostics; finite bounds show their
// inclusivity as a bracket, matching conventional interval notation.
func (b versionBound) String() string {
	switch b.kind {
	case boundKindNegInf:
		return "-inf"
	case boundKindPosInf:
		return "+inf"
	default:
		if b.inclusive {
			return fmt.Sprintf("[%s]", b.version)
		}
		return fmt.Sprintf("(%s)", b.version)
	}
}

// compareLower orders two bounds as lower endpoints: at an equal finite
// version, an inclusive bound sorts before an exclusive one, since
// "[x, ..." admits more versions below x's neighbourhood than "(x, ...".
func compareLower(a, b versionBound) int {
	switch {
	case a.kind == boundKindNegInf && b.kind == boundKindNegInf:
		return 0
	case a.kind == boundKindNegInf:
		return -1
	case b.kind == boundKindNegInf:
		return 1
	case a.kind == boundKindPosInf && b.kind == boundKindPosInf:
		return 0
	case a.kind == boundKindPosInf:
		return 1
	case b.kind == boundKindPosInf:
		return -1
	}

	if cmp := a.version.Sort(b.version); cmp != 0 {
		return cmp
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return -1
	}
	return 1
}

// compareUpper orders two bounds as upper endpoints: at an equal finite
// version, an exclusive bound sorts before an inclusive one, the mirror
// image of compareLower's tie-break.
func compareUpper(a, b versionBound) int {
	switch {
	case a.kind == boundKindPosInf && b.kind == boundKindPosInf:
		return 0
	case a.kind == boundKindPosInf:
		return 1
	case b.kind == boundKindPosInf:
		return -1
	case a.kind == boundKindNegInf && b.kind == boundKindNegInf:
		return 0
	case a.kind == boundKindNegInf:
		return -1
	case b.kind == boundKindNegInf:
		return 1
	}

	if cmp := a.version.Sort(b.version); cmp != 0 {
		return cmp
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return 1
	}
	return -1
}
