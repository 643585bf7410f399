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

import "strings"

// SimpleVersion is a version that orders purely by string comparison,
// with no notion of numeric components. "2.0.0" sorts before "10.0.0"
// under SimpleVersion, unlike under SemanticVersion.
//
// Use it for package ecosystems that don't follow semver, or for test
// fixtures where exact numeric ordering doesn't matter.
//
// Example:
//
//	v1 := SimpleVersion("1.0.0")
//	v2 := SimpleVersion("2.0.0")
//	fmt.Println(v1.Sort(v2)) // prints negative number (v1 < v2)
type SimpleVersion string

// String returns the version's textual form, which is also its identity.
func (v SimpleVersion) String() string {
	return string(v)
}

// Sort compares two SimpleVersion values byte-by-byte. Returns negative,
// zero, or positive as v is less than, equal to, or greater than other.
func (v SimpleVersion) Sort(other Version) int {
	return strings.Compare(string(v), other.String())
}

var (
	_ Version = SimpleVersion("")
)
