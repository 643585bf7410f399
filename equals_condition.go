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

// EqualsCondition pins a dependency to one exact version. It is the
// condition a root package's own requirement compiles down to (see
// extractDecisionVersion in solver.go) and the condition a positive
// Term reduces to once termFromAllowedSet sees a singleton range.
//
// For anything looser than an exact pin, use VersionSetCondition with
// ParseVersionRange.
//
// Example:
//
//	cond := EqualsCondition{Version: SimpleVersion("1.0.0")}
//	fmt.Println(cond.Satisfies(SimpleVersion("1.0.0"))) // true
//	fmt.Println(cond.Satisfies(SimpleVersion("1.0.1"))) // false
type EqualsCondition struct {
	Version Version
}

// Satisfies reports whether ver is the same version under the Version
// interface's own ordering, not under string identity - two distinct
// Version values that Sort to zero (e.g. differing only in representation)
// must compare equal here.
func (c EqualsCondition) Satisfies(ver Version) bool {
	return c.Version.Sort(ver) == 0
}

// String returns a human-readable representation of the condition.
func (c EqualsCondition) String() string {
	return fmt.Sprintf("== %s", c.Version)
}

var (
	_ Condition = EqualsCondition{}
)
