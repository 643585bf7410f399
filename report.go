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
	"strings"
)

// Reporter formats a DerivationTree into a human-readable error message.
type Reporter interface {
	// Report generates a human-readable error message from a derivation tree.
	Report(tree *DerivationTree) string
}

// DefaultReporter produces readable error messages with hierarchical structure
type DefaultReporter struct{}

// Report implements Reporter
func (r *DefaultReporter) Report(tree *DerivationTree) string {
	if tree == nil {
		return "no solution found"
	}

	var lines []string
	r.reportNode(tree, &lines, 0, make(map[*DerivationTree]bool))
	return strings.Join(lines, "\n")
}

func (r *DefaultReporter) reportNode(node *DerivationTree, lines *[]string, depth int, visited map[*DerivationTree]bool) {
	if visited[node] {
		return
	}
	visited[node] = true

	indent := strings.Repeat("  ", depth)

	switch node.Cause {
	case KindNoVersions:
		if len(node.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("%sNo versions of %s satisfy the constraint", indent, node.Terms[0]))
		}

	case KindFromDependency:
		if len(node.Terms) == 2 {
			// Terms are {P@v, not D@d}, unnegate the dependency for display
			dep := node.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%sBecause %s %s depends on %s",
				indent, node.Package.Value(), node.Version, dep))
		}

	case KindConflict:
		if node.Kind == NodeDerived && node.Cause1 != nil && node.Cause2 != nil {
			*lines = append(*lines, fmt.Sprintf("%sBecause:", indent))
			r.reportNode(node.Cause1, lines, depth+1, visited)
			*lines = append(*lines, fmt.Sprintf("%sand:", indent))
			r.reportNode(node.Cause2, lines, depth+1, visited)

			// Explain the result
			if len(node.Terms) == 0 {
				*lines = append(*lines, fmt.Sprintf("%sversion solving has failed.", indent))
			} else if len(node.Terms) == 1 {
				*lines = append(*lines, fmt.Sprintf("%s%s is forbidden.", indent, node.Terms[0]))
			} else {
				var termStrs []string
				for _, term := range node.Terms {
					termStrs = append(termStrs, term.String())
				}
				*lines = append(*lines, fmt.Sprintf("%sthese constraints conflict: %s",
					indent, strings.Join(termStrs, " and ")))
			}
		}

	default:
		*lines = append(*lines, fmt.Sprintf("%s%s", indent, describeNode(node)))
	}
}

// CollapsedReporter produces a more compact error format
type CollapsedReporter struct{}

// Report implements Reporter with a collapsed format
func (r *CollapsedReporter) Report(tree *DerivationTree) string {
	if tree == nil {
		return "no solution found"
	}

	var lines []string
	r.collectLines(tree, &lines, make(map[*DerivationTree]bool))

	if len(lines) == 0 {
		return "version solving failed"
	}

	// Join with "And because" for readability
	result := lines[0]
	for i := 1; i < len(lines); i++ {
		result += "\nAnd because " + lines[i]
	}
	return result
}

func (r *CollapsedReporter) collectLines(node *DerivationTree, lines *[]string, visited map[*DerivationTree]bool) {
	if visited[node] {
		return
	}
	visited[node] = true

	switch node.Cause {
	case KindNoVersions:
		if len(node.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("no versions of %s satisfy the constraint", node.Terms[0]))
		}

	case KindFromDependency:
		if len(node.Terms) == 2 {
			// Terms are {P@v, not D@d}, unnegate the dependency for display
			dep := node.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%s %s depends on %s",
				node.Package.Value(), node.Version, dep))
		}

	case KindConflict:
		if node.Kind == NodeDerived && node.Cause1 != nil && node.Cause2 != nil {
			// Recursively collect from causes
			r.collectLines(node.Cause1, lines, visited)
			r.collectLines(node.Cause2, lines, visited)

			// Add conclusion
			if len(node.Terms) == 1 {
				*lines = append(*lines, fmt.Sprintf("%s is forbidden", node.Terms[0]))
			} else if len(node.Terms) > 1 {
				var termStrs []string
				for _, term := range node.Terms {
					termStrs = append(termStrs, term.String())
				}
				*lines = append(*lines, fmt.Sprintf("these constraints conflict: %s",
					strings.Join(termStrs, " and ")))
			}
		}

	default:
		*lines = append(*lines, describeNode(node))
	}
}

// describeNode renders a leaf node the same way Incompatibility.String does.
func describeNode(node *DerivationTree) string {
	if len(node.Terms) == 0 {
		return "version solving failed"
	}
	if len(node.Terms) == 1 {
		return fmt.Sprintf("%s is forbidden", node.Terms[0])
	}
	var parts []string
	for _, term := range node.Terms {
		parts = append(parts, term.String())
	}
	return fmt.Sprintf("%s are incompatible", strings.Join(parts, " and "))
}
