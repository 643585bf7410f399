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

// DerivationNodeKind distinguishes a leaf cause from a merged conflict node
// inside a DerivationTree.
type DerivationNodeKind int

const (
	// NodeExternal is a leaf produced directly by the provider or the root's
	// requirements; its Cause is KindNoVersions or KindFromDependency.
	NodeExternal DerivationNodeKind = iota
	// NodeDerived is an internal node formed by conflict resolution,
	// unioning the terms of two earlier incompatibilities.
	NodeDerived
)

// DerivationTree is the structured proof that no solution exists. It is
// built once, after solving fails, by unfolding the terminal
// incompatibility's DerivedFrom chain back to its external leaves. Unlike
// the raw Incompatibility graph, a DerivationTree is a plain value that a
// Reporter can walk without reaching back into the solver's arena.
//
// Nodes that cite the same incompatibility more than once (a derived
// incompatibility used as the cause of two different conflicts) share a
// single *DerivationTree value, keyed by the incompatibility's arena id -
// walkers that track visited nodes by pointer identity see the sharing for
// free.
type DerivationTree struct {
	ID      IncompatibilityID
	Kind    DerivationNodeKind
	Terms   []Term
	Cause   IncompatibilityKind // meaningful when Kind == NodeExternal
	Package Name
	Version Version
	Cause1  *DerivationTree
	Cause2  *DerivationTree
}

// BuildDerivationTree unfolds a terminal incompatibility into a
// DerivationTree, preserving shared sub-proofs by arena id.
func BuildDerivationTree(root *Incompatibility) *DerivationTree {
	if root == nil {
		return nil
	}
	shared := make(map[IncompatibilityID]*DerivationTree)
	return buildDerivationNode(root, shared)
}

func buildDerivationNode(inc *Incompatibility, shared map[IncompatibilityID]*DerivationTree) *DerivationTree {
	if inc == nil {
		return nil
	}
	if inc.ID != noIncompatibilityID {
		if existing, ok := shared[inc.ID]; ok {
			return existing
		}
	}

	node := &DerivationTree{
		ID:      inc.ID,
		Terms:   inc.Terms,
		Cause:   inc.Kind,
		Package: inc.Package,
		Version: inc.Version,
	}
	if inc.ID != noIncompatibilityID {
		shared[inc.ID] = node
	}

	if inc.Kind == KindConflict && inc.Cause1 != nil && inc.Cause2 != nil {
		node.Kind = NodeDerived
		node.Cause1 = buildDerivationNode(inc.Cause1, shared)
		node.Cause2 = buildDerivationNode(inc.Cause2, shared)
	} else {
		node.Kind = NodeExternal
	}

	return node
}
