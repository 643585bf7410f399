package pubgrub

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDerivationTree_Nil(t *testing.T) {
	t.Parallel()
	require.Nil(t, BuildDerivationTree(nil))
}

func TestBuildDerivationTree_External(t *testing.T) {
	t.Parallel()

	v1 := mustSemver(t, "1.0.0")
	dep := NewTerm(MakeName("b"), EqualsCondition{Version: v1})
	inc := NewIncompatibilityFromDependency(MakeName("a"), v1, dep)

	arena := newArena()
	arena.alloc(inc)

	tree := BuildDerivationTree(inc)
	require.NotNil(t, tree)
	assert.Equal(t, NodeExternal, tree.Kind)
	assert.Equal(t, KindFromDependency, tree.Cause)
	assert.Equal(t, inc.ID, tree.ID)

	if diff := cmp.Diff(len(inc.Terms), len(tree.Terms)); diff != "" {
		t.Errorf("terms length mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildDerivationTree_SharesCauseById ensures that a cause referenced by
// two different conflicts resolves to the identical *DerivationTree value,
// keyed off the shared incompatibility id rather than pointer identity.
func TestBuildDerivationTree_SharesCauseById(t *testing.T) {
	t.Parallel()

	arena := newArena()

	v1 := mustSemver(t, "1.0.0")
	base := NewIncompatibilityNoVersions(NewTerm(MakeName("a"), EqualsCondition{Version: v1}))
	arena.alloc(base)

	sibling := NewIncompatibilityNoVersions(NewTerm(MakeName("b"), EqualsCondition{Version: v1}))
	arena.alloc(sibling)

	conflictA := NewIncompatibilityConflict([]Term{base.Terms[0], sibling.Terms[0]}, base, sibling)
	arena.alloc(conflictA)

	// A second conflict re-derives from the same `base` cause, which must
	// collapse to a single shared node in the resulting tree.
	conflictB := NewIncompatibilityConflict([]Term{base.Terms[0]}, base, sibling)
	arena.alloc(conflictB)

	top := NewIncompatibilityConflict([]Term{conflictA.Terms[0]}, conflictA, conflictB)
	arena.alloc(top)

	tree := BuildDerivationTree(top)
	require.NotNil(t, tree)
	require.Equal(t, NodeDerived, tree.Kind)

	left := tree.Cause1  // conflictA
	right := tree.Cause2 // conflictB
	require.NotNil(t, left)
	require.NotNil(t, right)

	require.NotNil(t, left.Cause1)
	require.NotNil(t, right.Cause1)

	// Both paths reach the same underlying `base` incompatibility id, so the
	// builder must return the same *DerivationTree pointer for both.
	assert.Same(t, left.Cause1, right.Cause1, "derivation tree must share nodes by incompatibility id")
	assert.Equal(t, base.ID, left.Cause1.ID)
}

func TestBuildDerivationTree_UnallocatedNodesAreNotShared(t *testing.T) {
	t.Parallel()

	v1 := mustSemver(t, "1.0.0")
	// Neither cause here was allocated into an arena, so both keep the
	// sentinel noIncompatibilityID and must not collapse into one node even
	// though they happen to carry identical terms.
	causeA := NewIncompatibilityNoVersions(NewTerm(MakeName("a"), EqualsCondition{Version: v1}))
	causeB := NewIncompatibilityNoVersions(NewTerm(MakeName("a"), EqualsCondition{Version: v1}))
	top := NewIncompatibilityConflict([]Term{causeA.Terms[0]}, causeA, causeB)

	tree := BuildDerivationTree(top)
	require.NotNil(t, tree)
	assert.NotSame(t, tree.Cause1, tree.Cause2)
}
