package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/crypto"
)

func fourHashes() []crypto.Hash {
	return []crypto.Hash{
		crypto.HashOf([]byte("a")),
		crypto.HashOf([]byte("b")),
		crypto.HashOf([]byte("c")),
		crypto.HashOf([]byte("d")),
	}
}

func TestRootStableUnderPermutation(t *testing.T) {
	leaves := fourHashes()
	want := New(leaves).RootHash()

	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, perm := range permutations {
		permuted := make([]crypto.Hash, len(leaves))
		for i, idx := range perm {
			permuted[i] = leaves[idx]
		}
		require.Equal(t, want, New(permuted).RootHash())
	}
}

func TestRootHasSevenNodes(t *testing.T) {
	leaves := fourHashes()
	tree := New(leaves)
	require.Len(t, tree.BreadthFirst(), 7)
}

func TestEmptyTreeRootIsZero(t *testing.T) {
	require.Equal(t, crypto.ZeroHash, New(nil).RootHash())
}

func TestOddLeafCountPadsWithEmpty(t *testing.T) {
	leaves := fourHashes()[:3]
	tree := New(leaves)
	require.NotEqual(t, crypto.ZeroHash, tree.RootHash())
	require.Len(t, tree.Leaves(), 3)
}
