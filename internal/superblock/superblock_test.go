package superblock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet-core/internal/types"
)

func TestBuildIsDeterministic(t *testing.T) {
	blockHashes := []types.Hash{types.HashFromBytes([]byte("b0")), types.HashFromBytes([]byte("b1"))}
	members := membersN(4)
	checkpoint := types.Checkpoint{Epoch: 42, HashPrevBlock: types.HashFromBytes([]byte("tip"))}

	a := Build(3, checkpoint, blockHashes, members)
	b := Build(3, checkpoint, blockHashes, members)

	if a.Hash() != b.Hash() {
		t.Error("Build over identical inputs produced different hashes")
	}
	if a.BlocksMerkleRoot != b.BlocksMerkleRoot {
		t.Error("BlocksMerkleRoot differs across identical builds")
	}
	if a.ARSMerkleRoot != b.ARSMerkleRoot {
		t.Error("ARSMerkleRoot differs across identical builds")
	}
}

func TestBuildDiffersOnBlockSet(t *testing.T) {
	members := membersN(4)
	checkpoint := types.Checkpoint{Epoch: 1}

	a := Build(0, checkpoint, []types.Hash{types.HashFromBytes([]byte("b0"))}, members)
	b := Build(0, checkpoint, []types.Hash{types.HashFromBytes([]byte("b1"))}, members)

	if a.Hash() == b.Hash() {
		t.Error("superblocks over different block sets must not hash identically")
	}
}

func TestBuildFieldsMatchInputs(t *testing.T) {
	checkpoint := types.Checkpoint{Epoch: 42, HashPrevBlock: types.HashFromBytes([]byte("tip"))}
	blockHashes := []types.Hash{types.HashFromBytes([]byte("b0"))}
	members := membersN(3)

	sb := Build(9, checkpoint, blockHashes, members)

	require.Equal(t, uint32(9), sb.Index)
	require.Equal(t, checkpoint, sb.LastBlockCheckpoint)
	require.False(t, sb.BlocksMerkleRoot.IsZero())
	require.False(t, sb.ARSMerkleRoot.IsZero())
}

func TestBuildDiffersOnARS(t *testing.T) {
	checkpoint := types.Checkpoint{Epoch: 1}
	blockHashes := []types.Hash{types.HashFromBytes([]byte("b0"))}

	a := Build(0, checkpoint, blockHashes, membersN(4))
	b := Build(0, checkpoint, blockHashes, membersN(5))

	if a.ARSMerkleRoot == b.ARSMerkleRoot {
		t.Error("different ARS membership must produce different ARS merkle roots")
	}
	if a.Hash() == b.Hash() {
		t.Error("superblocks over different ARS membership must not hash identically")
	}
}
