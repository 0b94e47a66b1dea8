// Package superblock implements the periodic superblock aggregator
// (spec.md §4.7): every superblock_period epochs, the chain collapses
// the intervening blocks into a superblock — merkle roots over the
// included block hashes and over the ARS — signed by a rotating
// committee until a supermajority of votes accumulates.
package superblock

import (
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/wire"
)

// SuperBlock is the byte-level-deterministic summary of one superblock
// period: a merkle root over the consolidated block hashes included and
// a merkle root over the ARS membership at consolidation time.
type SuperBlock struct {
	Index               uint32           `json:"index"`
	LastBlockCheckpoint types.Checkpoint `json:"lastBlockCheckpoint"`
	BlocksMerkleRoot    types.Hash       `json:"blocksMerkleRoot"`
	ARSMerkleRoot       types.Hash       `json:"arsMerkleRoot"`
}

// Build computes the superblock for the period ending at lastBlock, over
// blockHashes (the epoch-ascending hashes consolidated this period) and
// arsMembers (the ARS snapshot at consolidation time, spec.md §4.7).
func Build(index uint32, lastBlock types.Checkpoint, blockHashes []types.Hash, arsMembers []types.PublicKeyHash) SuperBlock {
	return SuperBlock{
		Index:               index,
		LastBlockCheckpoint: lastBlock,
		BlocksMerkleRoot:    wire.MerkleRoot(blockHashes),
		ARSMerkleRoot:       arsMerkleRoot(arsMembers),
	}
}

// Hash computes the superblock's own identifying hash: the bytes a
// committee member signs a Vote over.
func (s SuperBlock) Hash() types.Hash {
	buf := make([]byte, 0, 4+4+32+32+32)
	buf = appendU32(buf, s.Index)
	buf = appendU32(buf, s.LastBlockCheckpoint.Epoch)
	buf = append(buf, s.LastBlockCheckpoint.HashPrevBlock[:]...)
	buf = append(buf, s.BlocksMerkleRoot[:]...)
	buf = append(buf, s.ARSMerkleRoot[:]...)
	return types.HashFromBytes(buf)
}

func appendU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// arsMerkleRoot hashes every member's PKH directly: the ARS carries no
// per-member transaction body to hash, unlike a block's transaction
// kinds, so the leaves are the 20-byte PKHs padded into Hash values.
func arsMerkleRoot(members []types.PublicKeyHash) types.Hash {
	leaves := make([]types.Hash, len(members))
	for i, pkh := range members {
		leaves[i] = types.HashFromBytes(pkh[:])
	}
	return wire.MerkleRoot(leaves)
}
