package chain

import "github.com/witnet-go/witnet-core/internal/types"

// SyncTarget is what ComputeBeaconConsensus resolved the chain should
// catch up to.
type SyncTarget struct {
	Block      types.Checkpoint
	Superblock types.Checkpoint
}

// BatchSplitKind classifies how a received block batch relates to the
// sync target (spec.md §4.6 "Block-batch split during sync").
type BatchSplitKind uint8

const (
	TargetNotReached BatchSplitKind = iota
	SyncWithoutCandidate
	SyncWithCandidate
)

func (k BatchSplitKind) String() string {
	switch k {
	case TargetNotReached:
		return "TargetNotReached"
	case SyncWithoutCandidate:
		return "SyncWithoutCandidate"
	case SyncWithCandidate:
		return "SyncWithCandidate"
	default:
		return "Unknown"
	}
}

// BatchSplit is the result of classifying a batch against the target.
type BatchSplit struct {
	Kind   BatchSplitKind
	First  []*types.Block // blocks up to (and including, for SyncWithoutCandidate/SyncWithCandidate) the target epoch
	Second []*types.Block // remaining blocks after the target superblock is built
}

// SplitBatch implements spec.md §4.6: classify a batch of blocks (ordered
// by ascending epoch) against the sync target and the current superblock
// index, detecting the revert case that must be rejected with
// WrongBlocksForSuperblock before any split is attempted.
func SplitBatch(blocks []*types.Block, target SyncTarget, superblockPeriod uint32, currentSuperblockIndex uint32) (BatchSplit, error) {
	for _, b := range blocks {
		epoch := b.Header.Beacon.Epoch
		if epoch < currentSuperblockIndex*superblockPeriod && currentSuperblockIndex > target.Superblock.Epoch {
			return BatchSplit{}, types.ErrWrongBlocksForSuperblock(epoch, currentSuperblockIndex, currentSuperblockIndex)
		}
	}

	var firstBoundary = -1
	for i, b := range blocks {
		if b.Header.Beacon.Epoch > target.Block.Epoch {
			firstBoundary = i
			break
		}
	}
	if firstBoundary == -1 {
		return BatchSplit{Kind: TargetNotReached, First: blocks}, nil
	}

	nextSuperblockEpoch := (currentSuperblockIndex + 1) * superblockPeriod
	secondBoundary := -1
	for i := firstBoundary; i < len(blocks); i++ {
		if blocks[i].Header.Beacon.Epoch > nextSuperblockEpoch {
			secondBoundary = i
			break
		}
	}
	if secondBoundary == -1 {
		return BatchSplit{
			Kind:   SyncWithoutCandidate,
			First:  blocks[:firstBoundary],
			Second: blocks[firstBoundary:],
		}, nil
	}
	return BatchSplit{
		Kind:   SyncWithCandidate,
		First:  blocks[:firstBoundary],
		Second: blocks[firstBoundary:],
	}, nil
}
