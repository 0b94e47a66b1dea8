package chain

import "github.com/witnet-go/witnet-core/internal/types"

// PeerBeaconConsensus is the result of folding every outbound peer's
// LastBeacon into a single decision (spec.md §4.6 "Peer-beacon
// consensus").
type PeerBeaconConsensus struct {
	SuperblockConsensus types.Checkpoint
	HasSuperblockConsensus bool
	BlockConsensus         types.Checkpoint
	HasBlockConsensus      bool
	IsBlockStrict          bool // false when block_consensus is only a plurality, not a supermajority
	Agreeing               []int // indices of peers agreeing with BlockConsensus
	Iced                    []int // indices of peers dropped for disagreeing or silence
}

// ComputeBeaconConsensus implements spec.md §4.6: given up to outboundLimit
// peer beacons (missing peers counted as "no beacon", padded up to the
// limit), find the super-block checkpoint reaching the ⌈L·t/100⌉
// threshold, then the block checkpoint among peers agreeing on that
// super-block — strict if it also clears the threshold, otherwise a
// plurality used as "soft" consensus.
func ComputeBeaconConsensus(beacons []*types.LastBeacon, outboundLimit int, thresholdPercent uint32) PeerBeaconConsensus {
	L := outboundLimit
	if L <= 0 {
		L = len(beacons)
	}
	needed := ceilDiv(L*int(thresholdPercent), 100)

	sbCounts := make(map[types.Checkpoint][]int)
	for i := 0; i < L; i++ {
		if i >= len(beacons) || beacons[i] == nil {
			continue // "no beacon" peers never vote
		}
		cp := beacons[i].HighestSuperBlockCheckpoint
		sbCounts[cp] = append(sbCounts[cp], i)
	}

	var result PeerBeaconConsensus
	var winningSB types.Checkpoint
	bestVotes := 0
	for cp, idxs := range sbCounts {
		if len(idxs) > bestVotes {
			bestVotes = len(idxs)
			winningSB = cp
		}
	}
	if bestVotes > 0 && bestVotes >= needed {
		result.SuperblockConsensus = winningSB
		result.HasSuperblockConsensus = true
	} else {
		return result
	}

	blockCounts := make(map[types.Checkpoint][]int)
	for _, i := range sbCounts[winningSB] {
		cp := beacons[i].HighestBlockCheckpoint
		blockCounts[cp] = append(blockCounts[cp], i)
	}
	var winningBlock types.Checkpoint
	bestBlockVotes := 0
	for cp, idxs := range blockCounts {
		if len(idxs) > bestBlockVotes {
			bestBlockVotes = len(idxs)
			winningBlock = cp
		}
	}
	if bestBlockVotes > 0 {
		result.BlockConsensus = winningBlock
		result.HasBlockConsensus = true
		result.IsBlockStrict = bestBlockVotes >= needed
		result.Agreeing = blockCounts[winningBlock]
	}

	for i := 0; i < L; i++ {
		agrees := false
		for _, a := range result.Agreeing {
			if a == i {
				agrees = true
				break
			}
		}
		if !agrees {
			result.Iced = append(result.Iced, i)
		}
	}

	return result
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
