package reputation

import (
	"math/big"

	"github.com/witnet-go/witnet-core/internal/types"
)

// maxU32 is the ceiling every eligibility target is a fraction of: a
// hash whose first 4 bytes are 0xFFFFFFFF.
var maxU32 = big.NewInt(0xFFFFFFFF)

// CommitEligibilityTarget computes the difficulty target a committer's VRF
// proof hash must not exceed (spec.md §4.2):
//
//	target = floor(maxU32 * (trs(pkh)+1) * witnesses * (round+1) / (total_active_reputation + active_identities))
//
// Adding 1 to trs(pkh) guarantees every identity, even one with zero
// reputation, keeps a non-zero chance. Widening by (round+1) reflects
// extra backup rounds relaxing the target once the normal round fails to
// gather enough commits (spec.md §4.3 "extra rounds").
func CommitEligibilityTarget(e *Engine, pkh types.PublicKeyHash, witnesses uint16, round uint32) types.Hash {
	totalActiveRep := e.TotalActiveReputation()
	activeIdentities := uint64(e.ActiveIdentitiesCount())
	if activeIdentities == 0 {
		activeIdentities = 1
	}
	denom := totalActiveRep + activeIdentities
	if denom == 0 {
		denom = 1
	}

	ownRep := uint64(e.TRS(pkh)) + 1
	numer := new(big.Int).Mul(maxU32, big.NewInt(int64(ownRep)))
	numer.Mul(numer, big.NewInt(int64(witnesses)))
	numer.Mul(numer, big.NewInt(int64(round)+1))

	target := new(big.Int).Div(numer, big.NewInt(int64(denom)))
	return clampToU32Hash(target)
}

// ApplyMinimumDifficultyFloor clamps target so it never falls below (i.e.
// never becomes *tighter* than) the floor implied by minimumDifficulty,
// active only for the network's first epochs_with_minimum_difficulty
// epochs (spec.md §4.2).
func ApplyMinimumDifficultyFloor(target types.Hash, minimumDifficulty uint32, epoch, epochsWithMinimumDifficulty uint32) types.Hash {
	if epoch >= epochsWithMinimumDifficulty {
		return target
	}
	floor := types.HashWithFirstU32(minimumDifficulty)
	if target.Cmp(floor) < 0 {
		return floor
	}
	return target
}

// BlockEligibilityTarget computes the per-epoch mining lottery target:
// every active identity gets an equal shot, widened by the mining backup
// factor once no "primary" miner has claimed the epoch (spec.md §4.5).
//
//	target = floor(maxU32 * mining_backup_factor / active_identities)
func BlockEligibilityTarget(activeIdentities int, miningBackupFactor uint32) types.Hash {
	if activeIdentities <= 0 {
		activeIdentities = 1
	}
	numer := new(big.Int).Mul(maxU32, big.NewInt(int64(miningBackupFactor)))
	target := new(big.Int).Div(numer, big.NewInt(int64(activeIdentities)))
	return clampToU32Hash(target)
}

func clampToU32Hash(v *big.Int) types.Hash {
	if v.Cmp(maxU32) >= 0 {
		return types.HashWithFirstU32(0xFFFFFFFF)
	}
	if v.Sign() < 0 {
		return types.Hash{}
	}
	return types.HashWithFirstU32(uint32(v.Uint64()))
}
