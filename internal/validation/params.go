// Package validation implements the transaction validator (spec.md §4.2)
// and the block validator (spec.md §4.5): the pure, deterministic rules
// every node applies identically.
package validation

// ConsensusParams collects the network constants validation rules are
// parameterized by (spec.md treats these as an explicit capability per §9
// "Global state" design note, not a package-level global).
type ConsensusParams struct {
	CollateralMinimum           uint64
	CollateralAge               uint32 // blocks an output must age before it is mature collateral
	MaxVTWeight                 uint64
	MaxDRWeight                 uint64
	EpochsWithMinimumDifficulty uint32
	MinimumDifficulty           uint32
	MiningBackupFactor          uint32
	CollectEligibleBefore       uint32 // epochs a DR waits per round before forcing a stage transition
	ExtraRounds                 uint32
	ActivityWindow              int // ARS sliding-window size
}

// DefaultParams mirrors the order-of-magnitude constants used throughout
// spec.md's worked examples (§8), not a specific network's genesis config.
var DefaultParams = ConsensusParams{
	CollateralMinimum:           1_000_000_000, // 1 WIT, using the 10^9 nanoWIT base unit
	CollateralAge:               1000,
	MaxVTWeight:                 1_000_000,
	MaxDRWeight:                 500_000,
	EpochsWithMinimumDifficulty: 750,
	MinimumDifficulty:           0x0007_ffff,
	MiningBackupFactor:          4,
	CollectEligibleBefore:       5,
	ExtraRounds:                 3,
	ActivityWindow:              100_000,
}

// BlockRewardFunc is block_reward(epoch): a halving schedule, expressed as a
// function rather than a table so tests can override it per spec.md §8 S1
// ("Block reward at epoch 0 = R").
type BlockRewardFunc func(epoch uint32) uint64

// DefaultBlockReward halves every halvingPeriod epochs starting from an
// initial reward, floored at zero once fully halved away.
func DefaultBlockReward(initial uint64, halvingPeriod uint32) BlockRewardFunc {
	return func(epoch uint32) uint64 {
		if halvingPeriod == 0 {
			return initial
		}
		halvings := epoch / halvingPeriod
		if halvings >= 64 {
			return 0
		}
		return initial >> halvings
	}
}
