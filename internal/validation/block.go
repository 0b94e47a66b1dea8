package validation

import (
	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/utxo"
	"github.com/witnet-go/witnet-core/internal/wire"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// BlockContext carries chain-tip state the header checks need, on top of
// the per-transaction Context every body transaction is validated with
// (spec.md §4.5).
type BlockContext struct {
	Tx Context

	PreviousTip       types.Checkpoint
	CurrentEpoch      uint32
	ActiveIdentities  int
	MiningBackupFactor uint32
	ProducerPKH       types.PublicKeyHash

	// TallyStageDRPointers lists every dr_pointer in TALLY stage at the
	// tip, for cross-checking against the block's claimed tallies
	// (spec.md §4.5).
	TallyStageDRPointers func() []types.Hash
}

// BlockResult summarizes what a validated block produced, for the caller
// to fold into chain state.
type BlockResult struct {
	TotalFee uint64
	Diff     *utxo.Diff
}

// ValidateBlock implements spec.md §4.5 "Block validation": header checks,
// merkle root agreement, then every transaction in fixed kind order
// against a single shared utxo diff.
func ValidateBlock(b *types.Block, bctx *BlockContext) (BlockResult, error) {
	if err := validateBlockHeader(b, bctx); err != nil {
		return BlockResult{}, err
	}
	if err := validateMerkleRoots(b); err != nil {
		return BlockResult{}, err
	}

	var totalFee, vtWeight, drWeight uint64
	for _, tx := range b.ValueTransfers {
		tx := tx
		res, err := validateValueTransfer(&tx, &bctx.Tx)
		if err != nil {
			return BlockResult{}, err
		}
		totalFee += res.Fee
		vtWeight += res.Weight
	}
	if vtWeight > bctx.Tx.Params.MaxVTWeight {
		return BlockResult{}, types.ErrTotalVtWeightLimitExceeded(vtWeight, bctx.Tx.Params.MaxVTWeight)
	}
	for _, tx := range b.DataRequests {
		tx := tx
		res, err := validateDataRequest(&tx, &bctx.Tx)
		if err != nil {
			return BlockResult{}, err
		}
		totalFee += res.Fee
		drWeight += res.Weight
	}
	if drWeight > bctx.Tx.Params.MaxDRWeight {
		return BlockResult{}, types.ErrTotalDrWeightLimitExceeded(drWeight, bctx.Tx.Params.MaxDRWeight)
	}
	for _, tx := range b.Commits {
		tx := tx
		if _, err := validateCommit(&tx, &bctx.Tx); err != nil {
			return BlockResult{}, err
		}
	}
	for _, tx := range b.Reveals {
		tx := tx
		if _, err := validateReveal(&tx, &bctx.Tx); err != nil {
			return BlockResult{}, err
		}
	}
	var tallyStagePointers []types.Hash
	if bctx.TallyStageDRPointers != nil {
		tallyStagePointers = bctx.TallyStageDRPointers()
	}
	tallyFee, err := validateTallies(b.Tallies, tallyStagePointers, &bctx.Tx)
	if err != nil {
		return BlockResult{}, err
	}
	totalFee += tallyFee
	for _, tx := range b.Stakes {
		tx := tx
		res, err := validateStake(&tx, &bctx.Tx)
		if err != nil {
			return BlockResult{}, err
		}
		totalFee += res.Fee
	}
	for _, tx := range b.Unstakes {
		tx := tx
		if _, err := validateUnstake(&tx, &bctx.Tx); err != nil {
			return BlockResult{}, err
		}
	}

	if b.Mint == nil {
		return BlockResult{}, types.ErrMismatchedMintValue(0, totalFee, bctx.Tx.BlockReward)
	}
	bctx.Tx.FeesCollected = totalFee
	if _, err := validateMint(b.Mint, &bctx.Tx); err != nil {
		return BlockResult{}, err
	}

	return BlockResult{TotalFee: totalFee, Diff: bctx.Tx.Diff}, nil
}

// validateBlockHeader checks the beacon chains to the tip, the producer's
// block-eligibility VRF proof, and the producer's signature over the
// header.
func validateBlockHeader(b *types.Block, bctx *BlockContext) error {
	if b.Header.Beacon.Epoch != bctx.CurrentEpoch {
		if b.Header.Beacon.Epoch > bctx.CurrentEpoch {
			return types.ErrBlockFromFuture(b.Header.Beacon.Epoch, bctx.CurrentEpoch)
		}
		return types.ErrBlockOlderThanTip(b.Header.Beacon.Epoch, bctx.PreviousTip.Epoch)
	}
	if b.Header.Beacon.HashPrevBlock != bctx.PreviousTip.HashPrevBlock {
		return types.ErrPreviousHashMismatch(b.Header.Beacon.HashPrevBlock, bctx.PreviousTip.HashPrevBlock)
	}

	alpha := VRFInput(bctx.PreviousTip.HashPrevBlock, types.HashWithFirstU32(b.Header.Beacon.Epoch))
	if _, err := xcrypto.VRFVerify(b.Header.Proof.Proof, alpha); err != nil {
		return types.ErrNotValidPoe()
	}
	proofHash := xcrypto.VRFProofHash(b.Header.Proof.Proof)
	target := reputation.BlockEligibilityTarget(bctx.ActiveIdentities, bctx.MiningBackupFactor)
	if !proofHash.LessOrEqual(target) {
		return types.ErrBlockEligibilityDoesNotMeetTarget(proofHash, target)
	}

	headerHash := wire.BlockHash(b)
	if err := xcrypto.VerifyTransactionSignature(headerHash, b.BlockSig, b.Header.Proof.Proof.PKH); err != nil {
		return types.ErrBlockVerifySignatureFail(err.Error())
	}

	return nil
}

func validateMerkleRoots(b *types.Block) error {
	got := wire.MerkleRootsOf(b)
	want := b.Header.MerkleRoots
	checks := []struct {
		kind       string
		got, want types.Hash
	}{
		{"Mint", got.Mint, want.Mint},
		{"ValueTransfer", got.ValueTransfer, want.ValueTransfer},
		{"DataRequest", got.DataRequest, want.DataRequest},
		{"Commit", got.Commit, want.Commit},
		{"Reveal", got.Reveal, want.Reveal},
		{"Tally", got.Tally, want.Tally},
		{"Stake", got.Stake, want.Stake},
		{"Unstake", got.Unstake, want.Unstake},
	}
	for _, c := range checks {
		if c.got != c.want {
			return types.ErrNotValidMerkleTree(c.kind)
		}
	}
	return nil
}

// ValidateGenesisBlock implements spec.md §4.5's distinct genesis rules:
// no inputs anywhere, hash_prev_block is the network's bootstrap hash, and
// total minted value must not overflow.
func ValidateGenesisBlock(b *types.Block, bootstrapHash types.Hash) error {
	if b.Header.Beacon.Epoch != 0 {
		return types.ErrGenesisBlockMismatch()
	}
	if b.Header.Beacon.HashPrevBlock != bootstrapHash {
		return types.ErrGenesisBlockHashMismatch(b.Header.Beacon.HashPrevBlock, bootstrapHash)
	}
	if b.Mint == nil {
		return types.ErrGenesisBlockMismatch()
	}
	if len(b.ValueTransfers)+len(b.DataRequests)+len(b.Commits)+len(b.Reveals)+
		len(b.Tallies)+len(b.Stakes)+len(b.Unstakes) != 0 {
		return types.ErrGenesisBlockMismatch()
	}
	var total uint64
	for _, o := range b.Mint.Mint.Outputs {
		next := total + o.Value
		if next < total {
			return types.ErrGenesisValueOverflow()
		}
		total = next
	}
	return nil
}
