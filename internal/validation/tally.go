package validation

import (
	"bytes"

	"github.com/witnet-go/witnet-core/internal/tally"
	"github.com/witnet-go/witnet-core/internal/types"
)

// TallyRecompute re-derives a data request's tally outcome from its
// collected commits and reveals, for byte-for-byte comparison against what
// a block producer claims (spec.md §4.4 "Validation contract"). It is
// wired to the data request pool and RAD reducer engine by the caller.
type TallyRecompute func(drPointer types.Hash) (tally.Outcome, types.PublicKeyHash, error)

// validateTally implements spec.md §4.2 "Tally transaction": every
// validator must independently recompute the tally outcome and reject any
// block whose claimed outputs disagree.
func validateTally(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Tally

	stage, known := ctx.DRPointerStage(body.DRPointer)
	if !known || stage != "TALLY" {
		return Result{}, types.ErrNotTallyStage(body.DRPointer)
	}
	if ctx.TallyRecompute == nil {
		return Result{}, types.ErrDataRequestNotFound(body.DRPointer)
	}
	outcome, requesterPKH, err := ctx.TallyRecompute(body.DRPointer)
	if err != nil {
		return Result{}, err
	}

	if !bytes.Equal(body.TallyBytes, outcome.TallyBytes) {
		return Result{}, types.ErrNotValidMerkleTree("Tally")
	}
	if err := checkPKHSet(body.OutOfConsensusPKH, outcome.OutOfConsensus); err != nil {
		return Result{}, types.ErrMismatchingOutOfConsensusCount(len(body.OutOfConsensusPKH), len(outcome.OutOfConsensus))
	}
	if err := checkPKHSet(body.ErrorWitnessesPKH, outcome.Errors); err != nil {
		return Result{}, types.ErrMismatchingErrorCount(len(body.ErrorWitnessesPKH), len(outcome.Errors))
	}

	wantOutputs := expectedTallyOutputs(outcome, requesterPKH)
	if len(body.Outputs) != len(wantOutputs) {
		return Result{}, types.ErrWrongNumberOutputs(len(body.Outputs), len(wantOutputs))
	}
	seen := make(map[types.PublicKeyHash]bool, len(body.Outputs))
	for i, o := range body.Outputs {
		want := wantOutputs[i]
		if o.PKH != want.PKH {
			return Result{}, types.ErrTxPublicKeyHashMismatch(o.PKH, want.PKH)
		}
		if o.Value != want.Value {
			return Result{}, types.ErrInvalidReward(o.Value, want.Value)
		}
		if seen[o.PKH] && o.PKH != requesterPKH {
			return Result{}, types.ErrMultipleRewards(o.PKH)
		}
		seen[o.PKH] = true
	}

	txID := bodyHashAndID(tx)
	createOutputs(txID, body.Outputs, ctx)

	return Result{Fee: 0, Weight: TallyWeight(len(body.TallyBytes))}, nil
}

// validateTallies validates every tally in a block against ctx, in
// addition to two block-level checks spec.md §4.5 requires beyond what a
// single tally can verify in isolation: no two tallies in the same block
// may share a dr_pointer, and every dr_pointer the DR pool reports as
// sitting in TALLY stage at the tip must be covered by exactly one of
// them.
func validateTallies(tallies []types.Transaction, tallyStagePointers []types.Hash, ctx *Context) (uint64, error) {
	var totalFee uint64
	seen := make(map[types.Hash]bool, len(tallies))
	for _, tx := range tallies {
		tx := tx
		if seen[tx.Tally.DRPointer] {
			return 0, types.ErrDuplicatedTally(tx.Tally.DRPointer)
		}
		seen[tx.Tally.DRPointer] = true
		res, err := validateTally(&tx, ctx)
		if err != nil {
			return 0, err
		}
		totalFee += res.Fee
	}
	if err := checkTalliesComplete(seen, tallyStagePointers); err != nil {
		return 0, err
	}
	return totalFee, nil
}

// checkTalliesComplete cross-references a block's claimed tallies
// (already deduplicated by the caller) against the DR pool's TALLY-stage
// pointers at the tip: every such pointer must be covered by some tally in
// this block.
func checkTalliesComplete(seenTallyPointers map[types.Hash]bool, tallyStagePointers []types.Hash) error {
	var missing []types.Hash
	for _, ptr := range tallyStagePointers {
		if !seenTallyPointers[ptr] {
			missing = append(missing, ptr)
		}
	}
	if len(missing) > 0 {
		return types.ErrMissingExpectedTallies(missing)
	}
	return nil
}

type expectedOutput struct {
	PKH   types.PublicKeyHash
	Value uint64
}

// expectedTallyOutputs lays out the canonical output order every validator
// must agree on: rewarded witnesses (sorted), error refunds (sorted), then
// the requester's change, matching the sort order tally.Evaluate already
// applies to its PKH slices.
func expectedTallyOutputs(outcome tally.Outcome, requesterPKH types.PublicKeyHash) []expectedOutput {
	var out []expectedOutput
	for _, pkh := range outcome.Rewarded {
		out = append(out, expectedOutput{PKH: pkh, Value: outcome.RewardPerWitness})
	}
	for _, pkh := range outcome.Errors {
		out = append(out, expectedOutput{PKH: pkh, Value: outcome.ErrorRefund})
	}
	if outcome.RequesterChange > 0 {
		out = append(out, expectedOutput{PKH: requesterPKH, Value: outcome.RequesterChange})
	}
	return out
}

func checkPKHSet(got, want []types.PublicKeyHash) error {
	if len(got) != len(want) {
		return types.ErrWrongNumberOutputs(len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return types.ErrTxPublicKeyHashMismatch(got[i], want[i])
		}
	}
	return nil
}

// TallyWeight is a fixed base cost plus the encoded tally result size.
func TallyWeight(tallyBytes int) uint64 {
	const base = 100
	return uint64(base + tallyBytes)
}
