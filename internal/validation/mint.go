package validation

import "github.com/witnet-go/witnet-core/internal/types"

// validateMint implements spec.md §4.2 "Mint transaction": the block's
// sole inputless transaction, whose total output value must equal the
// block reward plus every fee collected by the block's other
// transactions, split across at most two outputs.
func validateMint(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Mint

	if body.Epoch != ctx.Epoch {
		return Result{}, types.ErrCandidateFromDifferentEpoch(body.Epoch, ctx.Epoch)
	}
	if len(body.Outputs) == 0 || len(body.Outputs) > 2 {
		return Result{}, types.ErrTooSplitMint(uint64(len(body.Outputs)), 1)
	}
	if err := checkNoZeroValueOutputs(body.Outputs); err != nil {
		return Result{}, err
	}

	total, err := sumOutputs(body.Outputs)
	if err != nil {
		return Result{}, err
	}

	expected := ctx.BlockReward + ctx.FeesCollected
	if total != expected {
		return Result{}, types.ErrMismatchedMintValue(total, ctx.FeesCollected, ctx.BlockReward)
	}

	txID := bodyHashAndID(tx)
	createOutputs(txID, body.Outputs, ctx)

	return Result{Fee: 0, Weight: 0}, nil
}
