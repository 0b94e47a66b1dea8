package validation

import "github.com/witnet-go/witnet-core/internal/types"

// validateValueTransfer implements spec.md §4.2 "Value-transfer
// transaction": non-empty inputs, standard outputs, fee is the net
// difference.
func validateValueTransfer(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.ValueTransfer
	if len(body.Inputs) == 0 {
		return Result{}, types.ErrNoInputs()
	}
	if err := checkNoZeroValueOutputs(body.Outputs); err != nil {
		return Result{}, err
	}
	if err := checkTimeLocks(body.Inputs, ctx); err != nil {
		return Result{}, err
	}

	txID := bodyHashAndID(tx)
	if err := verifyInputSignatures(body.Inputs, tx.Signatures, txID, ctx); err != nil {
		return Result{}, err
	}

	inputValue, err := consumeInputs(body.Inputs, ctx)
	if err != nil {
		return Result{}, err
	}
	outputValue, err := sumOutputs(body.Outputs)
	if err != nil {
		return Result{}, err
	}
	if outputValue > inputValue {
		return Result{}, types.ErrNegativeFee()
	}
	fee := inputValue - outputValue

	weight := ValueTransferWeight(len(body.Inputs), len(body.Outputs))
	if weight > ctx.Params.MaxVTWeight {
		return Result{}, types.ErrValueTransferWeightLimitExceeded(weight, ctx.Params.MaxVTWeight)
	}

	createOutputs(txID, body.Outputs, ctx)
	return Result{Fee: fee, Weight: weight}, nil
}

// ValueTransferWeight is a simple linear weight: a fixed per-input and
// per-output cost, enough to let the block validator cap total weight
// without modeling actual serialized byte sizes.
func ValueTransferWeight(numInputs, numOutputs int) uint64 {
	const perInput, perOutput = 133, 36
	return uint64(numInputs)*perInput + uint64(numOutputs)*perOutput
}
