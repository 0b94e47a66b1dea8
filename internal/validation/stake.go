package validation

import "github.com/witnet-go/witnet-core/internal/types"

// MinimumStakeValue is the smallest amount a single stake transaction may
// lock toward a validator's power.
const MinimumStakeValue = 10_000_000_000 // 10 WIT

// validateStake implements the supplemented stake transaction: inputs are
// consumed like a value transfer, but instead of creating a spendable
// output the locked value is credited to a validator's stake ledger entry,
// guarded by a strictly increasing nonce so a stake can't be replayed.
func validateStake(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Stake

	if len(body.Inputs) == 0 {
		return Result{}, types.ErrNoInputs()
	}
	if body.Value < MinimumStakeValue {
		return Result{}, types.ErrInvalidStakeValue(body.Value, MinimumStakeValue)
	}

	if ctx.StakeBalance != nil {
		_, wantNonce := ctx.StakeBalance(body.Validator)
		if body.Nonce != wantNonce {
			return Result{}, types.ErrWrongStakeNonce(body.Nonce, wantNonce)
		}
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
	var changeValue uint64
	if body.ChangeOutput != nil {
		changeValue = body.ChangeOutput.Value
	}
	total := body.Value + changeValue
	if total < body.Value {
		return Result{}, types.ErrInputValueOverflow()
	}
	if total > inputValue {
		return Result{}, types.ErrNegativeFee()
	}
	fee := inputValue - total

	if body.ChangeOutput != nil {
		createOutputs(txID, []types.ValueTransferOutput{*body.ChangeOutput}, ctx)
	}
	if ctx.RecordStake != nil {
		ctx.RecordStake(body.Validator, body.Withdrawer, int64(body.Value), body.Nonce)
	}

	return Result{Fee: fee, Weight: StakeWeight()}, nil
}

// StakeWeight is a fixed per-stake cost, comparable to a single-output
// value transfer.
func StakeWeight() uint64 { return 170 }
