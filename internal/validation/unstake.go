package validation

import (
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// UnstakeDelay is a withdrawal delay in epochs. validateUnstake does not
// consult it; it checks maturity only through the output's time_lock
// against the epoch start timestamp.
const UnstakeDelay = 4320 // 54 hours at the 45-second epoch cadence

// validateUnstake implements the supplemented unstake transaction: it has
// no inputs of its own; it debits a validator's stake ledger entry and
// creates exactly one withdrawer-owned output, signed once by the
// validator key rather than per-input.
func validateUnstake(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Unstake

	if len(tx.Signatures) != 1 {
		return Result{}, types.ErrMismatchingSignaturesNumber(len(tx.Signatures), 1)
	}
	bodyHash := bodyHashAndID(tx)
	if err := xcrypto.VerifyTransactionSignature(bodyHash, tx.Signatures[0], body.Validator); err != nil {
		return Result{}, err
	}

	if ctx.StakeBalance != nil {
		staked, wantNonce := ctx.StakeBalance(body.Validator)
		if body.Nonce != wantNonce {
			return Result{}, types.ErrWrongStakeNonce(body.Nonce, wantNonce)
		}
		if body.Value > staked {
			return Result{}, types.ErrInsufficientStake(body.Validator, body.Value, staked)
		}
	}
	if body.Output.PKH != body.Withdrawer {
		return Result{}, types.ErrStakeWithdrawerMismatch(body.Output.PKH, body.Withdrawer)
	}
	if body.Output.Value != body.Value {
		return Result{}, types.ErrInvalidReward(body.Output.Value, body.Value)
	}
	if body.Output.TimeLock > ctx.EpochStartTimestamp {
		return Result{}, types.ErrUnstakeNotMature(0, ctx.Epoch)
	}

	txID := bodyHashAndID(tx)
	createOutputs(txID, []types.ValueTransferOutput{body.Output}, ctx)
	if ctx.RecordStake != nil {
		ctx.RecordStake(body.Validator, body.Withdrawer, -int64(body.Value), body.Nonce)
	}

	return Result{Fee: 0, Weight: UnstakeWeight()}, nil
}

// UnstakeWeight is a fixed single-output cost.
func UnstakeWeight() uint64 { return 100 }
