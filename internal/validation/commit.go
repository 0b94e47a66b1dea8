package validation

import (
	"encoding/binary"

	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// VRFInput returns the alpha string a commit's VRF proof is produced over:
// (vrf_input, dr_pointer) per spec.md §3.
func VRFInput(vrfInput types.Hash, drPointer types.Hash) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, vrfInput[:]...)
	buf = append(buf, drPointer[:]...)
	return buf
}

// validateCommit implements spec.md §4.2 "Commit transaction".
func validateCommit(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Commit

	stage, known := ctx.DRPointerStage(body.DRPointer)
	if !known || stage != "COMMIT" {
		return Result{}, types.ErrNotCommitStage(body.DRPointer)
	}

	vrfPKH := body.Proof.PKH
	if ctx.SeenCommitPKH != nil && ctx.SeenCommitPKH(body.DRPointer, vrfPKH) {
		return Result{}, types.ErrDuplicatedCommit(vrfPKH, body.DRPointer)
	}

	// VRF proof must verify; its pkh is the identity being rated for
	// eligibility and collateral ownership.
	alpha := VRFInput(vrfHashInputFor(ctx), body.DRPointer)
	if _, err := xcrypto.VRFVerify(body.Proof, alpha); err != nil {
		return Result{}, types.ErrInvalidDataRequestPoe()
	}

	witnesses, round, err := commitContext(ctx, body.DRPointer)
	if err != nil {
		return Result{}, err
	}
	target := reputation.CommitEligibilityTarget(ctx.Reputation, vrfPKH, witnesses, round)
	target = reputation.ApplyMinimumDifficultyFloor(target, ctx.Params.MinimumDifficulty, ctx.Epoch, ctx.Params.EpochsWithMinimumDifficulty)
	proofHash := xcrypto.VRFProofHash(body.Proof)
	if !proofHash.LessOrEqual(target) {
		return Result{}, types.ErrDataRequestEligibilityDoesNotMeetTarget(target, proofHash)
	}

	drOutput, err := ctx.drOutputFor(body.DRPointer)
	if err != nil {
		return Result{}, err
	}
	collateralRequired := EffectiveCollateral(drOutput, ctx.Params)

	if len(body.CollateralInputs) == 0 {
		return Result{}, types.ErrInvalidCollateral("no collateral inputs")
	}
	var collateralSum uint64
	for _, in := range body.CollateralInputs {
		vto, bn, ok := ctx.Diff.Get(in.OutputPointer)
		if !ok {
			return Result{}, types.ErrOutputNotFound(in.OutputPointer)
		}
		if vto.PKH != vrfPKH {
			return Result{}, types.ErrCollateralPkhMismatch(vto.PKH, vrfPKH)
		}
		if vto.TimeLock > ctx.EpochStartTimestamp {
			return Result{}, types.ErrTimeLock(in.OutputPointer, vto.TimeLock, ctx.EpochStartTimestamp)
		}
		if !isMature(bn, ctx.CurrentBlockNumber, ctx.Params.CollateralAge) {
			return Result{}, types.ErrCollateralNotMature(in.OutputPointer, bn+ctx.Params.CollateralAge, ctx.CurrentBlockNumber)
		}
		next := collateralSum + vto.Value
		if next < collateralSum {
			return Result{}, types.ErrInputValueOverflow()
		}
		collateralSum = next
		ctx.Diff.Consume(in.OutputPointer)
	}

	var changeValue uint64
	if body.ChangeOutput != nil {
		if body.ChangeOutput.PKH != vrfPKH {
			return Result{}, types.ErrCollateralPkhMismatch(body.ChangeOutput.PKH, vrfPKH)
		}
		changeValue = body.ChangeOutput.Value
	}
	if collateralSum < changeValue {
		return Result{}, types.ErrNegativeCollateral()
	}
	netCollateral := collateralSum - changeValue
	if netCollateral != collateralRequired {
		return Result{}, types.ErrIncorrectCollateral(netCollateral, collateralRequired)
	}

	txID := bodyHashAndID(tx)
	if body.ChangeOutput != nil {
		createOutputs(txID, []types.ValueTransferOutput{*body.ChangeOutput}, ctx)
	}

	return Result{Fee: 0, Weight: CommitWeight()}, nil
}

// isMature reports whether an output created at createdBlockNumber is
// mature collateral at currentBlockNumber: createdBlockNumber +
// collateral_age <= currentBlockNumber. Genesis outputs (block number 0)
// are always mature (spec.md §4.2).
func isMature(createdBlockNumber, currentBlockNumber, collateralAge uint32) bool {
	if createdBlockNumber == 0 {
		return true
	}
	return createdBlockNumber+collateralAge <= currentBlockNumber
}

// CommitWeight is a fixed per-commit cost; commits carry no RAD bytes of
// their own (those live in the DataRequest transaction).
func CommitWeight() uint64 { return 400 }

// vrfHashInputFor derives the per-epoch vrf_input component of the VRF
// alpha string. The chain manager supplies the previous block's VRF
// output; tests may stub this via a fixed epoch-derived value.
func vrfHashInputFor(ctx *Context) types.Hash {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], ctx.Epoch)
	return types.HashFromBytes(buf[:])
}

// commitContext resolves a dr_pointer to (witnesses, round) for target
// computation; wired to the data request pool by the caller through
// Context.DRWitnessesAndRound, falling back to a 1-witness/round-0 default
// when unset (e.g. unit tests exercising a single rule in isolation).
func commitContext(ctx *Context, drPointer types.Hash) (witnesses uint16, round uint32, err error) {
	if ctx.DRWitnessesAndRound != nil {
		return ctx.DRWitnessesAndRound(drPointer)
	}
	return 1, 0, nil
}
