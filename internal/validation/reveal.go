package validation

import (
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// validateReveal implements spec.md §4.2 "Reveal transaction": the
// revealer must have a matching commit for the same dr_pointer, and the
// reveal's signature must hash to the commitment the commit locked in.
func validateReveal(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.Reveal

	stage, known := ctx.DRPointerStage(body.DRPointer)
	if !known || stage != "REVEAL" {
		return Result{}, types.ErrNotRevealStage(body.DRPointer)
	}
	if ctx.SeenRevealPKH != nil && ctx.SeenRevealPKH(body.DRPointer, body.PKH) {
		return Result{}, types.ErrDuplicatedReveal(body.PKH, body.DRPointer)
	}

	if ctx.CommitByPKH == nil {
		return Result{}, types.ErrCommitNotFound(body.PKH, body.DRPointer)
	}
	commitTx, ok := ctx.CommitByPKH(body.DRPointer, body.PKH)
	if !ok || commitTx.Commit == nil {
		return Result{}, types.ErrCommitNotFound(body.PKH, body.DRPointer)
	}

	if len(tx.Signatures) != 1 {
		return Result{}, types.ErrMismatchingSignaturesNumber(len(tx.Signatures), 1)
	}
	sig := tx.Signatures[0]

	bodyHash := bodyHashAndID(tx)
	if err := xcrypto.VerifyTransactionSignature(bodyHash, sig, body.PKH); err != nil {
		return Result{}, err
	}

	gotCommitment := xcrypto.Sha256(sig.Signature)
	if gotCommitment != commitTx.Commit.Commitment {
		return Result{}, types.ErrMismatchedCommitment(gotCommitment, commitTx.Commit.Commitment)
	}

	return Result{Fee: 0, Weight: RevealWeight(len(body.RevealBody))}, nil
}

// RevealWeight is a fixed base cost plus the disclosed payload size.
func RevealWeight(revealBytes int) uint64 {
	const base = 200
	return uint64(base + revealBytes)
}
