package validation

import (
	"errors"
	"testing"

	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// TestValidateCommitRejectsTightVRFTarget exercises spec.md §8 S3: an ARS
// with one identity holding 1023 reputation and everyone else at zero. A
// commit from a zero-reputation pkh must fail the eligibility check against
// target_hash = 0x003fffff, not some other rule.
func TestValidateCommitRejectsTightVRFTarget(t *testing.T) {
	engine := reputation.NewEngine(100)
	var repHolder types.PublicKeyHash
	repHolder[0] = 1
	engine.Gain(repHolder, 1023)

	priv, err := xcrypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	ctx := &Context{
		Epoch:      5,
		Reputation: engine,
		Params:     ConsensusParams{EpochsWithMinimumDifficulty: 0},
		DRPointerStage: func(types.Hash) (string, bool) {
			return "COMMIT", true
		},
	}

	drPointer := types.HashFromBytes([]byte("dr-under-test"))
	alpha := VRFInput(vrfHashInputFor(ctx), drPointer)
	proof, _, err := xcrypto.VRFProve(priv, alpha)
	if err != nil {
		t.Fatalf("VRFProve: %v", err)
	}

	tx := &types.Transaction{
		Kind: types.KindCommit,
		Commit: &types.CommitTransactionBody{
			DRPointer: drPointer,
			Proof:     proof,
		},
	}

	_, err = validateCommit(tx, ctx)
	if err == nil {
		t.Fatal("expected a zero-reputation committer to miss such a tight target")
	}
	if !errors.Is(err, types.ErrDataRequestEligibilityDoesNotMeetTarget(types.Hash{}, types.Hash{})) {
		t.Errorf("validateCommit error = %v, want DataRequestEligibilityDoesNotMeetTarget", err)
	}
}

func TestValidateCommitRejectsWrongStage(t *testing.T) {
	ctx := &Context{
		DRPointerStage: func(types.Hash) (string, bool) { return "REVEAL", true },
	}
	tx := &types.Transaction{Kind: types.KindCommit, Commit: &types.CommitTransactionBody{}}

	_, err := validateCommit(tx, ctx)
	if err == nil || err.Error() != types.ErrNotCommitStage(types.Hash{}).Error() {
		t.Errorf("validateCommit = %v, want NotCommitStage", err)
	}
}

func TestValidateCommitRejectsDuplicateCommitter(t *testing.T) {
	var pkh types.PublicKeyHash
	pkh[0] = 7
	ctx := &Context{
		DRPointerStage: func(types.Hash) (string, bool) { return "COMMIT", true },
		SeenCommitPKH:  func(types.Hash, types.PublicKeyHash) bool { return true },
	}
	tx := &types.Transaction{
		Kind: types.KindCommit,
		Commit: &types.CommitTransactionBody{
			Proof: types.VRFProof{PKH: pkh},
		},
	}

	_, err := validateCommit(tx, ctx)
	wantErr := types.ErrDuplicatedCommit(pkh, types.Hash{})
	if err == nil || err.Error() != wantErr.Error() {
		t.Errorf("validateCommit = %v, want %v", err, wantErr)
	}
}
