package tally

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/datarequest"
	"github.com/witnet-go/witnet-core/internal/types"
)

func pkhByte(b byte) types.PublicKeyHash {
	var pkh types.PublicKeyHash
	pkh[0] = b
	return pkh
}

// TestEvaluateFiveWitnessesOneLiarOneError exercises spec.md §8 S4: 5
// witnesses, witness_reward=200, fee=20, collateral=1 WIT. 3 reveals agree,
// 1 reveals a different value (out of consensus), 1 reveals an error.
func TestEvaluateFiveWitnessesOneLiarOneError(t *testing.T) {
	const wit = 1_000_000_000 // 1 WIT
	state := &datarequest.State{
		DrOutput: types.DataRequestOutput{
			Witnesses:          5,
			WitnessReward:      200,
			CommitAndRevealFee: 20,
			Collateral:         wit,
		},
		Commits: map[types.PublicKeyHash]types.Transaction{
			pkhByte(1): {}, pkhByte(2): {}, pkhByte(3): {}, pkhByte(4): {}, pkhByte(5): {},
		},
	}
	decoded := []DecodedReveal{
		{PKH: pkhByte(1), WellTyped: true, Value: []byte("42")},
		{PKH: pkhByte(2), WellTyped: true, Value: []byte("42")},
		{PKH: pkhByte(3), WellTyped: true, Value: []byte("42")},
		{PKH: pkhByte(4), WellTyped: true, Value: []byte("99")}, // the liar
		{PKH: pkhByte(5), WellTyped: false, IsError: true},
	}

	out := Evaluate(state, decoded)

	if out.InsufficientConsensus || out.CommonError {
		t.Fatalf("expected a normal majority tally, got InsufficientConsensus=%v CommonError=%v", out.InsufficientConsensus, out.CommonError)
	}

	const wantRewardPerWitness = 200 + wit + wit/3
	if out.RewardPerWitness != wantRewardPerWitness {
		t.Errorf("RewardPerWitness = %d, want %d", out.RewardPerWitness, wantRewardPerWitness)
	}
	if out.ErrorRefund != wit {
		t.Errorf("ErrorRefund = %d, want %d", out.ErrorRefund, uint64(wit))
	}
	if len(out.Rewarded) != 3 {
		t.Errorf("expected 3 rewarded witnesses, got %d", len(out.Rewarded))
	}
	if len(out.Errors) != 1 {
		t.Errorf("expected 1 error witness, got %d", len(out.Errors))
	}
	if len(out.OutOfConsensus) != 1 {
		t.Errorf("expected the liar to be the sole out-of-consensus witness, got %d", len(out.OutOfConsensus))
	}
	if out.OutOfConsensus[0] != pkhByte(4) {
		t.Errorf("expected the liar (pkh 4) out of consensus, got %v", out.OutOfConsensus[0])
	}

	const wantChange = wit % 3 // the slashed-collateral remainder after an even split across 3 rewarded witnesses
	if out.RequesterChange != wantChange {
		t.Errorf("RequesterChange = %d, want %d", out.RequesterChange, wantChange)
	}
}

func TestEvaluateZeroCommitsRefundsRequesterInFull(t *testing.T) {
	state := &datarequest.State{
		DrOutput: types.DataRequestOutput{
			Witnesses:          3,
			WitnessReward:      100,
			CommitAndRevealFee: 10,
			Collateral:         500,
		},
		Commits: map[types.PublicKeyHash]types.Transaction{},
	}

	out := Evaluate(state, nil)
	if !out.InsufficientConsensus {
		t.Error("expected a zero-commit DR to be flagged InsufficientConsensus")
	}
	if out.RequesterChange != state.DrOutput.TotalLocked() {
		t.Errorf("RequesterChange = %d, want the full locked value %d", out.RequesterChange, state.DrOutput.TotalLocked())
	}
}

func TestEvaluateAllErrorsSuperMajorityShortCircuits(t *testing.T) {
	state := &datarequest.State{
		DrOutput: types.DataRequestOutput{
			Witnesses:          3,
			WitnessReward:      100,
			CommitAndRevealFee: 10,
			Collateral:         1000,
		},
		Commits: map[types.PublicKeyHash]types.Transaction{
			pkhByte(1): {}, pkhByte(2): {}, pkhByte(3): {},
		},
	}
	decoded := []DecodedReveal{
		{PKH: pkhByte(1), IsError: true},
		{PKH: pkhByte(2), IsError: true},
		{PKH: pkhByte(3), IsError: true},
	}

	out := Evaluate(state, decoded)
	if !out.CommonError {
		t.Error("expected an all-error super-majority to set CommonError")
	}
	if out.InsufficientConsensus {
		t.Error("CommonError must not also report InsufficientConsensus")
	}
	if len(out.Errors) != 3 {
		t.Errorf("expected all 3 committers refunded as errors, got %d", len(out.Errors))
	}
}
