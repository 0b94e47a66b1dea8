package datarequest

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func drTx(witnesses uint16) types.Transaction {
	return types.Transaction{
		Kind: types.KindDataRequest,
		DataRequest: &types.DRTransactionBody{
			DataRequestOutput: types.DataRequestOutput{Witnesses: witnesses},
		},
	}
}

func revealTx(drPointer types.Hash, pkh types.PublicKeyHash) types.Transaction {
	return types.Transaction{
		Kind:   types.KindReveal,
		Reveal: &types.RevealTransactionBody{DRPointer: drPointer, PKH: pkh},
	}
}

func TestProcessCommitRejectsDuplicate(t *testing.T) {
	pool := NewPool(3)
	drPointer := types.HashFromBytes([]byte("dr1"))
	var requester, pkh types.PublicKeyHash

	pool.ProcessDataRequest(drPointer, drTx(3), requester, types.Hash{}, 0)

	if err := pool.ProcessCommit(drPointer, pkh, types.Transaction{}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := pool.ProcessCommit(drPointer, pkh, types.Transaction{}); err == nil {
		t.Error("expected a duplicate commit from the same pkh to be rejected")
	}
}

func TestProcessCommitRejectsUnknownDR(t *testing.T) {
	pool := NewPool(3)
	var pkh types.PublicKeyHash
	if err := pool.ProcessCommit(types.HashFromBytes([]byte("missing")), pkh, types.Transaction{}); err == nil {
		t.Error("expected an unknown dr_pointer to be rejected")
	}
}

func TestProcessCommitRejectsWrongStage(t *testing.T) {
	pool := NewPool(3)
	drPointer := types.HashFromBytes([]byte("dr1"))
	var requester types.PublicKeyHash
	pool.ProcessDataRequest(drPointer, drTx(1), requester, types.Hash{}, 0)

	state, _ := pool.Get(drPointer)
	state.Stage = StageReveal

	var pkh types.PublicKeyHash
	if err := pool.ProcessCommit(drPointer, pkh, types.Transaction{}); err == nil {
		t.Error("expected a commit after COMMIT stage closed to be rejected")
	}
}

func TestReplayTempRevealsBuffersUntilDRKnown(t *testing.T) {
	pool := NewPool(3)
	drPointer := types.HashFromBytes([]byte("dr1"))
	var requester, pkh types.PublicKeyHash

	// Reveal arrives before the DR is known locally: buffered, not rejected.
	if err := pool.ProcessReveal(drPointer, pkh, revealTx(drPointer, pkh)); err != nil {
		t.Fatalf("early reveal should buffer, not error: %v", err)
	}

	pool.ProcessDataRequest(drPointer, drTx(1), requester, types.Hash{}, 0)
	state, ok := pool.Get(drPointer)
	if !ok {
		t.Fatal("data request should now be known")
	}
	state.Stage = StageReveal
	pool.ReplayTempReveals(drPointer)

	if len(state.Reveals) != 1 {
		t.Errorf("expected the buffered reveal to be replayed, got %d reveals", len(state.Reveals))
	}
}

func TestHoldAndPopOwnReveal(t *testing.T) {
	pool := NewPool(3)
	drPointer := types.HashFromBytes([]byte("dr1"))
	reveal := revealTx(drPointer, types.PublicKeyHash{})

	if _, ok := pool.PopOwnReveal(drPointer); ok {
		t.Fatal("should have nothing held yet")
	}

	pool.HoldOwnReveal(drPointer, reveal)
	got, ok := pool.PopOwnReveal(drPointer)
	if !ok {
		t.Fatal("expected the held reveal to be returned")
	}
	if got.Reveal.DRPointer != drPointer {
		t.Error("returned reveal does not match the held one")
	}
	if _, ok := pool.PopOwnReveal(drPointer); ok {
		t.Error("PopOwnReveal should clear the held reveal")
	}
}

func TestProcessDataRequestIsIdempotent(t *testing.T) {
	pool := NewPool(3)
	drPointer := types.HashFromBytes([]byte("dr1"))
	var requester types.PublicKeyHash

	pool.ProcessDataRequest(drPointer, drTx(5), requester, types.Hash{}, 0)
	pool.ProcessDataRequest(drPointer, drTx(9), requester, types.Hash{}, 0)

	state, _ := pool.Get(drPointer)
	if state.DrOutput.Witnesses != 5 {
		t.Errorf("second ProcessDataRequest call should not overwrite the first, got witnesses=%d", state.DrOutput.Witnesses)
	}
}
