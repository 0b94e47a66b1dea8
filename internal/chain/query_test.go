package chain

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/validation"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	genesis := types.GenesisBlock(types.HashFromBytes([]byte("bootstrap")), nil)
	return NewManager(Config{Params: validation.DefaultParams}, genesis)
}

func TestUTXOBalanceSumsOwnedOutputs(t *testing.T) {
	m := newTestManager(t)
	owner := pkhByte(7)

	ptrA := types.OutputPointer{TransactionID: types.HashFromBytes([]byte("txA")), OutputIndex: 0}
	ptrB := types.OutputPointer{TransactionID: types.HashFromBytes([]byte("txB")), OutputIndex: 0}
	other := types.OutputPointer{TransactionID: types.HashFromBytes([]byte("txC")), OutputIndex: 0}

	m.chainState.UTXOs.Insert(ptrA, types.ValueTransferOutput{PKH: owner, Value: 100}, 0)
	m.chainState.UTXOs.Insert(ptrB, types.ValueTransferOutput{PKH: owner, Value: 50}, 0)
	m.chainState.UTXOs.Insert(other, types.ValueTransferOutput{PKH: pkhByte(9), Value: 999}, 0)

	if got := m.UTXOBalance(owner); got != 150 {
		t.Errorf("UTXOBalance = %d, want 150", got)
	}
}

func TestDataRequestSummaryUnknownPointer(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.DataRequestSummary(types.HashFromBytes([]byte("missing"))); ok {
		t.Error("expected an unknown dr_pointer to report not-found")
	}
}

func TestLastSuperblockAbsentBeforeConsolidation(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.LastSuperblock(); ok {
		t.Error("expected no superblock before any consolidation")
	}
}

func TestStakeSnapshotEmptyByDefault(t *testing.T) {
	m := newTestManager(t)
	if snap := m.StakeSnapshot(); len(snap) != 0 {
		t.Errorf("expected an empty stake snapshot on a fresh manager, got %d entries", len(snap))
	}
}

func TestOwnLastBeaconReflectsGenesisTip(t *testing.T) {
	m := newTestManager(t)
	beacon := m.OwnLastBeacon()
	if beacon.HighestBlockCheckpoint.Epoch != 0 {
		t.Errorf("expected genesis epoch 0, got %d", beacon.HighestBlockCheckpoint.Epoch)
	}
}
