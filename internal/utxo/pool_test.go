package utxo

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func samplePointer(index uint32) types.OutputPointer {
	return types.OutputPointer{TransactionID: types.HashFromBytes([]byte("tx")), OutputIndex: index}
}

func TestPoolInsertGetRemove(t *testing.T) {
	p := NewPool()
	ptr := samplePointer(0)
	vto := types.ValueTransferOutput{Value: 100}

	if p.Contains(ptr) {
		t.Fatal("pool should not contain ptr before insert")
	}

	p.Insert(ptr, vto, 5)
	if !p.Contains(ptr) {
		t.Fatal("pool should contain ptr after insert")
	}

	got, blockNum, ok := p.Get(ptr)
	if !ok || got.Value != 100 || blockNum != 5 {
		t.Fatalf("Get returned (%+v, %d, %v), want (Value:100, 5, true)", got, blockNum, ok)
	}

	if err := p.Remove(ptr); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if p.Contains(ptr) {
		t.Fatal("pool should not contain ptr after remove")
	}
}

func TestPoolRemoveMissingFails(t *testing.T) {
	p := NewPool()
	if err := p.Remove(samplePointer(1)); err == nil {
		t.Error("expected OutputNotFound error removing an absent pointer")
	}
}

func TestDiffConsumeHidesBeforeApply(t *testing.T) {
	base := NewPool()
	ptr := samplePointer(0)
	base.Insert(ptr, types.ValueTransferOutput{Value: 10}, 1)

	diff := NewDiff(base, 2)
	diff.Consume(ptr)

	if diff.Contains(ptr) {
		t.Error("a consumed pointer must not be visible through the diff")
	}
	if !base.Contains(ptr) {
		t.Error("base must stay untouched until Apply")
	}

	diff.Apply()
	if base.Contains(ptr) {
		t.Error("Apply should remove the consumed pointer from base")
	}
}

func TestDiffCreateThenConsumeNeverTouchesBase(t *testing.T) {
	base := NewPool()
	ptr := samplePointer(0)

	diff := NewDiff(base, 1)
	diff.Create(ptr, types.ValueTransferOutput{Value: 50})
	diff.Consume(ptr)
	diff.Apply()

	if base.Contains(ptr) {
		t.Error("an output created and consumed within the same diff must never reach base")
	}
}

func TestDiffApplyTwicePanics(t *testing.T) {
	base := NewPool()
	diff := NewDiff(base, 1)
	diff.Apply()

	defer func() {
		if recover() == nil {
			t.Error("expected a second Apply to panic")
		}
	}()
	diff.Apply()
}

func TestDiffGetFallsBackToBase(t *testing.T) {
	base := NewPool()
	ptr := samplePointer(0)
	base.Insert(ptr, types.ValueTransferOutput{Value: 7}, 1)

	diff := NewDiff(base, 2)
	vto, blockNum, ok := diff.Get(ptr)
	if !ok || vto.Value != 7 || blockNum != 1 {
		t.Fatalf("Get should fall back to base, got (%+v, %d, %v)", vto, blockNum, ok)
	}
}
