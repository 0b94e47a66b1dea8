package chain

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func pkhByte(b byte) types.PublicKeyHash {
	var pkh types.PublicKeyHash
	pkh[0] = b
	return pkh
}

func TestStakeLedgerRecordAndBalance(t *testing.T) {
	ledger := NewStakeLedger()
	validator, withdrawer := pkhByte(1), pkhByte(2)

	value, nonce := ledger.Balance(validator)
	if value != 0 || nonce != 0 {
		t.Fatalf("unknown validator should start at (0, 0), got (%d, %d)", value, nonce)
	}

	ledger.Record(validator, withdrawer, 1000, 0)
	value, nonce = ledger.Balance(validator)
	if value != 1000 || nonce != 1 {
		t.Errorf("after staking 1000 at nonce 0, got (%d, %d), want (1000, 1)", value, nonce)
	}

	ledger.Record(validator, withdrawer, -400, 1)
	value, nonce = ledger.Balance(validator)
	if value != 600 || nonce != 2 {
		t.Errorf("after unstaking 400, got (%d, %d), want (600, 2)", value, nonce)
	}
}

func TestStakeLedgerUnstakeNeverGoesNegative(t *testing.T) {
	ledger := NewStakeLedger()
	validator, withdrawer := pkhByte(1), pkhByte(2)

	ledger.Record(validator, withdrawer, 100, 0)
	ledger.Record(validator, withdrawer, -1000, 1)

	value, _ := ledger.Balance(validator)
	if value != 0 {
		t.Errorf("an unstake larger than the balance should floor at 0, got %d", value)
	}
}

func TestStakeLedgerRevalidateEvictsOverdraw(t *testing.T) {
	ledger := NewStakeLedger()
	validator, withdrawer := pkhByte(1), pkhByte(2)

	ledger.Record(validator, withdrawer, 500, 0)
	ledger.Record(validator, withdrawer, -500, 1)
	// Simulate a rewind shrinking the validator's stake back down after the
	// pending unstake was already queued against the higher balance.
	ledger.entries[validator].value = 100

	evicted := ledger.Revalidate()
	if evicted == 0 {
		t.Error("expected at least one pending change to be evicted as overdrawn")
	}
}

func TestStakeLedgerActiveValidatorsExcludesZeroStake(t *testing.T) {
	ledger := NewStakeLedger()
	a, b := pkhByte(1), pkhByte(2)
	withdrawer := pkhByte(9)

	ledger.Record(a, withdrawer, 100, 0)
	ledger.Record(b, withdrawer, 50, 0)
	ledger.Record(b, withdrawer, -50, 1)

	active := ledger.ActiveValidators()
	if len(active) != 1 || active[0] != a {
		t.Errorf("expected only validator a to remain active, got %v", active)
	}
}

func TestStakeLedgerSnapshot(t *testing.T) {
	ledger := NewStakeLedger()
	validator, withdrawer := pkhByte(1), pkhByte(2)
	ledger.Record(validator, withdrawer, 250, 0)

	snapshot := ledger.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected one snapshot entry, got %d", len(snapshot))
	}
	entry := snapshot[0]
	if entry.Validator != validator || entry.Withdrawer != withdrawer || entry.Value != 250 || entry.NextNonce != 1 {
		t.Errorf("unexpected snapshot entry: %+v", entry)
	}
}
