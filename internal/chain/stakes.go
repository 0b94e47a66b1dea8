package chain

import "github.com/witnet-go/witnet-core/internal/types"

// stakeEntry is one validator's staked balance, the withdrawer it pays out
// to, and the next nonce a stake/unstake transaction against it must use.
type stakeEntry struct {
	withdrawer types.PublicKeyHash
	value      uint64
	nextNonce  uint64
}

// StakeLedger is the supplemented stake/unstake bookkeeping the distilled
// spec names only as transaction kinds: a per-validator balance plus a
// strictly increasing nonce that stops a stake or unstake transaction from
// being replayed (grounded on the original source's validator staking
// ledger, absent from the distillation).
type StakeLedger struct {
	entries map[types.PublicKeyHash]*stakeEntry
	pending []pendingStakeChange // applied optimistically, revalidated periodically
}

type pendingStakeChange struct {
	validator  types.PublicKeyHash
	withdrawer types.PublicKeyHash
	delta      int64
	nonce      uint64
}

func NewStakeLedger() *StakeLedger {
	return &StakeLedger{entries: make(map[types.PublicKeyHash]*stakeEntry)}
}

// Balance resolves a validator's current stake and the nonce its next
// stake/unstake transaction must carry; unknown validators start at
// (0, 0).
func (l *StakeLedger) Balance(validator types.PublicKeyHash) (value, nextNonce uint64) {
	e, ok := l.entries[validator]
	if !ok {
		return 0, 0
	}
	return e.value, e.nextNonce
}

// Record applies a stake (positive delta) or unstake (negative delta) to
// the ledger, advancing the nonce and queuing the change for periodic
// revalidation.
func (l *StakeLedger) Record(validator, withdrawer types.PublicKeyHash, delta int64, nonce uint64) {
	e, ok := l.entries[validator]
	if !ok {
		e = &stakeEntry{withdrawer: withdrawer}
		l.entries[validator] = e
	}
	if delta >= 0 {
		e.value += uint64(delta)
	} else {
		dec := uint64(-delta)
		if dec > e.value {
			e.value = 0
		} else {
			e.value -= dec
		}
	}
	e.withdrawer = withdrawer
	e.nextNonce = nonce + 1
	l.pending = append(l.pending, pendingStakeChange{validator, withdrawer, delta, nonce})
}

// Revalidate drops queued changes that are no longer consistent with the
// ledger's current state — e.g. an unstake that would now overdraw a
// validator whose stake shrank from a later rewind. EpochNotification
// calls it on every epoch divisible by 10 (spec.md §4.6 epoch tick step
// 5); the call has no protocol-version gate.
func (l *StakeLedger) Revalidate() (evicted int) {
	kept := l.pending[:0]
	for _, p := range l.pending {
		e, ok := l.entries[p.validator]
		if !ok {
			evicted++
			continue
		}
		if p.delta < 0 && uint64(-p.delta) > e.value {
			evicted++
			continue
		}
		kept = append(kept, p)
	}
	l.pending = kept
	return evicted
}

// ActiveValidators returns every validator currently carrying a non-zero
// stake, for the reputation engine's eligibility bookkeeping.
func (l *StakeLedger) ActiveValidators() []types.PublicKeyHash {
	out := make([]types.PublicKeyHash, 0, len(l.entries))
	for pkh, e := range l.entries {
		if e.value > 0 {
			out = append(out, pkh)
		}
	}
	return out
}

// StakeSnapshot is a read-only view of one validator's ledger entry, for
// persistence and API exposure.
type StakeSnapshot struct {
	Validator  types.PublicKeyHash
	Withdrawer types.PublicKeyHash
	Value      uint64
	NextNonce  uint64
}

// Snapshot copies every entry in the ledger, for periodic persistence.
func (l *StakeLedger) Snapshot() []StakeSnapshot {
	out := make([]StakeSnapshot, 0, len(l.entries))
	for pkh, e := range l.entries {
		out = append(out, StakeSnapshot{Validator: pkh, Withdrawer: e.withdrawer, Value: e.value, NextNonce: e.nextNonce})
	}
	return out
}
