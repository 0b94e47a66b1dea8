package chain

import "github.com/witnet-go/witnet-core/internal/types"

// Mempool holds transactions admitted against the current tip but not yet
// included in a consolidated block, split by kind so the miner can pick
// the highest-priority candidates of each without re-scanning everything
// (spec.md §4.6 "Mining" and §6 AddTransaction).
type Mempool struct {
	ValueTransfers []types.Transaction
	DataRequests   []types.Transaction
	Commits        map[types.Hash]map[types.PublicKeyHash]types.Transaction
	Reveals        map[types.Hash]map[types.PublicKeyHash]types.Transaction
	Stakes         []types.Transaction
	Unstakes       []types.Transaction
}

func NewMempool() *Mempool {
	return &Mempool{
		Commits: make(map[types.Hash]map[types.PublicKeyHash]types.Transaction),
		Reveals: make(map[types.Hash]map[types.PublicKeyHash]types.Transaction),
	}
}

// AddValueTransfer admits a pre-validated value transfer.
func (mp *Mempool) AddValueTransfer(tx types.Transaction) { mp.ValueTransfers = append(mp.ValueTransfers, tx) }

// AddDataRequest admits a pre-validated data request.
func (mp *Mempool) AddDataRequest(tx types.Transaction) { mp.DataRequests = append(mp.DataRequests, tx) }

// AddCommit admits a pre-validated commit, keyed by dr_pointer and pkh so
// the mempool holds at most one commit per pair; a later commit for the
// same pair replaces the earlier one.
func (mp *Mempool) AddCommit(drPointer types.Hash, pkh types.PublicKeyHash, tx types.Transaction) {
	if mp.Commits[drPointer] == nil {
		mp.Commits[drPointer] = make(map[types.PublicKeyHash]types.Transaction)
	}
	mp.Commits[drPointer][pkh] = tx
}

// AddReveal admits a pre-validated reveal.
func (mp *Mempool) AddReveal(drPointer types.Hash, pkh types.PublicKeyHash, tx types.Transaction) {
	if mp.Reveals[drPointer] == nil {
		mp.Reveals[drPointer] = make(map[types.PublicKeyHash]types.Transaction)
	}
	mp.Reveals[drPointer][pkh] = tx
}

// ClearCommits empties the commit pool; called every epoch since commits
// expire with the round they were made in (spec.md §4.6 epoch tick step
// 4).
func (mp *Mempool) ClearCommits() {
	mp.Commits = make(map[types.Hash]map[types.PublicKeyHash]types.Transaction)
}

// DrainValueTransfers takes up to max value transfers for a candidate
// block, leaving the rest for the next attempt.
func (mp *Mempool) DrainValueTransfers(max int) []types.Transaction {
	if max >= len(mp.ValueTransfers) {
		out := mp.ValueTransfers
		mp.ValueTransfers = nil
		return out
	}
	out := append([]types.Transaction(nil), mp.ValueTransfers[:max]...)
	mp.ValueTransfers = mp.ValueTransfers[max:]
	return out
}
