package chain

import (
	"github.com/witnet-go/witnet-core/internal/superblock"
	"github.com/witnet-go/witnet-core/internal/types"
)

// DataRequestSummary is the read-only view of an in-flight data request
// exposed to API callers (spec.md §6 "Get..." query messages); it never
// hands out the mutable *datarequest.State itself.
type DataRequestSummary struct {
	Stage     string
	Witnesses uint16
	Round     uint32
	Commits   int
	Reveals   int
}

// DataRequestSummary reports a data request's current stage and progress.
func (m *Manager) DataRequestSummary(drPointer types.Hash) (DataRequestSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return DataRequestSummary{}, false
	}
	return DataRequestSummary{
		Stage:     state.Stage.String(),
		Witnesses: state.DrOutput.Witnesses,
		Round:     state.Round(),
		Commits:   len(state.Commits),
		Reveals:   len(state.Reveals),
	}, true
}

// OwnLastBeacon builds the LastBeacon this node advertises to its peers
// (spec.md §6): its current block tip, paired with a superblock checkpoint
// whose epoch field is CurrentSuperblockIndex (the number of superblocks
// built so far) and whose hash is the tip's block hash.
func (m *Manager) OwnLastBeacon() types.LastBeacon {
	m.mu.Lock()
	defer m.mu.Unlock()

	return types.LastBeacon{
		HighestBlockCheckpoint:      m.chainState.Tip,
		HighestSuperBlockCheckpoint: types.Checkpoint{Epoch: m.chainState.CurrentSuperblockIndex, HashPrevBlock: m.chainState.Tip.HashPrevBlock},
	}
}

// UTXOBalance sums every unspent output currently owned by pkh, for wallet
// and explorer-style queries.
func (m *Manager) UTXOBalance(pkh types.PublicKeyHash) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total uint64
	m.chainState.UTXOs.Iter(func(_ types.OutputPointer, vto types.ValueTransferOutput, _ uint32) {
		if vto.PKH == pkh {
			total += vto.Value
		}
	})
	return total
}

// LastSuperblock reports the most recently built superblock candidate,
// for peers and explorers tracking finality.
func (m *Manager) LastSuperblock() (superblock.SuperBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chainState.LastSuperblock == nil {
		return superblock.SuperBlock{}, false
	}
	return *m.chainState.LastSuperblock, true
}

// StakeSnapshot reports every validator's current stake balance, for
// storage persistence and API exposure.
func (m *Manager) StakeSnapshot() []StakeSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chainState.Stakes.Snapshot()
}

// FinishedDataRequests drains data requests archived (their tally
// included in a block) since the last call, for the storage layer to
// persist (spec.md §4.3 archive).
func (m *Manager) FinishedDataRequests() []DataRequestSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	finished := m.chainState.DataRequests.FinishedDataRequests()
	out := make([]DataRequestSummary, 0, len(finished))
	for _, s := range finished {
		out = append(out, DataRequestSummary{
			Stage:     s.Stage.String(),
			Witnesses: s.DrOutput.Witnesses,
			Round:     s.Round(),
			Commits:   len(s.Commits),
			Reveals:   len(s.Reveals),
		})
	}
	return out
}
