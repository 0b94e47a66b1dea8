package chain

import (
	"log"

	"github.com/witnet-go/witnet-core/internal/types"
)

// EpochNotification implements spec.md §4.6's epoch tick, driven by an
// external wall-clock notifier. It is the single place epoch-driven state
// transitions, mining and housekeeping happen.
func (m *Manager) EpochNotification(checkpoint types.Checkpoint, timestampSecs uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if checkpoint.Epoch > m.chainState.Tip.Epoch+1 {
		log.Printf("[ChainManager] missed epochs %d -> %d, reverting to WaitingConsensus",
			m.chainState.Tip.Epoch, checkpoint.Epoch)
		m.transitionTo(WaitingConsensus)
		m.candidates = nil
	}

	if !m.sinceLastBeaconTick {
		m.transitionTo(WaitingConsensus)
		m.candidates = nil
	}
	m.sinceLastBeaconTick = false

	if m.state == Synced || m.state == AlmostSynced {
		m.consolidateBestCandidate()
		m.mempool.ClearCommits()
		if m.cfg.MiningEnabled && m.state == Synced {
			m.attemptMining(checkpoint.Epoch)
		}
	}

	if checkpoint.Epoch%10 == 0 {
		evicted := m.chainState.Stakes.Revalidate()
		if evicted > 0 {
			log.Printf("[ChainManager] stake revalidation evicted %d stale pending changes", evicted)
		}
	}

	m.replayTempReveals()
	m.reinsertRecoveredTransactions(8)
}

// consolidateBestCandidate picks the highest-priority candidate block of
// the previous epoch (if any) and applies it to chain state.
func (m *Manager) consolidateBestCandidate() {
	if len(m.candidates) == 0 {
		return
	}
	best := m.candidates[0]
	for _, c := range m.candidates[1:] {
		if len(c.AllTransactions()) > len(best.AllTransactions()) {
			best = c
		}
	}
	m.candidates = nil
	if err := m.applyBlock(best); err != nil {
		log.Printf("[ChainManager] candidate block rejected: %v", err)
	}
}

// replayTempReveals asks the data request pool to replay buffered reveals
// for every dr_pointer in m.tempReveals, then clears that map (spec.md
// §4.6 epoch tick step 6). Nothing in the manager adds to m.tempReveals:
// early reveals are buffered by datarequest.Pool.ProcessReveal and
// replayed by the pool itself when their DR enters REVEAL.
func (m *Manager) replayTempReveals() {
	for drPointer := range m.tempReveals {
		m.chainState.DataRequests.ReplayTempReveals(drPointer)
	}
	m.tempReveals = make(map[types.Hash][]types.Transaction)
}

// reinsertRecoveredTransactions moves up to maxPerTick VT/DR transactions
// from m.recoveredTxs into the mempool (spec.md §4.6 epoch tick step 6;
// supplemented rewind-recovery feature). It runs on every epoch tick,
// whatever the sync state. Nothing in the manager fills m.recoveredTxs;
// Rewind does not collect the transactions of the blocks it drops.
func (m *Manager) reinsertRecoveredTransactions(maxPerTick int) {
	n := maxPerTick
	if n > len(m.recoveredTxs) {
		n = len(m.recoveredTxs)
	}
	for _, tx := range m.recoveredTxs[:n] {
		switch tx.Kind {
		case types.KindValueTransfer:
			m.mempool.AddValueTransfer(tx)
		case types.KindDataRequest:
			m.mempool.AddDataRequest(tx)
		}
	}
	m.recoveredTxs = m.recoveredTxs[n:]
}

// PeersBeacons implements spec.md §6: compute consensus from every peer's
// last beacon and advance the sync state machine accordingly.
func (m *Manager) PeersBeacons(beacons []*types.LastBeacon) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sinceLastBeaconTick = true
	consensus := ComputeBeaconConsensus(beacons, m.cfg.OutboundPeerLimit, m.cfg.ConsensusThreshold)
	if !consensus.HasBlockConsensus {
		return
	}

	ourTip := m.chainState.Tip
	switch m.state {
	case WaitingConsensus:
		if consensus.BlockConsensus == ourTip {
			m.transitionTo(AlmostSynced)
		} else {
			m.transitionTo(Synchronizing)
			m.syncTarget = &SyncTarget{Block: consensus.BlockConsensus, Superblock: consensus.SuperblockConsensus}
		}
	case Synchronizing:
		if consensus.BlockConsensus == ourTip {
			m.transitionTo(AlmostSynced)
			m.syncTarget = nil
		}
	case AlmostSynced:
		if consensus.BlockConsensus == ourTip && consensus.IsBlockStrict {
			m.transitionTo(Synced)
		}
	case Synced:
		if consensus.BlockConsensus != ourTip {
			// Same checkpoint epoch, different hash: a fork. Different epoch
			// entirely falls through the missed-epoch guard in
			// EpochNotification instead.
			if consensus.BlockConsensus.Epoch == ourTip.Epoch && consensus.BlockConsensus.HashPrevBlock != ourTip.HashPrevBlock {
				log.Printf("[ChainManager] fork detected at epoch %d, reverting to WaitingConsensus", ourTip.Epoch)
				m.restoreFromLastSuperblockSnapshot()
				m.transitionTo(WaitingConsensus)
			}
		}
	}
}

func (m *Manager) restoreFromLastSuperblockSnapshot() {
	if m.chainState.LastSuperblockSnapshot == nil {
		log.Printf("[ChainManager] fork recovery requested but no superblock snapshot is available")
		return
	}
	m.chainState = *m.chainState.LastSuperblockSnapshot
}

// AddCommitReveal implements spec.md §6's own-node hybrid handling: a
// locally mined commit is added to the mempool, and its matching reveal
// is handed to the data request pool's HoldOwnReveal instead, so it does
// not travel with the commit. Nothing in the manager releases a held
// reveal (Pool.PopOwnReveal has no caller here); the pool drops it when
// the data request is archived.
func (m *Manager) AddCommitReveal(commit, reveal types.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if commit.Commit != nil {
		m.mempool.AddCommit(commit.Commit.DRPointer, commit.Commit.Proof.PKH, commit)
	}
	if reveal.Reveal != nil {
		m.chainState.DataRequests.HoldOwnReveal(reveal.Reveal.DRPointer, reveal)
	}
}

// Rewind implements spec.md §6: truncate BlockChain back to the given
// epoch, reset the tip to that epoch's block and return to
// WaitingConsensus. It does not collect the transactions that were only in
// the dropped blocks, so it adds nothing to m.recoveredTxs.
func (m *Manager) Rewind(epoch uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.Printf("[ChainManager] rewind requested to epoch %d", epoch)
	for e := range m.chainState.BlockChain {
		if e > epoch {
			delete(m.chainState.BlockChain, e)
		}
	}
	m.chainState.Tip = types.Checkpoint{Epoch: epoch, HashPrevBlock: m.chainState.BlockChain[epoch]}
	m.transitionTo(WaitingConsensus)
}
