package chain

import (
	"log"

	"github.com/witnet-go/witnet-core/internal/superblock"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/utxo"
	"github.com/witnet-go/witnet-core/internal/validation"
	"github.com/witnet-go/witnet-core/internal/wire"
)

// AddBlocks implements spec.md §6: validate the batch and, depending on
// the current state, consolidate it directly or stash it for sync.
func (m *Manager) AddBlocks(fromPeer int, blocks []*types.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Synchronizing:
		return m.addBlocksWhileSyncing(blocks)
	case Synced, AlmostSynced:
		for _, b := range blocks {
			if err := m.applyBlock(b); err != nil {
				log.Printf("[ChainManager] rejecting block from peer %d: %v", fromPeer, err)
				return err
			}
		}
		return nil
	default:
		return types.ErrNotSynced(m.state.String())
	}
}

func (m *Manager) addBlocksWhileSyncing(blocks []*types.Block) error {
	if m.syncTarget == nil {
		return types.ErrChainNotReady()
	}
	split, err := SplitBatch(blocks, *m.syncTarget, m.cfg.SuperblockPeriod, m.chainState.CurrentSuperblockIndex)
	if err != nil {
		m.transitionTo(WaitingConsensus)
		return err
	}
	for _, b := range split.First {
		if err := m.applyBlock(b); err != nil {
			return err
		}
	}
	switch split.Kind {
	case SyncWithoutCandidate, SyncWithCandidate:
		for _, b := range split.Second {
			if err := m.applyBlock(b); err != nil {
				return err
			}
		}
		m.transitionTo(AlmostSynced)
		m.syncTarget = nil
	}
	return nil
}

// AddCandidates implements spec.md §6: stash block candidates for the
// current epoch; the best one wins at the next consolidation.
func (m *Manager) AddCandidates(blocks []*types.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, blocks...)
}

// applyBlock validates b against a fresh diff over the current utxo pool
// and, only on success, mutates chain state (spec.md §5 "mutation happens
// only on consolidate").
func (m *Manager) applyBlock(b *types.Block) error {
	diff := utxo.NewDiff(m.chainState.UTXOs, b.Header.Beacon.Epoch)

	bctx := &validation.BlockContext{
		Tx: validation.Context{
			Diff:                diff,
			Epoch:               b.Header.Beacon.Epoch,
			EpochStartTimestamp: uint64(b.Header.Beacon.Epoch) * epochLengthSecs,
			Params:              m.cfg.Params,
			Reputation:          m.chainState.Reputation,
			CurrentBlockNumber:  b.Header.Beacon.Epoch,
			DRPointerStage:      m.drPointerStage,
			SeenCommitPKH:       m.seenCommitPKH,
			SeenRevealPKH:       m.seenRevealPKH,
			DRWitnessesAndRound: m.drWitnessesAndRound,
			DROutput:            m.drOutput,
			CommitByPKH:         m.commitByPKH,
			TallyRecompute:      m.tallyRecompute,
			StakeBalance:        m.chainState.Stakes.Balance,
			RecordStake:         m.chainState.Stakes.Record,
			BlockReward:         m.cfg.BlockReward(b.Header.Beacon.Epoch),
		},
		PreviousTip:          m.chainState.Tip,
		CurrentEpoch:         b.Header.Beacon.Epoch,
		ActiveIdentities:     m.chainState.Reputation.ActiveIdentitiesCount(),
		MiningBackupFactor:   m.cfg.Params.MiningBackupFactor,
		TallyStageDRPointers: m.tallyStageDRPointers,
	}

	if _, err := validation.ValidateBlock(b, bctx); err != nil {
		return err
	}

	m.admitBlockSideEffects(b) // reads requester pkhs from the still-unmodified base pool
	diff.Apply()
	m.chainState.TAPI.Observe(b.Header.Signals)

	blockHash := wire.BlockHash(b)
	m.chainState.BlockChain[b.Header.Beacon.Epoch] = blockHash
	m.chainState.Tip = types.Checkpoint{Epoch: b.Header.Beacon.Epoch, HashPrevBlock: blockHash}
	m.chainState.pendingBlockHashes = append(m.chainState.pendingBlockHashes, blockHash)

	if (b.Header.Beacon.Epoch+1)%m.cfg.SuperblockPeriod == 0 {
		m.consolidateSuperblock()
	}
	return nil
}

const epochLengthSecs = 45

// admitBlockSideEffects folds a successfully validated block's data
// requests, commits and reveals into the data request pool, and rewards
// its witnesses in the reputation engine.
func (m *Manager) admitBlockSideEffects(b *types.Block) {
	epoch := b.Header.Beacon.Epoch
	blockHash := wire.BlockHash(b)
	for _, tx := range b.DataRequests {
		tx := tx
		drPointer := wire.TransactionBodyHash(&tx)
		var requester types.PublicKeyHash
		if len(tx.DataRequest.Inputs) > 0 {
			if vto, _, ok := m.chainState.UTXOs.Get(tx.DataRequest.Inputs[0].OutputPointer); ok {
				requester = vto.PKH
			}
		}
		m.chainState.DataRequests.ProcessDataRequest(drPointer, tx, requester, blockHash, epoch)
	}
	for _, tx := range b.Commits {
		pkh := tx.Commit.Proof.PKH
		_ = m.chainState.DataRequests.ProcessCommit(tx.Commit.DRPointer, pkh, tx)
	}
	for _, tx := range b.Reveals {
		_ = m.chainState.DataRequests.ProcessReveal(tx.Reveal.DRPointer, tx.Reveal.PKH, tx)
	}
	for _, tx := range b.Tallies {
		for _, pkh := range tallyRewardedPKHs(tx) {
			m.chainState.Reputation.Gain(pkh, 1)
		}
		m.chainState.DataRequests.Finish(tx.Tally.DRPointer)
	}
	m.chainState.Reputation.Penalize(1, 10000)

	newEntries := m.chainState.DataRequests.UpdateStages(epoch, m.cfg.Params.CollectEligibleBefore)
	_ = newEntries
}

func tallyRewardedPKHs(tx types.Transaction) []types.PublicKeyHash {
	var out []types.PublicKeyHash
	seen := make(map[types.PublicKeyHash]bool)
	for _, o := range tx.Tally.Outputs {
		if seen[o.PKH] {
			continue
		}
		seen[o.PKH] = true
		isPenalized := false
		for _, e := range tx.Tally.ErrorWitnessesPKH {
			if e == o.PKH {
				isPenalized = true
			}
		}
		for _, e := range tx.Tally.OutOfConsensusPKH {
			if e == o.PKH {
				isPenalized = true
			}
		}
		if !isPenalized {
			out = append(out, o.PKH)
		}
	}
	return out
}

// consolidateSuperblock builds the period's superblock candidate over the
// blocks consolidated since the previous one and over the current ARS
// (spec.md §4.7), opens vote collection for it among the rotating
// committee, and snapshots chain state as the fork-recovery checkpoint.
func (m *Manager) consolidateSuperblock() {
	index := m.chainState.CurrentSuperblockIndex
	sb := superblock.Build(index, m.chainState.Tip, m.chainState.pendingBlockHashes, m.chainState.Reputation.Members())
	m.chainState.LastSuperblock = &sb
	m.chainState.pendingBlockHashes = nil

	committee := superblock.SelectCommittee(index, m.chainState.Reputation.Members())
	m.chainState.SuperblockVotes = superblock.NewAggregator(index, committee)

	snapshot := m.chainState
	m.chainState.LastSuperblockSnapshot = &snapshot
	m.chainState.CurrentSuperblockIndex++
	log.Printf("[ChainManager] built superblock index %d at epoch %d (%d-member committee)",
		index, m.chainState.Tip.Epoch, len(committee))
}

// AddSuperBlockVote implements spec.md §6 AddSuperBlockVote: validate and
// record a committee member's vote, promoting the superblock once a
// supermajority agrees on the same hash.
func (m *Manager) AddSuperBlockVote(v superblock.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chainState.SuperblockVotes == nil {
		return types.ErrChainNotReady()
	}
	if err := m.chainState.SuperblockVotes.AddVote(v); err != nil {
		return err
	}
	if hash, ok := m.chainState.SuperblockVotes.Consolidated(); ok {
		log.Printf("[ChainManager] superblock index %d reached supermajority consensus on %s",
			v.SuperblockIndex, hash)
	}
	return nil
}

// AddTransaction implements spec.md §6: admit a transaction to the
// mempool if it validates against the current tip.
func (m *Manager) AddTransaction(tx types.Transaction, broadcast bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	diff := utxo.NewDiff(m.chainState.UTXOs, m.chainState.Tip.Epoch)
	ctx := &validation.Context{
		Diff:                diff,
		Epoch:               m.chainState.Tip.Epoch,
		EpochStartTimestamp: uint64(m.chainState.Tip.Epoch) * epochLengthSecs,
		Params:              m.cfg.Params,
		Reputation:          m.chainState.Reputation,
		CurrentBlockNumber:  m.chainState.Tip.Epoch,
		DRPointerStage:      m.drPointerStage,
		SeenCommitPKH:       m.seenCommitPKH,
		SeenRevealPKH:       m.seenRevealPKH,
		DRWitnessesAndRound: m.drWitnessesAndRound,
		DROutput:            m.drOutput,
		CommitByPKH:         m.commitByPKH,
		TallyRecompute:      m.tallyRecompute,
		StakeBalance:        m.chainState.Stakes.Balance,
		RecordStake:         m.chainState.Stakes.Record,
	}
	if _, err := validation.ValidateTransaction(&tx, ctx); err != nil {
		return err
	}

	switch tx.Kind {
	case types.KindValueTransfer:
		m.mempool.AddValueTransfer(tx)
	case types.KindDataRequest:
		m.mempool.AddDataRequest(tx)
	case types.KindCommit:
		m.mempool.AddCommit(tx.Commit.DRPointer, tx.Commit.Proof.PKH, tx)
	case types.KindReveal:
		m.mempool.AddReveal(tx.Reveal.DRPointer, tx.Reveal.PKH, tx)
	case types.KindStake:
		m.mempool.Stakes = append(m.mempool.Stakes, tx)
	case types.KindUnstake:
		m.mempool.Unstakes = append(m.mempool.Unstakes, tx)
	}

	if broadcast {
		log.Printf("[ChainManager] admitted %s transaction to mempool, broadcasting", tx.Kind)
	}
	return nil
}

func (m *Manager) tallyStageDRPointers() []types.Hash {
	return m.chainState.DataRequests.TallyStagePointers()
}

func (m *Manager) drPointerStage(drPointer types.Hash) (string, bool) {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return "", false
	}
	return state.Stage.String(), true
}

func (m *Manager) seenCommitPKH(drPointer types.Hash, pkh types.PublicKeyHash) bool {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return false
	}
	_, seen := state.Commits[pkh]
	return seen
}

func (m *Manager) seenRevealPKH(drPointer types.Hash, pkh types.PublicKeyHash) bool {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return false
	}
	_, seen := state.Reveals[pkh]
	return seen
}

func (m *Manager) drWitnessesAndRound(drPointer types.Hash) (uint16, uint32, error) {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return 0, 0, types.ErrDataRequestNotFound(drPointer)
	}
	return state.DrOutput.Witnesses, state.Round(), nil
}

func (m *Manager) drOutput(drPointer types.Hash) (types.DataRequestOutput, error) {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return types.DataRequestOutput{}, types.ErrDataRequestNotFound(drPointer)
	}
	return state.DrOutput, nil
}

func (m *Manager) commitByPKH(drPointer types.Hash, pkh types.PublicKeyHash) (types.Transaction, bool) {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return types.Transaction{}, false
	}
	tx, found := state.Commits[pkh]
	return tx, found
}
