// Package chain implements the actor-style coordinator that consumes peer
// beacons, drives synchronization, consolidates superblocks, and triggers
// mining (spec.md §4.6). It owns the utxo pool, the data request pool and
// the reputation engine; block validation takes an immutable snapshot of
// each, mutation only happens when the manager itself consolidates a
// block.
package chain

import (
	"log"
	"sync"

	"github.com/witnet-go/witnet-core/internal/datarequest"
	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/superblock"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/utxo"
	"github.com/witnet-go/witnet-core/internal/validation"
	"github.com/witnet-go/witnet-core/internal/wire"
)

// State is one of the four chain sync states (spec.md §4.6).
type State uint8

const (
	WaitingConsensus State = iota
	Synchronizing
	AlmostSynced
	Synced
)

func (s State) String() string {
	switch s {
	case WaitingConsensus:
		return "WaitingConsensus"
	case Synchronizing:
		return "Synchronizing"
	case AlmostSynced:
		return "AlmostSynced"
	case Synced:
		return "Synced"
	default:
		return "Unknown"
	}
}

// ChainState is the aggregate spec.md §4 names: the utxo pool, the data
// request pool, reputation, the tapi engine and the epoch→hash chain of
// consolidated blocks (truncated by Rewind).
type ChainState struct {
	UTXOs        *utxo.Pool
	DataRequests *datarequest.Pool
	Reputation   *reputation.Engine
	TAPI         *TAPIEngine
	Stakes       *StakeLedger

	BlockChain map[uint32]types.Hash // epoch -> consolidated block hash
	Tip        types.Checkpoint

	CurrentSuperblockIndex uint32
	LastSuperblockSnapshot *ChainState // previous-superblock copy, for fork recovery

	LastSuperblock     *superblock.SuperBlock
	SuperblockVotes    *superblock.Aggregator
	pendingBlockHashes []types.Hash // accumulated since the last superblock
}

// Manager is the chain manager actor. Every exported method is the
// single-threaded entry point a caller (peer session, miner, wall-clock
// notifier) would otherwise send a message to; each one takes m.mu, so
// concurrent calls are serialized by the manager itself, matching the
// single-threaded actor model this core assumes (spec.md §5).
type Manager struct {
	mu sync.Mutex

	state State
	cfg   Config

	chainState ChainState

	candidates          []*types.Block
	sinceLastBeaconTick bool
	syncTarget          *SyncTarget

	tempReveals  map[types.Hash][]types.Transaction // replayed on the next tick
	recoveredTxs []types.Transaction                // from a rewind, reinserted in bounded batches

	mempool *Mempool
	miner   *Miner
}

// Config is the set of consensus/network parameters the manager needs
// beyond what validation.ConsensusParams already carries.
type Config struct {
	Params             validation.ConsensusParams
	SuperblockPeriod   uint32
	OutboundPeerLimit  int
	ConsensusThreshold uint32 // percent, e.g. 60
	MiningEnabled      bool
	BootstrapHash      types.Hash
	BlockReward        func(epoch uint32) uint64
}

// NewManager builds a chain manager starting from genesis.
func NewManager(cfg Config, genesis *types.Block) *Manager {
	m := &Manager{
		cfg:   cfg,
		state: WaitingConsensus,
		chainState: ChainState{
			UTXOs:        utxo.NewPool(),
			DataRequests: datarequest.NewPool(cfg.Params.ExtraRounds),
			Reputation:   reputation.NewEngine(cfg.Params.ActivityWindow),
			TAPI:         NewTAPIEngine(),
			Stakes:       NewStakeLedger(),
			BlockChain:   make(map[uint32]types.Hash),
		},
		tempReveals: make(map[types.Hash][]types.Transaction),
		mempool:     NewMempool(),
	}
	genesisHash := wire.BlockHash(genesis)
	mintTxID := wire.TransactionBodyHash(genesis.Mint)
	for i, o := range genesis.Mint.Mint.Outputs {
		ptr := types.OutputPointer{TransactionID: mintTxID, OutputIndex: uint32(i)}
		m.chainState.UTXOs.Insert(ptr, o, 0)
	}
	m.chainState.BlockChain[0] = genesisHash
	m.chainState.Tip = types.Checkpoint{Epoch: 0, HashPrevBlock: genesisHash}
	return m
}

// State reports the manager's current sync state (thread-safe read).
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Tip reports the manager's current chain tip checkpoint.
func (m *Manager) Tip() types.Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chainState.Tip
}

func (m *Manager) transitionTo(s State) {
	if m.state != s {
		log.Printf("[ChainManager] %s -> %s", m.state, s)
	}
	m.state = s
}
