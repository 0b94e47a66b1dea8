// Package datarequest implements the staged commit/reveal/tally automaton
// (spec.md §4.3): one State per in-flight data request, advanced once per
// consolidated block by UpdateStages.
package datarequest

import (
	"github.com/witnet-go/witnet-core/internal/types"
)

// Stage is where a data request sits in its lifecycle.
type Stage uint8

const (
	StageCommit Stage = iota
	StageReveal
	StageTally
	StageFinished
)

func (s Stage) String() string {
	switch s {
	case StageCommit:
		return "COMMIT"
	case StageReveal:
		return "REVEAL"
	case StageTally:
		return "TALLY"
	case StageFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// State is the per-request aggregate: everyone else holds a 32-byte
// dr_pointer into the pool rather than an owning reference (spec.md §9's
// arena-plus-index pattern).
type State struct {
	Info               types.DRTransactionBody
	DrOutput           types.DataRequestOutput
	Stage              Stage
	Commits            map[types.PublicKeyHash]types.Transaction
	Reveals            map[types.PublicKeyHash]types.Transaction
	PkhOfRequester     types.PublicKeyHash
	BlockHashDrIncluded types.Hash
	EpochIncluded      uint32
	BackupRoundsUsed   uint32
}

func newState(drPointer types.Hash, tx types.Transaction, requester types.PublicKeyHash, blockHash types.Hash, epoch uint32) *State {
	return &State{
		Info:                *tx.DataRequest,
		DrOutput:            tx.DataRequest.DataRequestOutput,
		Stage:                StageCommit,
		Commits:              make(map[types.PublicKeyHash]types.Transaction),
		Reveals:              make(map[types.PublicKeyHash]types.Transaction),
		PkhOfRequester:       requester,
		BlockHashDrIncluded:  blockHash,
		EpochIncluded:        epoch,
	}
}

// Round is the current backup round (0 = primary round, spec.md §4.3).
func (s *State) Round() uint32 { return s.BackupRoundsUsed }

// Pool owns every in-flight DataRequestState plus the node's own
// waiting-for-reveal queue and a temp buffer for reveals that race ahead
// of their DR's local arrival (spec.md §9 "SUPPLEMENTED FEATURES" #2).
type Pool struct {
	states map[types.Hash]*State
	// waitingForReveal holds dr_pointers this node has committed to and
	// intends to reveal once the stage advances.
	waitingForReveal map[types.Hash]types.Transaction
	// tempReveals buffers reveal transactions whose dr_pointer is not yet
	// known locally, replayed once the DR is processed.
	tempReveals map[types.Hash][]types.Transaction
	finished    []*State

	extraRounds uint32
}

// NewPool builds an empty pool. extraRounds is the consensus constant
// bounding how many backup rounds a DR waits before a forced tally
// (spec.md §4.3).
func NewPool(extraRounds uint32) *Pool {
	return &Pool{
		states:           make(map[types.Hash]*State),
		waitingForReveal: make(map[types.Hash]types.Transaction),
		tempReveals:      make(map[types.Hash][]types.Transaction),
		extraRounds:      extraRounds,
	}
}

func (p *Pool) Get(drPointer types.Hash) (*State, bool) {
	s, ok := p.states[drPointer]
	return s, ok
}

func (p *Pool) Len() int { return len(p.states) }

// TallyStagePointers lists every dr_pointer currently sitting in TALLY
// stage, for the block validator to cross-check against a block's claimed
// tallies (spec.md §4.5 "every DR in TALLY stage at the tip must have a
// matching tally in this block").
func (p *Pool) TallyStagePointers() []types.Hash {
	var out []types.Hash
	for ptr, s := range p.states {
		if s.Stage == StageTally {
			out = append(out, ptr)
		}
	}
	return out
}

// ProcessDataRequest inserts a newly-included DR transaction, starting it
// in stage COMMIT.
func (p *Pool) ProcessDataRequest(drPointer types.Hash, tx types.Transaction, requester types.PublicKeyHash, blockHash types.Hash, epoch uint32) {
	if _, exists := p.states[drPointer]; exists {
		return
	}
	p.states[drPointer] = newState(drPointer, tx, requester, blockHash, epoch)
	p.ReplayTempReveals(drPointer)
}

// ProcessCommit records a commit, idempotently: a duplicate (pkh,
// dr_pointer) is rejected rather than overwriting the first commit.
func (p *Pool) ProcessCommit(drPointer types.Hash, pkh types.PublicKeyHash, tx types.Transaction) error {
	state, ok := p.states[drPointer]
	if !ok {
		return types.ErrDataRequestNotFound(drPointer)
	}
	if state.Stage != StageCommit {
		return types.ErrNotCommitStage(drPointer)
	}
	if _, dup := state.Commits[pkh]; dup {
		return types.ErrDuplicatedCommit(pkh, drPointer)
	}
	state.Commits[pkh] = tx
	return nil
}

// ProcessReveal records a reveal, symmetric to ProcessCommit. If the DR is
// not yet known locally the reveal is buffered in tempReveals rather than
// rejected outright, matching the original node's race-tolerant handling
// of reveals that arrive slightly ahead of the block that introduced their
// DR (spec.md §9 supplemented feature #2).
func (p *Pool) ProcessReveal(drPointer types.Hash, pkh types.PublicKeyHash, tx types.Transaction) error {
	state, ok := p.states[drPointer]
	if !ok {
		p.tempReveals[drPointer] = append(p.tempReveals[drPointer], tx)
		return nil
	}
	if state.Stage != StageReveal {
		return types.ErrNotRevealStage(drPointer)
	}
	if _, dup := state.Reveals[pkh]; dup {
		return types.ErrDuplicatedReveal(pkh, drPointer)
	}
	state.Reveals[pkh] = tx
	return nil
}

// ReplayTempReveals flushes any reveals that arrived before drPointer's DR
// was known locally. The buffer is kept until the DR is known and in
// REVEAL stage; a call made earlier leaves it untouched.
func (p *Pool) ReplayTempReveals(drPointer types.Hash) {
	pending, ok := p.tempReveals[drPointer]
	if !ok {
		return
	}
	if state, known := p.states[drPointer]; !known || state.Stage != StageReveal {
		return
	}
	delete(p.tempReveals, drPointer)
	for _, tx := range pending {
		_ = p.ProcessReveal(drPointer, tx.Reveal.PKH, tx)
	}
}

// HoldOwnReveal stashes a reveal this node produced for a DR still in
// COMMIT stage, to be broadcast once REVEAL opens (spec.md §9 supplemented
// feature #1, the AddCommitReveal hybrid handling).
func (p *Pool) HoldOwnReveal(drPointer types.Hash, reveal types.Transaction) {
	p.waitingForReveal[drPointer] = reveal
}

// PopOwnReveal returns and clears a held own-reveal for drPointer, if any.
func (p *Pool) PopOwnReveal(drPointer types.Hash) (types.Transaction, bool) {
	tx, ok := p.waitingForReveal[drPointer]
	if ok {
		delete(p.waitingForReveal, drPointer)
	}
	return tx, ok
}

// FinishedDataRequests drains the archive of states that Finish has moved
// out of the pool since the last call, for persistence (spec.md §4.3).
func (p *Pool) FinishedDataRequests() []*State {
	out := p.finished
	p.finished = nil
	return out
}

// archive moves a DR from active state to the finished archive.
func (p *Pool) archive(drPointer types.Hash, state *State) {
	state.Stage = StageFinished
	p.finished = append(p.finished, state)
	delete(p.states, drPointer)
	delete(p.waitingForReveal, drPointer)
}
