package datarequest

import "github.com/witnet-go/witnet-core/internal/types"

// TallyTransaction is the minimal shape the stage automaton needs in order
// to close out a finished DR; internal/tally builds the full transaction.
type TallyTransaction = types.Transaction

// UpdateStages advances every in-flight DR's stage (spec.md §4.3), called
// once per consolidated block with the epoch that just closed. A DR moves
// COMMIT -> REVEAL once it has collected enough commits or exhausted its
// extra rounds (forcing a zero-commit tally instead); REVEAL -> TALLY
// symmetrically. Returns the dr_pointers that just entered TALLY, for the
// chain manager's block producer to build tallies for.
func (p *Pool) UpdateStages(currentEpoch uint32, collectEligibleBefore uint32) []types.Hash {
	var readyForTally []types.Hash

	for drPointer, state := range p.states {
		switch state.Stage {
		case StageCommit:
			enoughCommits := uint32(len(state.Commits)) >= uint32(state.DrOutput.Witnesses)
			deadlinePassed := currentEpoch >= state.EpochIncluded+collectEligibleBefore+state.BackupRoundsUsed
			switch {
			case enoughCommits:
				state.Stage = StageReveal
				p.ReplayTempReveals(drPointer)
			case deadlinePassed:
				if state.BackupRoundsUsed < p.extraRounds {
					state.BackupRoundsUsed++
				} else {
					// Extra rounds exhausted with insufficient commits: force a
					// zero-commit tally (spec.md §4.3 stage diagram).
					state.Stage = StageTally
					readyForTally = append(readyForTally, drPointer)
				}
			}

		case StageReveal:
			enoughReveals := len(state.Reveals) == len(state.Commits)
			deadlinePassed := currentEpoch >= state.EpochIncluded+2*collectEligibleBefore+state.BackupRoundsUsed
			switch {
			case enoughReveals:
				state.Stage = StageTally
				readyForTally = append(readyForTally, drPointer)
			case deadlinePassed:
				// Extra rounds for reveals are exhausted with whatever reveals
				// arrived; tally now, even with zero reveals.
				state.Stage = StageTally
				readyForTally = append(readyForTally, drPointer)
			}
		}
	}

	return readyForTally
}

// Finish archives drPointer once its tally transaction has been included
// in a block, removing it from active pool state (spec.md §3 lifecycle).
func (p *Pool) Finish(drPointer types.Hash) {
	state, ok := p.states[drPointer]
	if !ok {
		return
	}
	p.archive(drPointer, state)
}
