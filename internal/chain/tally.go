package chain

import (
	"github.com/witnet-go/witnet-core/internal/tally"
	"github.com/witnet-go/witnet-core/internal/types"
)

// tallyRecompute wires the tally evaluator to the data request pool's
// current state, decoding each collected reveal via decodeReveal. The RAD
// aggregate/tally reducer engine itself is an external collaborator
// (spec.md §1 non-goal); this bridges its expected input shape using the
// revealed bytes as the comparable value directly, since the reducer
// scripts this core validates against are restricted to the whitelisted
// kinds in validation.validateRADRequest.
func (m *Manager) tallyRecompute(drPointer types.Hash) (tally.Outcome, types.PublicKeyHash, error) {
	state, ok := m.chainState.DataRequests.Get(drPointer)
	if !ok {
		return tally.Outcome{}, types.PublicKeyHash{}, types.ErrDataRequestNotFound(drPointer)
	}

	decoded := make([]tally.DecodedReveal, 0, len(state.Reveals))
	for pkh, tx := range state.Reveals {
		decoded = append(decoded, decodeReveal(pkh, tx))
	}

	return tally.Evaluate(state, decoded), state.PkhOfRequester, nil
}

// decodeReveal treats the raw reveal payload as its own comparable value:
// well-typed unless empty, an error reveal if it starts with the Radon
// error tag byte 0xFF (the smallest marker the pack's CBOR-based reveal
// encoding can carry without a full Radon type decoder, which is out of
// scope here).
func decodeReveal(pkh types.PublicKeyHash, tx types.Transaction) tally.DecodedReveal {
	body := tx.Reveal.RevealBody
	if len(body) == 0 {
		return tally.DecodedReveal{PKH: pkh, WellTyped: false, IsError: true}
	}
	if body[0] == 0xFF {
		return tally.DecodedReveal{PKH: pkh, WellTyped: true, IsError: true, Value: body}
	}
	return tally.DecodedReveal{PKH: pkh, WellTyped: true, IsError: false, Value: body}
}
