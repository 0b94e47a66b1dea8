// Package reputation implements the Active Reputation Set (ARS) and Total
// Reputation Set (TRS) (spec.md §3, §4 domain notes): a per-pkh counter
// driving commit-eligibility targets, gained on a successful reveal and
// decayed every epoch.
package reputation

import "github.com/witnet-go/witnet-core/internal/types"

// Engine owns both collections. ARS membership gates which identities'
// reputation counts toward total_active_reputation; TRS holds the raw,
// monotonically-managed counters.
type Engine struct {
	trs map[types.PublicKeyHash]uint32
	ars map[types.PublicKeyHash]struct{}

	// arsOrder is the sliding window of recently-active identities in the
	// order they joined; trimmed from the front as it exceeds windowSize.
	arsOrder   []types.PublicKeyHash
	windowSize int
}

// NewEngine builds an engine whose ARS window holds at most windowSize
// identities (a consensus constant; the caller passes the network's
// activity_period).
func NewEngine(windowSize int) *Engine {
	return &Engine{
		trs:        make(map[types.PublicKeyHash]uint32),
		ars:        make(map[types.PublicKeyHash]struct{}),
		windowSize: windowSize,
	}
}

func (e *Engine) TRS(pkh types.PublicKeyHash) uint32 { return e.trs[pkh] }

func (e *Engine) InARS(pkh types.PublicKeyHash) bool {
	_, ok := e.ars[pkh]
	return ok
}

// ActiveIdentitiesCount is |ARS|, the input to the difficulty-target math.
func (e *Engine) ActiveIdentitiesCount() int { return len(e.ars) }

// TotalActiveReputation sums TRS restricted to ARS membership.
func (e *Engine) TotalActiveReputation() uint64 {
	var total uint64
	for pkh := range e.ars {
		total += uint64(e.trs[pkh])
	}
	return total
}

// Gain credits pkh with amount reputation and admits it into the ARS
// window, evicting the oldest member if the window is full.
func (e *Engine) Gain(pkh types.PublicKeyHash, amount uint32) {
	e.trs[pkh] += amount
	e.admitToARS(pkh)
}

func (e *Engine) admitToARS(pkh types.PublicKeyHash) {
	if _, ok := e.ars[pkh]; ok {
		return
	}
	e.ars[pkh] = struct{}{}
	e.arsOrder = append(e.arsOrder, pkh)
	for e.windowSize > 0 && len(e.arsOrder) > e.windowSize {
		evicted := e.arsOrder[0]
		e.arsOrder = e.arsOrder[1:]
		delete(e.ars, evicted)
	}
}

// Penalize applies the per-epoch monotonic decay: every identity in the
// TRS, active or not, loses a fraction of its reputation, floored at zero. Called once per
// consolidated epoch by the chain manager.
func (e *Engine) Penalize(numerator, denominator uint32) {
	if denominator == 0 {
		return
	}
	for pkh, rep := range e.trs {
		penalty := rep / denominator * numerator
		if penalty > rep {
			rep = 0
		} else {
			rep -= penalty
		}
		e.trs[pkh] = rep
	}
}

// Members lists the current ARS in admission order, for superblock
// committee selection and the ARS merkle root (spec.md §4.7).
func (e *Engine) Members() []types.PublicKeyHash {
	out := make([]types.PublicKeyHash, len(e.arsOrder))
	copy(out, e.arsOrder)
	return out
}

// Expel removes pkh from the ARS without touching its TRS counter (used
// when an identity goes silent for longer than the activity window).
func (e *Engine) Expel(pkh types.PublicKeyHash) {
	delete(e.ars, pkh)
	for i, p := range e.arsOrder {
		if p == pkh {
			e.arsOrder = append(e.arsOrder[:i], e.arsOrder[i+1:]...)
			break
		}
	}
}
