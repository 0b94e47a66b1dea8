package chain

import "github.com/witnet-go/witnet-core/internal/types"

// TAPIEngine tracks per-feature signaling bits across a sliding window of
// block headers and flips a feature active once it has been signaled by a
// supermajority of the last window (the original source's "TAPI
// activation counters", supplemented here since the distilled spec only
// gates a couple of RAD features on it without describing the counter
// itself).
type TAPIEngine struct {
	windowSize int
	bitCounts  map[uint32]int // bit position -> count of 1s in the current window
	window     []uint32       // recent Signals values, oldest first
	active     map[uint32]bool
}

// NewTAPIEngine builds a counter with the protocol's standard 26880-epoch
// activation window (roughly two weeks).
func NewTAPIEngine() *TAPIEngine {
	return &TAPIEngine{
		windowSize: 26880,
		bitCounts:  make(map[uint32]int),
		active:     make(map[uint32]bool),
	}
}

// Observe folds one more block header's signaling bitfield into the
// window, evicting the oldest entry once the window is full.
func (t *TAPIEngine) Observe(signals uint32) {
	t.window = append(t.window, signals)
	for bit := uint32(0); bit < 32; bit++ {
		if signals&(1<<bit) != 0 {
			t.bitCounts[bit]++
		}
	}
	if len(t.window) > t.windowSize {
		oldest := t.window[0]
		t.window = t.window[1:]
		for bit := uint32(0); bit < 32; bit++ {
			if oldest&(1<<bit) != 0 {
				t.bitCounts[bit]--
			}
		}
	}
	if len(t.window) == t.windowSize {
		for bit, count := range t.bitCounts {
			if count*100/t.windowSize >= 80 {
				t.active[bit] = true
			}
		}
	}
}

// Active reports whether the feature signaled at the given bit has
// reached its activation threshold.
func (t *TAPIEngine) Active(bit uint32) bool { return t.active[bit] }

// RetrieveKindGate maps a RAD retrieve kind to the TAPI bit that gates it,
// so the data request validator can ask "is this kind allowed yet" without
// knowing about bit numbering.
func (t *TAPIEngine) RetrieveKindGate(kind types.RADRetrieveKind) bool {
	switch kind {
	case types.RADRetrieveHTTPHead:
		return t.Active(wip0020HTTPHeadBit)
	default:
		return true
	}
}

const wip0020HTTPHeadBit = 18
