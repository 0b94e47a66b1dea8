package utxo

import "github.com/witnet-go/witnet-core/internal/types"

// Diff is a two-layer view over a base Pool: it accumulates consumed
// pointers and newly created outputs without mutating base, so a block
// that fails validation midway leaves base untouched (spec.md §4.1).
type Diff struct {
	base        *Pool
	blockNumber uint32
	consumed    map[types.OutputPointer]struct{}
	created     map[types.OutputPointer]types.ValueTransferOutput
	applied     bool
}

// NewDiff opens a diff over base, recording the block number new outputs
// will be stamped with.
func NewDiff(base *Pool, blockNumber uint32) *Diff {
	return &Diff{
		base:        base,
		blockNumber: blockNumber,
		consumed:    make(map[types.OutputPointer]struct{}),
		created:     make(map[types.OutputPointer]types.ValueTransferOutput),
	}
}

func (d *Diff) BlockNumber() uint32 { return d.blockNumber }

// Get reflects diff-over-base: a created-then-not-yet-consumed pointer
// resolves from the diff; a consumed pointer is never visible again even
// if it exists in base.
func (d *Diff) Get(ptr types.OutputPointer) (types.ValueTransferOutput, uint32, bool) {
	if _, gone := d.consumed[ptr]; gone {
		return types.ValueTransferOutput{}, 0, false
	}
	if vto, ok := d.created[ptr]; ok {
		return vto, d.blockNumber, true
	}
	return d.base.Get(ptr)
}

func (d *Diff) Contains(ptr types.OutputPointer) bool {
	_, _, ok := d.Get(ptr)
	return ok
}

// Consume marks ptr spent within this diff. It must already be visible
// (spec.md §4.1 double-spend detection: callers check Get/Contains first
// and surface OutputNotFound themselves before calling Consume).
func (d *Diff) Consume(ptr types.OutputPointer) {
	delete(d.created, ptr)
	d.consumed[ptr] = struct{}{}
}

// Create records a new output at ptr.
func (d *Diff) Create(ptr types.OutputPointer, vto types.ValueTransferOutput) {
	delete(d.consumed, ptr)
	d.created[ptr] = vto
}

// Apply folds the diff into base and marks the diff as spent (move-only:
// calling Apply twice panics, matching the spec's "apply consumes the
// diff" invariant).
func (d *Diff) Apply() {
	if d.applied {
		panic("utxo: diff already applied")
	}
	d.applied = true
	for ptr := range d.consumed {
		// An output created and spent within the same diff never reached base;
		// removing it there would be a spurious OutputNotFound.
		if d.base.Contains(ptr) {
			_ = d.base.Remove(ptr)
		}
	}
	for ptr, vto := range d.created {
		d.base.Insert(ptr, vto, d.blockNumber)
	}
}

// CreatedCount and ConsumedCount support tests asserting on diff shape
// without reaching into unexported fields.
func (d *Diff) CreatedCount() int  { return len(d.created) }
func (d *Diff) ConsumedCount() int { return len(d.consumed) }
