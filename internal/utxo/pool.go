// Package utxo implements the unspent-output map (spec.md §3, §4.1): a flat
// pointer->output map plus a layered diff used during block validation so a
// rejected block never touches the base pool.
package utxo

import (
	"fmt"

	"github.com/witnet-go/witnet-core/internal/types"
)

// Entry is a VTO plus the block number it was created in, the unit
// maturity checks (collateral_age) are measured against.
type Entry struct {
	Output      types.ValueTransferOutput
	BlockNumber uint32
}

// Pool is the base unspent-outputs map. A pointer appears at most once.
type Pool struct {
	entries map[types.OutputPointer]Entry
}

func NewPool() *Pool {
	return &Pool{entries: make(map[types.OutputPointer]Entry)}
}

func (p *Pool) Contains(ptr types.OutputPointer) bool {
	_, ok := p.entries[ptr]
	return ok
}

func (p *Pool) Get(ptr types.OutputPointer) (types.ValueTransferOutput, uint32, bool) {
	e, ok := p.entries[ptr]
	return e.Output, e.BlockNumber, ok
}

func (p *Pool) Insert(ptr types.OutputPointer, vto types.ValueTransferOutput, blockNumber uint32) {
	p.entries[ptr] = Entry{Output: vto, BlockNumber: blockNumber}
}

// Remove deletes ptr, failing with OutputNotFound if it was already absent
// (spec.md §4.1 invariant).
func (p *Pool) Remove(ptr types.OutputPointer) error {
	if _, ok := p.entries[ptr]; !ok {
		return types.ErrOutputNotFound(ptr)
	}
	delete(p.entries, ptr)
	return nil
}

// Iter calls fn for every entry currently in the pool. Insertion order is
// not defined or relied upon (spec.md §3).
func (p *Pool) Iter(fn func(types.OutputPointer, types.ValueTransferOutput, uint32)) {
	for ptr, e := range p.entries {
		fn(ptr, e.Output, e.BlockNumber)
	}
}

func (p *Pool) Len() int { return len(p.entries) }

func (p *Pool) String() string { return fmt.Sprintf("utxo.Pool{%d entries}", len(p.entries)) }
