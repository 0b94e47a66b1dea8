package types

import "fmt"

// OutputPointer stably identifies a created output: the transaction that
// created it plus the output's position within that transaction's output
// list.
type OutputPointer struct {
	TransactionID Hash   `json:"transactionId"`
	OutputIndex   uint32 `json:"outputIndex"`
}

func (p OutputPointer) String() string {
	return fmt.Sprintf("%s:%d", p.TransactionID, p.OutputIndex)
}

// ValueTransferOutput (VTO) is a spendable coin: an amount locked to a
// public key hash, optionally unspendable before a unix-epoch timestamp.
type ValueTransferOutput struct {
	PKH      PublicKeyHash `json:"pkh"`
	Value    uint64        `json:"value"`
	TimeLock uint64        `json:"timeLock"`
}

// Input wraps an OutputPointer; spending it consumes the VTO it names.
type Input struct {
	OutputPointer OutputPointer `json:"outputPointer"`
}

func NewInput(ptr OutputPointer) Input { return Input{OutputPointer: ptr} }
