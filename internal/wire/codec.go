// Package wire implements the deterministic serialization validation and
// hashing depend on (spec.md §6): blocks and transactions round-trip
// byte-for-byte through CBOR, and hashes are SHA-256 over the serialized
// body excluding signatures.
package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/witnet-go/witnet-core/internal/types"
)

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// txBody is the signature-excluding projection of a Transaction that gets
// hashed and that every signature is computed over.
type txBody struct {
	Kind          types.TransactionKind   `cbor:"kind"`
	Mint          *types.MintTransactionBody    `cbor:"mint,omitempty"`
	ValueTransfer *types.VTTransactionBody      `cbor:"vt,omitempty"`
	DataRequest   *types.DRTransactionBody      `cbor:"dr,omitempty"`
	Commit        *types.CommitTransactionBody  `cbor:"commit,omitempty"`
	Reveal        *types.RevealTransactionBody  `cbor:"reveal,omitempty"`
	Tally         *types.TallyTransactionBody   `cbor:"tally,omitempty"`
	Stake         *types.StakeTransactionBody   `cbor:"stake,omitempty"`
	Unstake       *types.UnstakeTransactionBody `cbor:"unstake,omitempty"`
}

func bodyOf(tx *types.Transaction) txBody {
	return txBody{
		Kind:          tx.Kind,
		Mint:          tx.Mint,
		ValueTransfer: tx.ValueTransfer,
		DataRequest:   tx.DataRequest,
		Commit:        tx.Commit,
		Reveal:        tx.Reveal,
		Tally:         tx.Tally,
		Stake:         tx.Stake,
		Unstake:       tx.Unstake,
	}
}

// EncodeTransactionBody deterministically serializes everything in tx
// except its signatures.
func EncodeTransactionBody(tx *types.Transaction) ([]byte, error) {
	return encMode.Marshal(bodyOf(tx))
}

// TransactionBodyHash is SHA-256 over EncodeTransactionBody's output; this
// is both the transaction's id and what every input signature signs.
func TransactionBodyHash(tx *types.Transaction) types.Hash {
	b, err := EncodeTransactionBody(tx)
	if err != nil {
		panic(err) // body types are all CBOR-encodable by construction
	}
	return types.HashFromBytes(b)
}

// EncodeTransaction serializes the full transaction including signatures,
// for wire transmission.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	return encMode.Marshal(tx)
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(b []byte) (*types.Transaction, error) {
	var tx types.Transaction
	if err := cbor.Unmarshal(b, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// blockBody excludes the producer's signature, matching spec.md §6
// ("Hashes are SHA-256 over the serialized body excluding the signature").
type blockBody struct {
	Header         types.BlockHeader  `cbor:"header"`
	Mint           *types.Transaction `cbor:"mint"`
	ValueTransfers []types.Transaction `cbor:"vts,omitempty"`
	DataRequests   []types.Transaction `cbor:"drs,omitempty"`
	Commits        []types.Transaction `cbor:"commits,omitempty"`
	Reveals        []types.Transaction `cbor:"reveals,omitempty"`
	Tallies        []types.Transaction `cbor:"tallies,omitempty"`
	Stakes         []types.Transaction `cbor:"stakes,omitempty"`
	Unstakes       []types.Transaction `cbor:"unstakes,omitempty"`
}

func bodyOfBlock(b *types.Block) blockBody {
	return blockBody{
		Header:         b.Header,
		Mint:           b.Mint,
		ValueTransfers: b.ValueTransfers,
		DataRequests:   b.DataRequests,
		Commits:        b.Commits,
		Reveals:        b.Reveals,
		Tallies:        b.Tallies,
		Stakes:         b.Stakes,
		Unstakes:       b.Unstakes,
	}
}

// EncodeBlockBody serializes everything in b except BlockSig.
func EncodeBlockBody(b *types.Block) ([]byte, error) {
	return encMode.Marshal(bodyOfBlock(b))
}

// BlockHash is SHA-256 over EncodeBlockBody's output.
func BlockHash(b *types.Block) types.Hash {
	raw, err := EncodeBlockBody(b)
	if err != nil {
		panic(err)
	}
	return types.HashFromBytes(raw)
}

// EncodeBlock serializes the full block including its signature.
func EncodeBlock(b *types.Block) ([]byte, error) {
	return encMode.Marshal(b)
}

// DecodeBlock is the inverse of EncodeBlock. Round-tripping a block
// through Encode/Decode must reproduce it byte-for-byte (spec.md §8
// invariant 7).
func DecodeBlock(b []byte) (*types.Block, error) {
	var blk types.Block
	if err := cbor.Unmarshal(b, &blk); err != nil {
		return nil, err
	}
	return &blk, nil
}
