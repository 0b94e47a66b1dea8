package wire

import "github.com/witnet-go/witnet-core/internal/types"

// MerkleRoot builds the binary merkle root over a list of transaction body
// hashes, one tree per transaction kind (spec.md §3, §4.5). An empty list
// roots to the zero hash; a single-leaf list roots to that leaf.
func MerkleRoot(hashes []types.Hash) types.Hash {
	if len(hashes) == 0 {
		return types.Hash{}
	}
	level := append([]types.Hash(nil), hashes...)
	for len(level) > 1 {
		var next []types.Hash
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				// Odd node count: pair the last hash with itself rather than
				// promote it unchanged. A list and the same list with its odd
				// last hash repeated (e.g. [a,b,c] and [a,b,c,c]) therefore
				// share a root.
				next = append(next, hashPair(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

func hashPair(a, b types.Hash) types.Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	return types.HashFromBytes(buf)
}

// MerkleRootsOf computes MerkleRoots for every transaction kind in a block
// body, so validators can compare against the header's declared roots
// (spec.md §4.5 "Merkle roots agree with the bodies").
func MerkleRootsOf(b *types.Block) types.MerkleRoots {
	hashOf := func(tx types.Transaction) types.Hash { return TransactionBodyHash(&tx) }
	hashesOf := func(txs []types.Transaction) []types.Hash {
		out := make([]types.Hash, len(txs))
		for i, tx := range txs {
			out[i] = hashOf(tx)
		}
		return out
	}
	var mintHashes []types.Hash
	if b.Mint != nil {
		mintHashes = []types.Hash{hashOf(*b.Mint)}
	}
	return types.MerkleRoots{
		Mint:          MerkleRoot(mintHashes),
		ValueTransfer: MerkleRoot(hashesOf(b.ValueTransfers)),
		DataRequest:   MerkleRoot(hashesOf(b.DataRequests)),
		Commit:        MerkleRoot(hashesOf(b.Commits)),
		Reveal:        MerkleRoot(hashesOf(b.Reveals)),
		Tally:         MerkleRoot(hashesOf(b.Tallies)),
		Stake:         MerkleRoot(hashesOf(b.Stakes)),
		Unstake:       MerkleRoot(hashesOf(b.Unstakes)),
	}
}
