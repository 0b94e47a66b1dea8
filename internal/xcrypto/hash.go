package xcrypto

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/witnet-go/witnet-core/internal/types"
)

// Sha256 hashes b with a single round of SHA-256, reusing chainhash's
// implementation (the teacher already depends on chainhash for this).
func Sha256(b []byte) types.Hash {
	return types.Hash(chainhash.HashB(b))
}
