package validation

import "github.com/witnet-go/witnet-core/internal/types"

func pkhByte(b byte) types.PublicKeyHash {
	var pkh types.PublicKeyHash
	pkh[0] = b
	return pkh
}
