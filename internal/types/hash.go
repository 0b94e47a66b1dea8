// Package types holds the wire-level data model shared by the validator,
// the data request pool and the chain manager: hashes, outputs, the
// transaction tagged union and the block header.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a tagged 256-bit digest. Only SHA-256 is supported today, but the
// type stays distinct from a bare [32]byte so a future tag does not leak
// through every call site.
type Hash [32]byte

// HashFromBytes computes the SHA-256 digest of b.
func HashFromBytes(b []byte) Hash {
	return Hash(chainhash.HashB(b))
}

// HashFromHex parses a hex-encoded hash, most significant byte first.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("types: decode hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("types: hash must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// HashWithFirstU32 builds a hash whose leading 4 bytes equal v and the rest are
// zero. Used by difficulty-target arithmetic (spec S3) where only the
// magnitude of the first 32 bits is compared.
func HashWithFirstU32(v uint32) Hash {
	var h Hash
	h[0] = byte(v >> 24)
	h[1] = byte(v >> 16)
	h[2] = byte(v >> 8)
	h[3] = byte(v)
	return h
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) IsZero() bool { return h == Hash{} }

// Cmp orders hashes as big-endian unsigned integers; used to compare a VRF
// proof hash against a difficulty target.
func (h Hash) Cmp(o Hash) int {
	for i := range h {
		if h[i] != o[i] {
			if h[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// LessOrEqual reports whether h <= target, the core eligibility test used
// throughout §4 ("H(proof) <= target").
func (h Hash) LessOrEqual(target Hash) bool { return h.Cmp(target) <= 0 }

func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// PublicKeyHash is the 20-byte identity derived from a compressed
// secp256k1 public key (see internal/xcrypto.PKHFromPublicKey).
type PublicKeyHash [20]byte

func PKHFromHex(s string) (PublicKeyHash, error) {
	var pkh PublicKeyHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return pkh, fmt.Errorf("types: decode pkh: %w", err)
	}
	if len(raw) != len(pkh) {
		return pkh, fmt.Errorf("types: pkh must be %d bytes, got %d", len(pkh), len(raw))
	}
	copy(pkh[:], raw)
	return pkh, nil
}

func (p PublicKeyHash) String() string  { return hex.EncodeToString(p[:]) }
func (p PublicKeyHash) IsZero() bool    { return p == PublicKeyHash{} }
func (p PublicKeyHash) Equal(o PublicKeyHash) bool { return p == o }

func (p PublicKeyHash) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PublicKeyHash) UnmarshalText(text []byte) error {
	parsed, err := PKHFromHex(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
