package xcrypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/vechain/go-ecvrf"

	"github.com/witnet-go/witnet-core/internal/types"
)

// vrfScheme is the single VRF construction the core speaks: secp256k1 with
// a SHA-256 "try-and-increment" hash-to-curve, the same curve used for
// transaction signatures so a commit's proof and its collateral-owning
// signature key are always the same secp256k1 keypair.
var vrfScheme = ecvrf.NewSecp256k1Sha256Tai()

// VRFProve builds the eligibility proof over alpha = (vrf_input || dr_pointer
// or epoch || hash_prev_vrf, depending on caller). beta is the pseudo-random
// output the proof's hash is derived from.
func VRFProve(priv *PrivateKey, alpha []byte) (proof types.VRFProof, beta []byte, err error) {
	stdPriv := toStdECDSA(priv)
	pi, beta, err := vrfScheme.Prove(stdPriv, alpha)
	if err != nil {
		return types.VRFProof{}, nil, fmt.Errorf("xcrypto: vrf prove: %w", err)
	}
	pub := priv.PubKey()
	return types.VRFProof{
		Proof:     pi,
		PKH:       PKHFromPublicKey(pub),
		PublicKey: pub.SerializeCompressed(),
	}, beta, nil
}

// VRFVerify checks proof.Proof against alpha and the public key embedded in
// the proof, returning the same beta VRFProve produced. Callers must
// separately confirm proof.PKH matches the expected signer (spec.md §4.2's
// "the VRF proof must verify and its pkh must match the signer pkh").
func VRFVerify(proof types.VRFProof, alpha []byte) (beta []byte, err error) {
	pub, err := ParsePublicKey(proof.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("xcrypto: vrf verify: parse public key: %w", err)
	}
	if PKHFromPublicKey(pub) != proof.PKH {
		return nil, fmt.Errorf("xcrypto: vrf verify: pkh does not match embedded public key")
	}
	stdPub := toStdECDSAPublic(pub)
	beta, err = vrfScheme.Verify(stdPub, alpha, proof.Proof)
	if err != nil {
		return nil, fmt.Errorf("xcrypto: vrf verify: %w", err)
	}
	return beta, nil
}

// VRFProofHash is H(proof): the digest the commit/block eligibility target
// comparisons run against (spec.md §4.2, §4.5).
func VRFProofHash(proof types.VRFProof) types.Hash {
	return Sha256(proof.Proof)
}

func toStdECDSA(priv *PrivateKey) *ecdsa.PrivateKey {
	btcPriv := (*btcec.PrivateKey)(priv)
	return btcPriv.ToECDSA()
}

func toStdECDSAPublic(pub *PublicKey) *ecdsa.PublicKey {
	btcPub := (*btcec.PublicKey)(pub)
	return btcPub.ToECDSA()
}
