package xcrypto

import (
	"encoding/hex"
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	bodyHash := types.HashFromBytes([]byte("a transaction body"))

	sig := Sign(priv, bodyHash)
	if !Verify(priv.PubKey(), bodyHash, sig) {
		t.Error("signature did not verify against the signing key")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	other, _ := GeneratePrivateKey()
	bodyHash := types.HashFromBytes([]byte("body"))

	sig := Sign(priv, bodyHash)
	if Verify(other.PubKey(), bodyHash, sig) {
		t.Error("signature verified against an unrelated public key")
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	sig := Sign(priv, types.HashFromBytes([]byte("original")))
	if Verify(priv.PubKey(), types.HashFromBytes([]byte("tampered")), sig) {
		t.Error("signature verified against a different body hash")
	}
}

func TestPKHFromPublicKeyIsStableAndDistinct(t *testing.T) {
	privA, _ := GeneratePrivateKey()
	privB, _ := GeneratePrivateKey()

	pkhA1 := PKHFromPublicKey(privA.PubKey())
	pkhA2 := PKHFromPublicKey(privA.PubKey())
	if pkhA1 != pkhA2 {
		t.Error("PKHFromPublicKey is not deterministic for the same key")
	}

	pkhB := PKHFromPublicKey(privB.PubKey())
	if pkhA1 == pkhB {
		t.Error("distinct keys produced the same PKH")
	}
}

func TestPrivateKeyFromHexRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	hexKey := hex.EncodeToString(priv.Serialize())

	parsed, err := PrivateKeyFromHex(hexKey)
	if err != nil {
		t.Fatalf("PrivateKeyFromHex: %v", err)
	}
	if PKHFromPublicKey(parsed.PubKey()) != PKHFromPublicKey(priv.PubKey()) {
		t.Error("parsed private key does not match the original")
	}
}

func TestPrivateKeyFromHexRejectsBadLength(t *testing.T) {
	if _, err := PrivateKeyFromHex("abcd"); err == nil {
		t.Error("expected error for a short key")
	}
}

func TestVerifyTransactionSignature(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	bodyHash := types.HashFromBytes([]byte("vt body"))
	sig := Sign(priv, bodyHash)
	pkh := PKHFromPublicKey(priv.PubKey())

	txSig := types.TransactionSignature{
		Signature: sig,
		PublicKey: priv.PubKey().SerializeCompressed(),
	}
	if err := VerifyTransactionSignature(bodyHash, txSig, pkh); err != nil {
		t.Errorf("expected valid signature to verify, got %v", err)
	}

	var wrongPKH types.PublicKeyHash
	if err := VerifyTransactionSignature(bodyHash, txSig, wrongPKH); err == nil {
		t.Error("expected PKH mismatch to be rejected")
	}
}
