package types

import "testing"

func TestHashFromHexRoundTrip(t *testing.T) {
	h := HashFromBytes([]byte("sample block body"))
	parsed, err := HashFromHex(h.String())
	if err != nil {
		t.Fatalf("HashFromHex: %v", err)
	}
	if parsed != h {
		t.Errorf("round-trip mismatch: got %s, want %s", parsed, h)
	}
}

func TestHashFromHexRejectsBadLength(t *testing.T) {
	if _, err := HashFromHex("abcd"); err == nil {
		t.Error("expected error for short hash")
	}
	if _, err := HashFromHex("not-hex-at-all-zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
}

func TestHashCmpAndLessOrEqual(t *testing.T) {
	low := HashWithFirstU32(10)
	high := HashWithFirstU32(20)

	if low.Cmp(high) >= 0 {
		t.Errorf("expected low < high, got Cmp=%d", low.Cmp(high))
	}
	if !low.LessOrEqual(high) {
		t.Error("expected low <= high")
	}
	if high.LessOrEqual(low) {
		t.Error("expected high > low")
	}
	if !low.LessOrEqual(low) {
		t.Error("expected a hash to be <= itself")
	}
}

func TestHashIsZero(t *testing.T) {
	var zero Hash
	if !zero.IsZero() {
		t.Error("zero-value Hash should report IsZero")
	}
	if HashWithFirstU32(1).IsZero() {
		t.Error("non-zero hash reported as zero")
	}
}

func TestPKHFromHexRoundTrip(t *testing.T) {
	var pkh PublicKeyHash
	for i := range pkh {
		pkh[i] = byte(i)
	}
	parsed, err := PKHFromHex(pkh.String())
	if err != nil {
		t.Fatalf("PKHFromHex: %v", err)
	}
	if parsed != pkh {
		t.Errorf("round-trip mismatch: got %s, want %s", parsed, pkh)
	}
}
