package substrate

import (
	"math/big"
	"testing"
)

func TestAppendUint256LEIsLittleEndian(t *testing.T) {
	v := big.NewInt(42)
	buf := appendUint256LE(nil, v)
	if len(buf) != 32 {
		t.Fatalf("expected 32-byte word, got %d", len(buf))
	}
	if buf[0] != 42 {
		t.Fatalf("least-significant byte should be 42 (little-endian), got %d", buf[0])
	}
	for _, b := range buf[1:] {
		if b != 0 {
			t.Fatalf("expected zero padding above the low byte, got %v", buf)
		}
	}
}

func TestEncodeTxIDRejectsNonDecimal(t *testing.T) {
	if _, err := encodeTxID("not-a-number"); err == nil {
		t.Fatal("expected an error for a non-decimal txId")
	}
	id, err := encodeTxID("123")
	if err != nil {
		t.Fatalf("encodeTxID: %v", err)
	}
	if id.Int64() != 123 {
		t.Fatalf("id = %d, want 123", id.Int64())
	}
}
