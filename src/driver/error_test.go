package driver

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	bare := New(KindTransport, "rpc unreachable", nil)
	if bare.Error() != "transport: rpc unreachable" {
		t.Fatalf("unexpected bare error string: %q", bare.Error())
	}

	wrapped := New(KindDecode, "malformed frame", errors.New("unexpected EOF"))
	want := "decode: malformed frame (caused by: unexpected EOF)"
	if wrapped.Error() != want {
		t.Fatalf("unexpected wrapped error string: got %q want %q", wrapped.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	wrapped := New(KindConnect, "connect failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindChainMiss, "no driver for chain 99", nil)
	if !IsKind(err, KindChainMiss) {
		t.Fatal("IsKind should match the error's own kind")
	}
	if IsKind(err, KindValidation) {
		t.Fatal("IsKind should not match an unrelated kind")
	}
	if IsKind(errors.New("plain"), KindChainMiss) {
		t.Fatal("IsKind must return false for a non-*Error")
	}
}
