package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func packSendRequested(t *testing.T, txID *big.Int, sender, recipient common.Address, chain *big.Int, express bool, data []byte, confirmations uint16) []byte {
	t.Helper()
	args := parsedMessageContractABI.Events["SendRequested"].Inputs
	packed, err := args.NonIndexed().Pack(txID, sender, recipient, chain, express, data, confirmations)
	if err != nil {
		t.Fatalf("pack SendRequested: %v", err)
	}
	return packed
}

func TestDecodeSendRequested(t *testing.T) {
	sender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	payload := []byte{1, 2, 3}

	raw := packSendRequested(t, big.NewInt(42), sender, recipient, big.NewInt(56), true, payload, 12)

	values, err := decodeSendRequested(raw)
	if err != nil {
		t.Fatalf("decodeSendRequested: %v", err)
	}
	if values.TxID != "42" {
		t.Fatalf("TxID = %q, want 42", values.TxID)
	}
	if values.Chain != "56" {
		t.Fatalf("Chain = %q, want 56", values.Chain)
	}
	if !values.Express {
		t.Fatal("Express should be true")
	}
	if values.EncodedData != "0x010203" {
		t.Fatalf("EncodedData = %q, want 0x010203", values.EncodedData)
	}
}

func TestDecodeSendMessageWithFeature(t *testing.T) {
	args := parsedMessageContractABI.Events["SendMessageWithFeature"].Inputs
	raw, err := args.NonIndexed().Pack(big.NewInt(42), big.NewInt(56), uint32(1), []byte{0xaa})
	if err != nil {
		t.Fatalf("pack SendMessageWithFeature: %v", err)
	}

	matched, featureID, featureData, err := decodeSendMessageWithFeature(raw, "42")
	if err != nil {
		t.Fatalf("decodeSendMessageWithFeature: %v", err)
	}
	if !matched {
		t.Fatal("expected txId 42 to match")
	}
	if featureID != 1 {
		t.Fatalf("featureID = %d, want 1", featureID)
	}
	if featureData != "0xaa" {
		t.Fatalf("featureData = %q, want 0xaa", featureData)
	}

	matched, _, _, err = decodeSendMessageWithFeature(raw, "99")
	if err != nil {
		t.Fatalf("decodeSendMessageWithFeature: %v", err)
	}
	if matched {
		t.Fatal("txId 99 must not match an event for txId 42")
	}
}
