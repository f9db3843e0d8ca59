package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vladiator-network/vladiator/internal/message"
)

// decodeSendRequested unpacks a SendRequested log's non-indexed data into
// message.Values. All fields are non-indexed per the embedded ABI, so no
// topic-slicing is needed.
func decodeSendRequested(data []byte) (*message.Values, error) {
	unpacked, err := parsedMessageContractABI.Unpack("SendRequested", data)
	if err != nil {
		return nil, fmt.Errorf("unpack SendRequested: %w", err)
	}
	if len(unpacked) != 7 {
		return nil, fmt.Errorf("unexpected SendRequested arity: %d", len(unpacked))
	}

	txID, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("SendRequested.txId: unexpected type %T", unpacked[0])
	}
	sender, ok := unpacked[1].(common.Address)
	if !ok {
		return nil, fmt.Errorf("SendRequested.sender: unexpected type %T", unpacked[1])
	}
	recipient, ok := unpacked[2].(common.Address)
	if !ok {
		return nil, fmt.Errorf("SendRequested.recipient: unexpected type %T", unpacked[2])
	}
	chain, ok := unpacked[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("SendRequested.chain: unexpected type %T", unpacked[3])
	}
	express, ok := unpacked[4].(bool)
	if !ok {
		return nil, fmt.Errorf("SendRequested.express: unexpected type %T", unpacked[4])
	}
	payload, ok := unpacked[5].([]byte)
	if !ok {
		return nil, fmt.Errorf("SendRequested.data: unexpected type %T", unpacked[5])
	}

	return &message.Values{
		TxID:        txID.String(),
		Sender:      sender.Hex(),
		Recipient:   recipient.Hex(),
		Chain:       chain.String(),
		Express:     express,
		EncodedData: "0x" + common.Bytes2Hex(payload),
	}, nil
}

// decodeSendMessageWithFeature unpacks a SendMessageWithFeature log and
// reports whether it refers to txID.
func decodeSendMessageWithFeature(data []byte, txID string) (matched bool, featureID int, featureData string, err error) {
	unpacked, err := parsedMessageContractABI.Unpack("SendMessageWithFeature", data)
	if err != nil {
		return false, 0, "", fmt.Errorf("unpack SendMessageWithFeature: %w", err)
	}
	if len(unpacked) != 4 {
		return false, 0, "", fmt.Errorf("unexpected SendMessageWithFeature arity: %d", len(unpacked))
	}
	eventTxID, ok := unpacked[0].(*big.Int)
	if !ok {
		return false, 0, "", fmt.Errorf("SendMessageWithFeature.txId: unexpected type %T", unpacked[0])
	}
	if eventTxID.String() != txID {
		return false, 0, "", nil
	}
	fid, ok := unpacked[2].(uint32)
	if !ok {
		return false, 0, "", fmt.Errorf("SendMessageWithFeature.featureId: unexpected type %T", unpacked[2])
	}
	fdata, ok := unpacked[3].([]byte)
	if !ok {
		return false, 0, "", fmt.Errorf("SendMessageWithFeature.featureData: unexpected type %T", unpacked[3])
	}
	return true, int(fid), "0x" + common.Bytes2Hex(fdata), nil
}
