package substrate

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	subkeylib "github.com/vedhavyas/go-subkey"
)

// canonicalTupleHash hashes the canonical (txId, sourceChainId, destChainId,
// sender, recipient, data) tuple the same way the EVM family does, but with
// blake2b-256 over a fixed-width little-endian encoding in place of
// keccak256(abiEncode(...)) — the idiomatic Substrate equivalent, since
// Substrate runtimes verify signatures over blake2b digests rather than
// running EVM-style ABI encoding.
func canonicalTupleHash(txID, sourceChainID, destChainID *big.Int, senderSS58, recipientSS58 string, data []byte) ([]byte, error) {
	senderID, err := decodeAccountID(senderSS58)
	if err != nil {
		return nil, fmt.Errorf("decode sender: %w", err)
	}
	recipientID, err := decodeAccountID(recipientSS58)
	if err != nil {
		return nil, fmt.Errorf("decode recipient: %w", err)
	}

	buf := make([]byte, 0, 32*3+len(senderID)+len(recipientID)+len(data))
	buf = appendUint256LE(buf, txID)
	buf = appendUint256LE(buf, sourceChainID)
	buf = appendUint256LE(buf, destChainID)
	buf = append(buf, senderID...)
	buf = append(buf, recipientID...)
	buf = append(buf, data...)

	sum := blake2b.Sum256(buf)
	return sum[:], nil
}

func appendUint256LE(buf []byte, v *big.Int) []byte {
	var word [32]byte
	v.FillBytes(word[:]) // big-endian fixed width
	for i, j := 0, len(word)-1; i < j; i, j = i+1, j-1 {
		word[i], word[j] = word[j], word[i]
	}
	return append(buf, word[:]...)
}

func decodeAccountID(ss58 string) ([]byte, error) {
	_, pub, err := subkeylib.SS58Decode(ss58)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func encodeTxID(txID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(txID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal txId: %q", txID)
	}
	return id, nil
}
