package evm

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// signer signs the canonical tuple digest with the node's secp256k1 key
// under EVM personal-message framing, so that the destination contract's
// on-chain ecrecover(hash, v, r, s) recovers the same address. Grounded on
// the teacher's src/chainadapter/ethereum/signer.go EthereumSigner, adapted
// from wallet transaction signing to the fixed canonical-tuple digest.
type signer struct {
	privateKey *ecdsa.PrivateKey
	address    string
}

func newSigner(privateKeyHex string) (*signer, error) {
	if len(privateKeyHex) >= 2 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}
	keyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key hex: %w", err)
	}
	priv, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pub, ok := priv.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("derive public key: unexpected type")
	}
	return &signer{
		privateKey: priv,
		address:    crypto.PubkeyToAddress(*pub).Hex(),
	}, nil
}

// Address returns the checksummed address this signer controls.
func (s *signer) Address() string { return s.address }

// signDigest signs a 32-byte digest under EIP-191 personal-message framing
// and returns the 65-byte (R || S || V) signature hex, with V normalized to
// {27, 28} so an on-chain ecrecover call matches directly.
func (s *signer) signDigest(digest []byte) (string, error) {
	if len(digest) != 32 {
		return "", fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	prefixed := accounts.TextHash(digest)

	sig, err := crypto.Sign(prefixed, s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign digest: %w", err)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("unexpected signature length: %d", len(sig))
	}
	sig[64] += 27 // normalize recovery id to Ethereum's {27,28} convention
	return "0x" + hex.EncodeToString(sig), nil
}
