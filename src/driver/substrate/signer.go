// Package substrate implements the optional Substrate chain family: SCALE-ish
// tuple hashing over blake2b, sr25519 signing, SS58 addressing. Grounded on
// the teacher's internal/services/address/kusama.go (go-subkey + sr25519),
// generalized from HD-wallet address derivation to message-relay signing.
package substrate

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/anyproto/go-slip10"
	"github.com/vedhavyas/go-subkey"
	"github.com/vedhavyas/go-subkey/sr25519"
)

// signer signs canonical digests with an sr25519 keypair derived from a
// node seed, the Substrate analogue of the EVM family's secp256k1 signer.
type signer struct {
	keyPair subkey.KeyPair
	ss58    string
	network uint8
}

// newSigner derives an sr25519 keypair from a hex seed using slip10 (ed25519
// curve derivation repurposed as a uniform seed expander, matching the
// teacher's note that non-standard Substrate derivation treats the BIP32
// output as a raw seed rather than running full substrate-bip39) and
// SS58-encodes the resulting public key for the given network id.
func newSigner(seedHex string, network uint8) (*signer, error) {
	seedHex = strings.TrimPrefix(seedHex, "0x")
	raw, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode node seed hex: %w", err)
	}

	master, err := slip10.DeriveForPath("m", raw)
	if err != nil {
		return nil, fmt.Errorf("derive slip10 master key: %w", err)
	}
	seed := master.Key
	if len(seed) > 32 {
		seed = seed[:32]
	}

	scheme := &sr25519.Scheme{}
	kr, err := scheme.FromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("derive sr25519 keypair: %w", err)
	}

	addr := subkey.SS58Encode(kr.Public(), network)
	return &signer{keyPair: kr, ss58: addr, network: network}, nil
}

// Address returns the SS58-encoded address this signer controls.
func (s *signer) Address() string { return s.ss58 }

// signDigest signs an opaque digest with sr25519 and returns it hex-encoded.
func (s *signer) signDigest(digest []byte) (string, error) {
	sig, err := s.keyPair.Sign(digest)
	if err != nil {
		return "", fmt.Errorf("sr25519 sign: %w", err)
	}
	return "0x" + hex.EncodeToString(sig), nil
}
