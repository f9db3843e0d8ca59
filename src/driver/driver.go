// Package driver defines the unified interface for per-chain cross-chain
// message verification and signing. This file contains the core Driver
// interface that every chain-family implementation (EVM, Substrate, ...)
// MUST satisfy.
package driver

import (
	"context"

	"github.com/vladiator-network/vladiator/internal/message"
)

// CanonicalPayload is the ordered field set hashed and signed for a
// cross-chain request: (txId, sourceChainId, destChainId, sender,
// recipient, data).
type CanonicalPayload struct {
	TxID          string
	SourceChainID string
	DestChainID   string
	Sender        string
	Recipient     string
	Data          []byte
}

// Driver is the unified interface for cross-chain message verification.
// All chain-family implementations (EVM, Substrate, ...) MUST implement
// this interface.
//
// Contract guarantees:
//   - populateMessage never trusts peer-supplied Values; it overwrites them
//     from the on-chain receipt.
//   - All methods are safe to call concurrently for distinct transaction
//     hashes; the caller (coordinator) serializes per-txId access.
//   - Context cancellation aborts in-flight RPC work.
type Driver interface {
	// ChainID returns this driver's numeric chain id (decimal string, per
	// the NetworkConfig the driver was constructed from).
	ChainID() string

	// Connect opens an RPC session and returns a KindConnect *Error on
	// failure. It does not check the message-contract address: the EVM
	// adapter rejects a missing address earlier, in NewAdapter, and the
	// Substrate adapter has no message-contract address.
	Connect(ctx context.Context) error

	// PopulateMessage fetches the on-chain transaction receipt referenced by
	// m.TransactionHash, decodes its logs, and returns a new Message whose
	// Values (and FeatureID/FeatureData, if present) are overwritten from
	// authoritative on-chain data. Peer-supplied fields are never trusted.
	//
	// Returns a KindTransport *Error on transport failure and a
	// KindConfirmationShortfall *Error when the event has fewer
	// confirmations than the driver's finality. If the expected event is not
	// found, returns a message with nil Values and no error; the caller
	// treats that as invalid.
	PopulateMessage(ctx context.Context, m *message.Message) (*message.Message, error)

	// IsMessageValid returns true iff there is a log in the receipt whose
	// address equals the configured message-contract address and whose
	// decoded arguments match m.Values exactly (case-insensitive addresses,
	// byte-equal payload), with at least m.Values.Confirmations
	// confirmations.
	IsMessageValid(ctx context.Context, m *message.Message) (bool, error)

	// IsMessageProcessed performs the view call processedTransfers(txId)
	// against the destination-chain message contract.
	IsMessageProcessed(ctx context.Context, txID string) (bool, error)

	// SignTransactionData signs the canonical tuple and returns the
	// signature hex. This driver instance is always the *destination*
	// chain driver when this method is invoked by the coordinator.
	SignTransactionData(ctx context.Context, payload CanonicalPayload) (string, error)

	// GetChainsig returns the contract's current authoritative signer
	// address (SetChainsig view).
	GetChainsig(ctx context.Context) (string, error)

	// GetExsig returns a project-specific external signer address, or ""
	// if the project has none registered.
	GetExsig(ctx context.Context, project string) (string, error)

	// SignerAddress returns this node's own signing address on the chain,
	// in the chain family's native address format.
	SignerAddress() string
}

// Family identifies the chain family a driver implements. Substrate is an
// optional variant; additional families satisfying the same contract may be
// added without changing the coordinator.
type Family string

const (
	FamilyEVM       Family = "EVMMV3"
	FamilySubstrate Family = "Reef"
)
