package substrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
	"github.com/vladiator-network/vladiator/src/driver/metrics"
	"github.com/vladiator-network/vladiator/src/driver/rpc"
)

// Config configures one Substrate-family Adapter instance. The bridge pallet
// is assumed to expose a small custom JSON-RPC surface (messageBridge_*)
// alongside the chain's standard substrate RPC, the common pattern for
// parachain bridge pallets that need off-chain workers to read decoded
// events rather than raw SCALE-encoded storage.
type Config struct {
	ChainID           string
	RPC               string
	Finality          int
	NodeSeed          string // hex sr25519 seed
	SS58Network       uint8
	MaxWaitForReceipt time.Duration
}

// sendRequestedResult mirrors the EVM family's SendRequested event, decoded
// substrate-side by the bridge pallet's off-chain RPC extension.
type sendRequestedResult struct {
	Found         bool   `json:"found"`
	TxID          string `json:"txId"`
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	Chain         string `json:"chain"`
	Express       bool   `json:"express"`
	Data          string `json:"data"`
	Confirmations int    `json:"confirmations"`
	FeatureID     *int   `json:"featureId"`
	FeatureData   string `json:"featureData"`
}

// Adapter implements driver.Driver for the Substrate chain family.
type Adapter struct {
	cfg     Config
	client  rpc.Client
	signer  *signer
	metrics *metrics.DriverMetrics
}

// NewAdapter constructs a Substrate driver. Connect must be called before
// use.
func NewAdapter(cfg Config, m *metrics.DriverMetrics) (*Adapter, error) {
	s, err := newSigner(cfg.NodeSeed, cfg.SS58Network)
	if err != nil {
		return nil, driver.New(driver.KindConnect, "derive substrate signer", err)
	}
	if cfg.MaxWaitForReceipt == 0 {
		cfg.MaxWaitForReceipt = 30 * time.Second
	}
	return &Adapter{cfg: cfg, signer: s, metrics: m}, nil
}

func (a *Adapter) ChainID() string { return a.cfg.ChainID }

// Connect opens the JSON-RPC session against the configured endpoint.
func (a *Adapter) Connect(ctx context.Context) error {
	a.client = rpc.NewHTTPClient(a.cfg.RPC, 15*time.Second)
	return nil
}

func (a *Adapter) fetchSendRequested(ctx context.Context, txHash string) (*sendRequestedResult, error) {
	raw, err := a.client.Call(ctx, "messageBridge_getSendRequested", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	var result sendRequestedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode messageBridge_getSendRequested result: %w", err)
	}
	return &result, nil
}

// PopulateMessage fetches the decoded SendRequested event for
// m.TransactionHash and rebuilds Values/FeatureID/FeatureData from it. Peer
// claims in the inbound message are never consulted.
func (a *Adapter) PopulateMessage(ctx context.Context, m *message.Message) (*message.Message, error) {
	start := time.Now()
	result, err := a.waitForFinality(ctx, m.TransactionHash)
	a.recordRPC("messageBridge_getSendRequested", start, err == nil)
	if err != nil {
		return nil, driver.New(driver.KindTransport, "fetch send-requested event", err)
	}

	out := m.Clone()
	if result == nil || !result.Found {
		out.Values = nil
		return out, nil
	}
	if result.Confirmations < a.cfg.Finality {
		return nil, driver.New(driver.KindConfirmationShortfall, "event below required confirmations", nil)
	}

	out.Values = &message.Values{
		TxID:          result.TxID,
		Sender:        result.Sender,
		Recipient:     result.Recipient,
		Chain:         result.Chain,
		Express:       result.Express,
		EncodedData:   result.Data,
		Confirmations: result.Confirmations,
	}
	if result.FeatureID != nil {
		out.FeatureID = result.FeatureID
		out.FeatureData = result.FeatureData
	}
	return out, nil
}

// waitForFinality polls messageBridge_getSendRequested until the reported
// confirmation count reaches cfg.Finality, the context is cancelled, or
// MaxWaitForReceipt elapses.
func (a *Adapter) waitForFinality(ctx context.Context, txHash string) (*sendRequestedResult, error) {
	deadline := time.Now().Add(a.cfg.MaxWaitForReceipt)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		result, err := a.fetchSendRequested(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if !result.Found {
			if time.Now().After(deadline) {
				return result, nil
			}
		} else if result.Confirmations >= a.cfg.Finality || time.Now().After(deadline) {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsMessageValid returns true iff the authoritative on-chain event matches
// m.Values exactly, with enough confirmations.
func (a *Adapter) IsMessageValid(ctx context.Context, m *message.Message) (bool, error) {
	if m.Values == nil {
		return false, nil
	}
	authoritative, err := a.PopulateMessage(ctx, m)
	if err != nil {
		return false, err
	}
	if authoritative.Values == nil {
		return false, nil
	}
	want := m.Values
	got := authoritative.Values
	if got.Confirmations < want.Confirmations {
		return false, nil
	}
	return strings.EqualFold(got.TxID, want.TxID) &&
		got.Sender == want.Sender &&
		got.Recipient == want.Recipient &&
		got.Chain == want.Chain &&
		got.Express == want.Express &&
		strings.EqualFold(got.EncodedData, want.EncodedData), nil
}

// IsMessageProcessed calls the bridge pallet's messageBridge_isProcessed
// RPC extension.
func (a *Adapter) IsMessageProcessed(ctx context.Context, txID string) (bool, error) {
	start := time.Now()
	raw, err := a.client.Call(ctx, "messageBridge_isProcessed", []interface{}{txID})
	a.recordRPC("messageBridge_isProcessed", start, err == nil)
	if err != nil {
		return false, driver.New(driver.KindTransport, "messageBridge_isProcessed call", err)
	}
	var processed bool
	if err := json.Unmarshal(raw, &processed); err != nil {
		return false, driver.New(driver.KindDecode, "decode isProcessed result", err)
	}
	return processed, nil
}

// SignTransactionData signs the canonical tuple with blake2b + sr25519, the
// Substrate analogue of the EVM family's keccak256 + secp256k1 scheme.
func (a *Adapter) SignTransactionData(ctx context.Context, payload driver.CanonicalPayload) (string, error) {
	start := time.Now()
	txID, err := encodeTxID(payload.TxID)
	if err != nil {
		a.recordSign(start, false)
		return "", driver.New(driver.KindDecode, "invalid txId", err)
	}
	sourceChainID, err := encodeTxID(payload.SourceChainID)
	if err != nil {
		a.recordSign(start, false)
		return "", driver.New(driver.KindDecode, "invalid sourceChainId", err)
	}
	destChainID, err := encodeTxID(payload.DestChainID)
	if err != nil {
		a.recordSign(start, false)
		return "", driver.New(driver.KindDecode, "invalid destChainId", err)
	}

	digest, err := canonicalTupleHash(txID, sourceChainID, destChainID, payload.Sender, payload.Recipient, payload.Data)
	if err != nil {
		a.recordSign(start, false)
		return "", driver.New(driver.KindDecode, "encode canonical tuple", err)
	}

	sig, err := a.signer.signDigest(digest)
	a.recordSign(start, err == nil)
	if err != nil {
		return "", driver.New(driver.KindConnect, "sign canonical digest", err)
	}
	return sig, nil
}

// GetChainsig returns the bridge pallet's current authoritative signer
// SS58 address.
func (a *Adapter) GetChainsig(ctx context.Context) (string, error) {
	start := time.Now()
	raw, err := a.client.Call(ctx, "messageBridge_chainsig", nil)
	a.recordRPC("messageBridge_chainsig", start, err == nil)
	if err != nil {
		return "", driver.New(driver.KindTransport, "messageBridge_chainsig call", err)
	}
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", driver.New(driver.KindDecode, "decode chainsig result", err)
	}
	return addr, nil
}

// GetExsig returns the project-specific external signer SS58 address, or
// "" if the project has none registered.
func (a *Adapter) GetExsig(ctx context.Context, project string) (string, error) {
	start := time.Now()
	raw, err := a.client.Call(ctx, "messageBridge_exsig", []interface{}{project})
	a.recordRPC("messageBridge_exsig", start, err == nil)
	if err != nil {
		return "", driver.New(driver.KindTransport, "messageBridge_exsig call", err)
	}
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", driver.New(driver.KindDecode, "decode exsig result", err)
	}
	return addr, nil
}

// SignerAddress returns the node's own SS58 signing address on this chain.
func (a *Adapter) SignerAddress() string { return a.signer.Address() }

func (a *Adapter) recordRPC(method string, start time.Time, success bool) {
	if a.metrics != nil {
		a.metrics.RecordRPC(a.cfg.ChainID, method, time.Since(start), success)
	}
}

func (a *Adapter) recordSign(start time.Time, success bool) {
	if a.metrics != nil {
		a.metrics.RecordSign(a.cfg.ChainID, time.Since(start), success)
	}
}

var _ driver.Driver = (*Adapter)(nil)
