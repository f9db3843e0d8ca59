package evm

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
	"github.com/vladiator-network/vladiator/src/driver/metrics"
)

// Config configures one EVM-family Adapter instance.
type Config struct {
	ChainID          string // decimal chain id, matches NetworkConfig.ID
	RPC              string
	MessageContract  common.Address
	Finality         int // default required confirmations
	NodePrivateKey   string
	MaxWaitForReceipt time.Duration
}

// Adapter implements driver.Driver for the EVM chain family.
type Adapter struct {
	cfg     Config
	client  *ethclient.Client
	rpc     *rpcHelper
	signer  *signer
	metrics *metrics.DriverMetrics
}

// NewAdapter constructs an EVM driver. Connect must be called before use.
func NewAdapter(cfg Config, m *metrics.DriverMetrics) (*Adapter, error) {
	if cfg.MessageContract == (common.Address{}) {
		return nil, driver.New(driver.KindConnect, "missing message contract address", nil)
	}
	s, err := newSigner(cfg.NodePrivateKey)
	if err != nil {
		return nil, driver.New(driver.KindConnect, "invalid node private key", err)
	}
	if cfg.MaxWaitForReceipt == 0 {
		cfg.MaxWaitForReceipt = 30 * time.Second
	}
	return &Adapter{cfg: cfg, signer: s, metrics: m}, nil
}

func (a *Adapter) ChainID() string { return a.cfg.ChainID }

// Connect opens the RPC session against the configured endpoint.
func (a *Adapter) Connect(ctx context.Context) error {
	rc, err := gethrpc.DialContext(ctx, a.cfg.RPC)
	if err != nil {
		return driver.New(driver.KindConnect, "dial rpc endpoint", err)
	}
	a.client = ethclient.NewClient(rc)
	a.rpc = newRPCHelper(a.client)
	return nil
}

// PopulateMessage fetches the receipt for m.TransactionHash and rebuilds
// Values/FeatureID/FeatureData strictly from decoded on-chain logs. Peer
// claims in the inbound message are never consulted.
func (a *Adapter) PopulateMessage(ctx context.Context, m *message.Message) (*message.Message, error) {
	start := time.Now()
	txHash := common.HexToHash(m.TransactionHash)

	confirmationsNeeded := a.cfg.Finality
	r, observedConfirmations, err := a.rpc.waitForTransaction(ctx, txHash, confirmationsNeeded, a.cfg.MaxWaitForReceipt)
	a.recordRPC("waitForTransaction", start, err == nil)
	if err != nil {
		return nil, driver.New(driver.KindTransport, "fetch receipt", err)
	}
	if r != nil && observedConfirmations < confirmationsNeeded {
		return nil, driver.New(driver.KindConfirmationShortfall, "receipt below required confirmations", nil)
	}

	out := m.Clone()
	if r == nil {
		out.Values = nil
		return out, nil
	}

	var values *message.Values
	for _, log := range r.Logs {
		if !strings.EqualFold(log.Address.Hex(), a.cfg.MessageContract.Hex()) {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != topicSendRequested {
			continue
		}
		v, perr := decodeSendRequested(log.Data)
		if perr != nil {
			continue
		}
		values = v
		break
	}

	if values == nil {
		out.Values = nil
		return out, nil
	}
	values.Confirmations = observedConfirmations
	out.Values = values

	for _, log := range r.Logs {
		if !strings.EqualFold(log.Address.Hex(), a.cfg.MessageContract.Hex()) {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != topicSendMessageWithFeature {
			continue
		}
		matched, featureID, featureData, perr := decodeSendMessageWithFeature(log.Data, values.TxID)
		if perr != nil || !matched {
			continue
		}
		out.FeatureID = &featureID
		out.FeatureData = featureData
		break
	}

	return out, nil
}

// IsMessageValid returns true iff a SendRequested log in the receipt
// matches m.Values exactly, with enough confirmations.
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
		strings.EqualFold(got.Sender, want.Sender) &&
		strings.EqualFold(got.Recipient, want.Recipient) &&
		got.Chain == want.Chain &&
		got.Express == want.Express &&
		strings.EqualFold(got.EncodedData, want.EncodedData), nil
}

// IsMessageProcessed performs the processedTransfers(txId) view call.
func (a *Adapter) IsMessageProcessed(ctx context.Context, txID string) (bool, error) {
	start := time.Now()
	id, ok := new(big.Int).SetString(txID, 10)
	if !ok {
		return false, driver.New(driver.KindDecode, "invalid txId", nil)
	}
	var processed bool
	err := a.rpc.callView(ctx, a.cfg.MessageContract, "processedTransfers", &processed, id)
	a.recordRPC("processedTransfers", start, err == nil)
	if err != nil {
		return false, driver.New(driver.KindTransport, "processedTransfers call", err)
	}
	return processed, nil
}

// SignTransactionData implements spec.md §6's canonical signing payload:
// keccak256(abiEncode(txId, sourceChainId, destChainId, sender, recipient,
// data)), personal-message signed with the node key.
func (a *Adapter) SignTransactionData(ctx context.Context, payload driver.CanonicalPayload) (string, error) {
	start := time.Now()
	txID, ok := new(big.Int).SetString(payload.TxID, 10)
	if !ok {
		return "", driver.New(driver.KindDecode, "invalid txId", nil)
	}
	sourceChainID, ok := new(big.Int).SetString(payload.SourceChainID, 10)
	if !ok {
		return "", driver.New(driver.KindDecode, "invalid sourceChainId", nil)
	}
	destChainID, ok := new(big.Int).SetString(payload.DestChainID, 10)
	if !ok {
		return "", driver.New(driver.KindDecode, "invalid destChainId", nil)
	}

	digest, err := canonicalTupleHash(
		txID, sourceChainID, destChainID,
		common.HexToAddress(payload.Sender),
		common.HexToAddress(payload.Recipient),
		payload.Data,
	)
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

// GetChainsig returns the contract's current authoritative signer address.
func (a *Adapter) GetChainsig(ctx context.Context) (string, error) {
	start := time.Now()
	var addr common.Address
	err := a.rpc.callView(ctx, a.cfg.MessageContract, "chainsig", &addr)
	a.recordRPC("chainsig", start, err == nil)
	if err != nil {
		return "", driver.New(driver.KindTransport, "chainsig call", err)
	}
	return addr.Hex(), nil
}

// GetExsig returns the project-specific external signer address.
func (a *Adapter) GetExsig(ctx context.Context, project string) (string, error) {
	start := time.Now()
	var addr common.Address
	err := a.rpc.callView(ctx, a.cfg.MessageContract, "exsig", &addr, project)
	a.recordRPC("exsig", start, err == nil)
	if err != nil {
		return "", driver.New(driver.KindTransport, "exsig call", err)
	}
	return addr.Hex(), nil
}

// SignerAddress returns the node's own signing address on this chain.
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
