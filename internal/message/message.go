// Package message defines the wire frame exchanged over the gossip bus and
// the closed set of topics a node publishes and subscribes to.
package message

import (
	"time"

	"github.com/google/uuid"
)

// NewCorrelationID returns a fresh id for tracing one request's log lines
// across the coordinator pipeline. Never marshaled onto the wire — the
// frame's identity there is (author, transactionHash); this is local to a
// node's own structured logging.
func NewCorrelationID() string {
	return uuid.New().String()
}

// Topic is one of the closed set of gossip topics.
type Topic string

const (
	TopicHeartbeat        Topic = "HEARTBEAT"
	TopicMessageRequest   Topic = "MESSAGE:REQUEST"
	TopicMessageSigned    Topic = "MESSAGE:SIGNED"
	TopicMessageQueued    Topic = "MESSAGE:QUEUED"
	TopicMessageExecution Topic = "MESSAGE:EXECUTION"
	TopicMessageExists    Topic = "MESSAGE:EXISTS"
	TopicMessageInvalid   Topic = "MESSAGE:INVALID"
	TopicMessageReset     Topic = "MESSAGE:RESET"
	TopicFeatureStart     Topic = "FEATURE:START"
	TopicFeatureFailed    Topic = "FEATURE:FAILED"
	TopicFeatureCompleted Topic = "FEATURE:COMPLETED"
	TopicPenaltyChainMiss Topic = "PENALTY:CHAINMISS"
	TopicPenaltyTattle    Topic = "PENALTY:TATTLE"
	TopicPenaltySigned    Topic = "PENALTY:SIGNED"
	TopicPenaltyExecution Topic = "PENALTY:EXECUTION"
)

// HeartbeatSource is the magic source id reserved for HEARTBEAT frames.
// Preserved on the wire for interop with existing peers; see spec §9.
const HeartbeatSource = "1010101010"

// Topics lists the closed topic set, in the order a fresh subscriber should
// join them.
var Topics = []Topic{
	TopicHeartbeat,
	TopicMessageRequest,
	TopicMessageSigned,
	TopicMessageQueued,
	TopicMessageExecution,
	TopicMessageExists,
	TopicMessageInvalid,
	TopicMessageReset,
	TopicFeatureStart,
	TopicFeatureFailed,
	TopicFeatureCompleted,
	TopicPenaltyChainMiss,
	TopicPenaltyTattle,
	TopicPenaltySigned,
	TopicPenaltyExecution,
}

// Values carries the message-bearing payload fields for REQUEST/SIGNED and
// related topics. Never trust these fields when they arrive from a peer;
// a driver's populateMessage overwrites them from authoritative chain data.
type Values struct {
	TxID          string `json:"txId"`
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	Chain         string `json:"chain"`
	Express       bool   `json:"express"`
	EncodedData   string `json:"encodedData"` // hex-encoded payload bytes
	Confirmations int    `json:"confirmations"`
}

// Message is the self-describing frame exchanged over the bus (spec §3).
type Message struct {
	Type            Topic   `json:"type"`
	Author          string  `json:"author"`
	Source          string  `json:"source"`
	TransactionHash string  `json:"transactionHash,omitempty"`
	Values          *Values `json:"values,omitempty"`

	FeatureID      *int    `json:"featureId,omitempty"`
	FeatureData    string  `json:"featureData,omitempty"` // hex
	FeatureReply   string  `json:"featureReply,omitempty"` // hex
	FeatureFailed  bool    `json:"featureFailed,omitempty"`

	Signer    string `json:"signer,omitempty"`
	Signature string `json:"signature,omitempty"` // hex
	Chainsig  string `json:"chainsig,omitempty"`
	Exsig     string `json:"exsig,omitempty"`

	ExecutionHash    string `json:"executionHash,omitempty"`
	SourceGas        string `json:"sourceGas,omitempty"`
	DestGas          string `json:"destGas,omitempty"`
	DestGasRefund    string `json:"destGasRefund,omitempty"`
	TokenPrice       string `json:"tokenPrice,omitempty"`
	ValidatorBalance string `json:"validatorBalance,omitempty"`

	// ReceivedAt is populated on ingress only; never marshaled onto the wire.
	ReceivedAt time.Time `json:"-"`
}

// IsHeartbeat reports whether this message is the heartbeat sentinel.
func (m *Message) IsHeartbeat() bool {
	return m.Source == HeartbeatSource
}

// Clone returns a deep-enough copy safe to mutate without affecting the
// original (coordinator stages mutate Values/FeatureReply/Signature in
// place while building the outbound frame).
func (m *Message) Clone() *Message {
	clone := *m
	if m.Values != nil {
		v := *m.Values
		clone.Values = &v
	}
	if m.FeatureID != nil {
		id := *m.FeatureID
		clone.FeatureID = &id
	}
	return &clone
}
