// Package coordinator implements the per-driver request state machine:
// lock -> populate -> validate -> feature -> sign -> publish, with
// idempotent replay of cached signatures. Grounded on the Wormhole
// guardian Processor's channel-based aggregation state (one owning
// goroutine serializing mutations to shared maps) and on the teacher's
// ratelimit.RateLimiter sliding-window idiom for the retry/dedup counters.
package coordinator

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vladiator-network/vladiator/internal/feature"
	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
)

// Publisher is the narrow bus capability the coordinator needs: emit a
// frame under a topic. Satisfied by the orchestrator/bus.
type Publisher interface {
	Publish(ctx context.Context, topic message.Topic, m *message.Message)
}

// DriverTable resolves a destination chain id to its driver. Satisfied by
// the orchestrator's driver table.
type DriverTable interface {
	Driver(chainID string) (driver.Driver, bool)
}

type lockState int

const (
	stateAbsent lockState = iota
	stateLocked
	stateSigned
)

type cacheEntry struct {
	state     lockState
	signature string
}

// Coordinator runs the request state machine for one source-chain driver.
// Cache mutations are serialized through a single internal goroutine
// (cmds); the slow RPC/feature/sign work that surrounds each mutation runs
// concurrently per txId, matching spec's "distinct txIds proceed
// independently" requirement while still giving single-writer semantics to
// the shared caches.
type Coordinator struct {
	sourceDriver driver.Driver
	drivers      DriverTable
	features     *feature.Registry
	publisher    Publisher
	log          zerolog.Logger
	nodeAuthor   string

	cache          map[string]*cacheEntry
	retries        map[string]int
	featureReplies map[string]string

	cmds chan func()
	stop chan struct{}
}

// New constructs a Coordinator for sourceDriver and starts its serializing
// goroutine. nodeAuthor is this node's public key, stamped as Author on
// every self-originated emission (MESSAGE:SIGNED, MESSAGE:INVALID, and the
// penalty topics). Call Close to stop it.
func New(sourceDriver driver.Driver, drivers DriverTable, features *feature.Registry, publisher Publisher, nodeAuthor string, log zerolog.Logger) *Coordinator {
	c := &Coordinator{
		sourceDriver:   sourceDriver,
		drivers:        drivers,
		features:       features,
		publisher:      publisher,
		nodeAuthor:     nodeAuthor,
		log:            log.With().Str("chain", sourceDriver.ChainID()).Logger(),
		cache:          make(map[string]*cacheEntry),
		retries:        make(map[string]int),
		featureReplies: make(map[string]string),
		cmds:           make(chan func(), 256),
		stop:           make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	for {
		select {
		case cmd := <-c.cmds:
			cmd()
		case <-c.stop:
			return
		}
	}
}

// Close stops the coordinator's serializing goroutine. In-flight
// ProcessRequest calls that reach a cache mutation after Close block
// indefinitely; callers should stop routing requests before calling Close.
func (c *Coordinator) Close() { close(c.stop) }

// do runs fn on the serializing goroutine and blocks until it completes.
func (c *Coordinator) do(fn func()) {
	done := make(chan struct{})
	c.cmds <- func() {
		defer close(done)
		fn()
	}
	<-done
}

type acceptance int

const (
	acceptProceed acceptance = iota
	acceptReplay
	acceptSkipLocked
	acceptRetryExhausted
)

// accept performs step 1 of §4.2: inspect/mutate the cache for txId and
// report what the caller should do next.
func (c *Coordinator) accept(txID string) (acceptance, cacheEntry) {
	var result acceptance
	var entry cacheEntry
	c.do(func() {
		existing, ok := c.cache[txID]
		if ok && existing.state == stateSigned {
			result, entry = acceptReplay, *existing
			return
		}
		if ok && existing.state == stateLocked {
			result = acceptSkipLocked
			return
		}
		c.retries[txID]++
		if c.retries[txID] > 3 {
			result = acceptRetryExhausted
			return
		}
		c.cache[txID] = &cacheEntry{state: stateLocked}
		result = acceptProceed
	})
	return result, entry
}

// release reverts txId to absent, e.g. after a populate/validate/sign
// failure or a confirmation shortfall.
func (c *Coordinator) release(txID string) {
	c.do(func() {
		delete(c.cache, txID)
	})
}

// commitSignature finalizes txId as signed with sig.
func (c *Coordinator) commitSignature(txID, sig string) {
	c.do(func() {
		c.cache[txID] = &cacheEntry{state: stateSigned, signature: sig}
	})
}

// storeFeatureReply records the opaque reply bytes a feature produced.
func (c *Coordinator) storeFeatureReply(txID, reply string) {
	c.do(func() {
		c.featureReplies[txID] = reply
	})
}

func (c *Coordinator) featureReply(txID string) (string, bool) {
	var reply string
	var ok bool
	c.do(func() {
		reply, ok = c.featureReplies[txID]
	})
	return reply, ok
}

// ProcessRequest runs the full §4.2 pipeline for an inbound MESSAGE:REQUEST
// whose source equals this coordinator's driver chain id. It is safe to
// call concurrently for distinct txIds; same-txId calls serialize on the
// *locked* sentinel.
func (c *Coordinator) ProcessRequest(ctx context.Context, m *message.Message) {
	if m.Values == nil || m.TransactionHash == "" {
		return
	}
	txID := m.Values.TxID

	log := c.log.With().Str("txId", txID).Str("correlationId", message.NewCorrelationID()).Logger()

	result, entry := c.accept(txID)
	switch result {
	case acceptReplay:
		reply, _ := c.featureReply(txID)
		var signer string
		if destDriver, ok := c.drivers.Driver(m.Values.Chain); ok {
			signer = destDriver.SignerAddress()
		}
		c.emitSigned(ctx, m, entry.signature, signer, reply)
		return
	case acceptSkipLocked, acceptRetryExhausted:
		return
	}

	populated, err := c.sourceDriver.PopulateMessage(ctx, m)
	if err != nil {
		log.Debug().Err(err).Msg("populate failed, releasing lock")
		c.release(txID)
		return
	}
	if populated.Values == nil {
		c.release(txID)
		return
	}

	valid, err := c.sourceDriver.IsMessageValid(ctx, populated)
	if err != nil {
		log.Debug().Err(err).Msg("validate failed, releasing lock")
		c.release(txID)
		return
	}
	if !valid {
		c.publish(ctx, message.TopicMessageInvalid, populated)
		c.release(txID)
		return
	}

	destDriver, ok := c.drivers.Driver(populated.Values.Chain)
	if !ok {
		c.publish(ctx, message.TopicPenaltyChainMiss, populated)
		c.release(txID)
		return
	}

	var featureReply string
	if populated.FeatureID != nil {
		c.publish(ctx, message.TopicFeatureStart, populated)
		f, ok := c.features.Get(*populated.FeatureID)
		if !ok {
			populated.FeatureFailed = true
			c.publish(ctx, message.TopicFeatureFailed, populated)
			c.release(txID)
			return
		}
		reply, failed, ferr := f.Process(ctx, c.sourceDriver, populated)
		if ferr != nil || failed {
			populated.FeatureFailed = true
			c.publish(ctx, message.TopicFeatureFailed, populated)
			c.release(txID)
			return
		}
		featureReply = reply
		c.storeFeatureReply(txID, reply)
		c.publish(ctx, message.TopicFeatureCompleted, populated)
	}

	sig, err := destDriver.SignTransactionData(ctx, driver.CanonicalPayload{
		TxID:          populated.Values.TxID,
		SourceChainID: c.sourceDriver.ChainID(),
		DestChainID:   populated.Values.Chain,
		Sender:        populated.Values.Sender,
		Recipient:     populated.Values.Recipient,
		Data:          mustDecodeEncodedData(populated.Values.EncodedData),
	})
	if err != nil {
		log.Debug().Err(err).Msg("sign failed, releasing lock")
		c.release(txID)
		return
	}

	c.commitSignature(txID, sig)
	c.emitSigned(ctx, populated, sig, destDriver.SignerAddress(), featureReply)
}

// emitSigned publishes a MESSAGE:SIGNED frame authored by this node, with
// the destination driver's signing address and, if a feature ran, its
// reply. Used for both a fresh sign and an idempotent replay.
func (c *Coordinator) emitSigned(ctx context.Context, m *message.Message, sig, signer, reply string) {
	out := m.Clone()
	out.Type = message.TopicMessageSigned
	out.Author = c.nodeAuthor
	out.Signature = sig
	out.Signer = signer
	out.FeatureReply = reply
	c.publisher.Publish(ctx, message.TopicMessageSigned, out)
}

// publish emits a self-originated frame (MESSAGE:INVALID, the penalty and
// feature topics) authored by this node.
func (c *Coordinator) publish(ctx context.Context, topic message.Topic, m *message.Message) {
	out := m.Clone()
	out.Type = topic
	out.Author = c.nodeAuthor
	c.publisher.Publish(ctx, topic, out)
}

func mustDecodeEncodedData(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
