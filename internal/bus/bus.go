// Package bus implements the gossip pub/sub message transport: a libp2p
// host running go-libp2p-pubsub's gossipsub router, topic subscribe and
// publish, and the 5-second dedup window on MESSAGE:REQUEST/MESSAGE:SIGNED.
// Grounded on the Wormhole guardian's p2p.go gossip wiring (host
// construction, pubsub.NewGossipSub, per-topic Subscribe loop) and
// generalized to this project's closed topic set.
package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/rs/zerolog"

	"github.com/vladiator-network/vladiator/internal/message"
)

const dedupWindow = 5 * time.Second

// Config configures the overlay. AnnounceAddress/Bootnode/BootstrapPeers
// come straight from spec.md §6's environment table.
type Config struct {
	ListenAddress   string
	AnnounceAddress string
	Bootnode        bool
	BootstrapPeers  []peer.AddrInfo
}

// Bus owns the libp2p host, the gossipsub router, and per-topic
// subscriptions. Handler callbacks run on the ingress goroutine per topic;
// RecentGossip dedup is applied before a handler is invoked.
type Bus struct {
	host host.Host
	ps   *pubsub.PubSub
	log  zerolog.Logger

	topics map[message.Topic]*pubsub.Topic
	subs   map[message.Topic]*pubsub.Subscription

	mu     sync.Mutex
	recent map[string]time.Time // (type|author|transactionHash) -> last seen
}

// New builds the libp2p host and gossipsub router, joins every topic in
// message.Topics, and returns a Bus ready to Publish/Subscribe.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Bus, error) {
	opts := []libp2p.Option{}
	if cfg.ListenAddress != "" {
		opts = append(opts, libp2p.ListenAddrStrings(cfg.ListenAddress))
	}
	if cfg.AnnounceAddress != "" {
		announce, err := ma.NewMultiaddr(cfg.AnnounceAddress)
		if err != nil {
			return nil, err
		}
		opts = append(opts, libp2p.AddrsFactory(func(addrs []ma.Multiaddr) []ma.Multiaddr {
			return append(addrs, announce)
		}))
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, err
	}

	for _, p := range cfg.BootstrapPeers {
		if dialErr := h.Connect(ctx, p); dialErr != nil {
			log.Debug().Err(dialErr).Str("peer", p.ID.String()).Msg("bootstrap peer dial failed")
		}
	}

	b := &Bus{
		host:   h,
		ps:     ps,
		log:    log,
		topics: make(map[message.Topic]*pubsub.Topic),
		subs:   make(map[message.Topic]*pubsub.Subscription),
		recent: make(map[string]time.Time),
	}

	for _, topic := range message.Topics {
		t, err := ps.Join(string(topic))
		if err != nil {
			return nil, err
		}
		b.topics[topic] = t
	}

	return b, nil
}

// Close shuts the host down.
func (b *Bus) Close() error {
	return b.host.Close()
}

// Publish marshals m and publishes it under topic.
func (b *Bus) Publish(ctx context.Context, topic message.Topic, m *message.Message) error {
	t, ok := b.topics[topic]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return t.Publish(ctx, payload)
}

// Handler processes one inbound, already-deduplicated frame.
type Handler func(ctx context.Context, topic message.Topic, m *message.Message)

// Subscribe joins the ingress loop for topic, invoking handler for every
// frame that survives the dedup window. Runs until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, topic message.Topic, handler Handler) error {
	t, ok := b.topics[topic]
	if !ok {
		return nil
	}
	sub, err := t.Subscribe()
	if err != nil {
		return err
	}
	b.subs[topic] = sub

	go func() {
		for {
			raw, err := sub.Next(ctx)
			if err != nil {
				return
			}
			var m message.Message
			if err := json.Unmarshal(raw.Data, &m); err != nil {
				b.log.Debug().Err(err).Msg("dropping malformed frame")
				continue
			}
			if needsDedup(topic) && b.isDuplicate(topic, &m) {
				continue
			}
			handler(ctx, topic, &m)
		}
	}()
	return nil
}

func needsDedup(topic message.Topic) bool {
	return topic == message.TopicMessageRequest || topic == message.TopicMessageSigned
}

// isDuplicate checks and records (type, author, transactionHash) against
// the 5-second sliding window, sweeping stale entries on every call.
func (b *Bus) isDuplicate(topic message.Topic, m *message.Message) bool {
	key := string(topic) + "|" + m.Author + "|" + m.TransactionHash
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, seenAt := range b.recent {
		if now.Sub(seenAt) > dedupWindow {
			delete(b.recent, k)
		}
	}

	if seenAt, ok := b.recent[key]; ok && now.Sub(seenAt) <= dedupWindow {
		return true
	}
	b.recent[key] = now
	return false
}

// Heartbeat publishes a HEARTBEAT frame with the sentinel source every
// interval until ctx is cancelled.
func (b *Bus) Heartbeat(ctx context.Context, author string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hb := &message.Message{
				Type:   message.TopicHeartbeat,
				Author: author,
				Source: message.HeartbeatSource,
			}
			if err := b.Publish(ctx, message.TopicHeartbeat, hb); err != nil {
				b.log.Debug().Err(err).Msg("heartbeat publish failed")
			}
		}
	}
}
