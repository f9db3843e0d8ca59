// Package orchestrator implements the Vladiator component: owns the driver
// table, features, and bus; routes inbound frames by topic; taps
// observability sinks; emits PENALTY:CHAINMISS for frames whose source chain
// has no loaded driver; runs the heartbeat ticker. Grounded on the Wormhole guardian
// Processor's top-level dispatch loop, generalized from vaa aggregation to
// this project's topic-routed coordinator dispatch.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladiator-network/vladiator/internal/bus"
	"github.com/vladiator-network/vladiator/internal/coordinator"
	"github.com/vladiator-network/vladiator/internal/feature"
	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/internal/observability"
	"github.com/vladiator-network/vladiator/src/driver"
)

const heartbeatInterval = 2 * time.Minute

// driverTable resolves a destination chain id to its driver, implementing
// coordinator.DriverTable for every coordinator this Vladiator owns.
type driverTable struct {
	drivers map[string]driver.Driver
}

func (t driverTable) Driver(chainID string) (driver.Driver, bool) {
	d, ok := t.drivers[chainID]
	return d, ok
}

// publisherAdapter adapts *bus.Bus (error-returning) to
// coordinator.Publisher (fire-and-forget, logging its own failures).
type publisherAdapter struct {
	bus *bus.Bus
	log zerolog.Logger
}

func (p publisherAdapter) Publish(ctx context.Context, topic message.Topic, m *message.Message) {
	if err := p.bus.Publish(ctx, topic, m); err != nil {
		p.log.Debug().Err(err).Str("topic", string(topic)).Msg("publish failed")
	}
}

// Vladiator owns the driver table and routes inbound bus frames to the
// correct per-driver coordinator.
type Vladiator struct {
	bus          *bus.Bus
	drivers      map[string]driver.Driver
	coordinators map[string]*coordinator.Coordinator
	sinks        []observability.Sink
	log          zerolog.Logger
	nodeAuthor   string
}

// New constructs a Vladiator. drivers is keyed by chain id; a Coordinator
// is created for every entry so each loaded chain can act as a source.
func New(b *bus.Bus, drivers map[string]driver.Driver, features *feature.Registry, sinks []observability.Sink, nodeAuthor string, log zerolog.Logger) *Vladiator {
	v := &Vladiator{
		bus:          b,
		drivers:      drivers,
		coordinators: make(map[string]*coordinator.Coordinator),
		sinks:        sinks,
		log:          log,
		nodeAuthor:   nodeAuthor,
	}
	table := driverTable{drivers: drivers}
	pub := publisherAdapter{bus: b, log: log}
	for chainID, d := range drivers {
		v.coordinators[chainID] = coordinator.New(d, table, features, pub, nodeAuthor, log)
	}
	return v
}

// Run subscribes to every topic and starts the heartbeat ticker. Blocks
// until ctx is cancelled.
func (v *Vladiator) Run(ctx context.Context) error {
	for _, topic := range message.Topics {
		if err := v.bus.Subscribe(ctx, topic, v.handleInbound); err != nil {
			return err
		}
	}
	go v.bus.Heartbeat(ctx, v.nodeAuthor, heartbeatInterval)
	<-ctx.Done()
	return ctx.Err()
}

// handleInbound implements §4.4's three ingress steps.
func (v *Vladiator) handleInbound(ctx context.Context, topic message.Topic, m *message.Message) {
	for _, sink := range v.sinks {
		sink.Observe(ctx, m)
	}

	if m.IsHeartbeat() {
		return
	}

	if _, ok := v.drivers[m.Source]; !ok {
		v.publishPenalty(ctx, m)
		return
	}

	if topic != message.TopicMessageRequest {
		return
	}

	c, ok := v.coordinators[m.Source]
	if !ok {
		return
	}
	go c.ProcessRequest(ctx, m)
}

func (v *Vladiator) publishPenalty(ctx context.Context, m *message.Message) {
	out := m.Clone()
	out.Type = message.TopicPenaltyChainMiss
	out.Author = v.nodeAuthor
	if err := v.bus.Publish(ctx, message.TopicPenaltyChainMiss, out); err != nil {
		v.log.Debug().Err(err).Msg("penalty publish failed")
	}
}
