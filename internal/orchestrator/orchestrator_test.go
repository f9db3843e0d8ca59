package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladiator-network/vladiator/internal/bus"
	"github.com/vladiator-network/vladiator/internal/feature"
	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/internal/observability"
	"github.com/vladiator-network/vladiator/src/driver"
)

type countingDriver struct {
	chainID       string
	populateCalls int32
}

func (d *countingDriver) ChainID() string               { return d.chainID }
func (d *countingDriver) Connect(context.Context) error  { return nil }
func (d *countingDriver) PopulateMessage(ctx context.Context, m *message.Message) (*message.Message, error) {
	atomic.AddInt32(&d.populateCalls, 1)
	out := m.Clone()
	out.Values = nil
	return out, nil
}
func (d *countingDriver) IsMessageValid(context.Context, *message.Message) (bool, error) {
	return true, nil
}
func (d *countingDriver) IsMessageProcessed(context.Context, string) (bool, error) { return false, nil }
func (d *countingDriver) SignTransactionData(context.Context, driver.CanonicalPayload) (string, error) {
	return "", nil
}
func (d *countingDriver) GetChainsig(context.Context) (string, error)          { return "", nil }
func (d *countingDriver) GetExsig(context.Context, string) (string, error)     { return "", nil }
func (d *countingDriver) SignerAddress() string                                { return "" }

var _ driver.Driver = (*countingDriver)(nil)

func (d *countingDriver) calls() int32 { return atomic.LoadInt32(&d.populateCalls) }

type recordingSink struct {
	count int32
}

func (s *recordingSink) Observe(ctx context.Context, m *message.Message) {
	atomic.AddInt32(&s.count, 1)
}

func newTestVladiator(drivers map[string]driver.Driver, sink *recordingSink) *Vladiator {
	features := feature.NewRegistry(feature.Echo{})
	return New(&bus.Bus{}, drivers, features, []observability.Sink{sink}, "node-author", zerolog.Nop())
}

func TestHandleInboundSkipsHeartbeat(t *testing.T) {
	d := &countingDriver{chainID: "1"}
	sink := &recordingSink{}
	v := newTestVladiator(map[string]driver.Driver{"1": d}, sink)

	hb := &message.Message{Type: message.TopicHeartbeat, Source: message.HeartbeatSource}
	v.handleInbound(context.Background(), message.TopicHeartbeat, hb)

	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&sink.count) != 1 {
		t.Fatalf("expected the sink to observe the heartbeat frame once, got %d", sink.count)
	}
	if d.calls() != 0 {
		t.Fatal("a heartbeat frame must never reach a coordinator")
	}
}

func TestHandleInboundIgnoresUnknownSourceAndNonRequestTopics(t *testing.T) {
	d := &countingDriver{chainID: "1"}
	sink := &recordingSink{}
	v := newTestVladiator(map[string]driver.Driver{"1": d}, sink)

	unknown := &message.Message{Type: message.TopicMessageRequest, Source: "999"}
	v.handleInbound(context.Background(), message.TopicMessageRequest, unknown)

	queued := &message.Message{Type: message.TopicMessageQueued, Source: "1"}
	v.handleInbound(context.Background(), message.TopicMessageQueued, queued)

	time.Sleep(20 * time.Millisecond)
	if d.calls() != 0 {
		t.Fatalf("neither an unknown-source frame nor a non-REQUEST topic should reach a coordinator, got %d calls", d.calls())
	}
}

func TestHandleInboundRoutesRequestToMatchingCoordinator(t *testing.T) {
	d := &countingDriver{chainID: "1"}
	sink := &recordingSink{}
	v := newTestVladiator(map[string]driver.Driver{"1": d}, sink)

	m := &message.Message{
		Type:            message.TopicMessageRequest,
		Source:          "1",
		TransactionHash: "0xhash",
		Values:          &message.Values{TxID: "1", Chain: "56"},
	}
	v.handleInbound(context.Background(), message.TopicMessageRequest, m)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && d.calls() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if d.calls() != 1 {
		t.Fatalf("expected the source chain's coordinator to populate the message once, got %d calls", d.calls())
	}
}
