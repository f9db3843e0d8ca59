package bus

import (
	"testing"
	"time"

	"github.com/vladiator-network/vladiator/internal/message"
)

func newTestBus() *Bus {
	return &Bus{recent: make(map[string]time.Time)}
}

func TestNeedsDedup(t *testing.T) {
	if !needsDedup(message.TopicMessageRequest) {
		t.Fatal("MESSAGE:REQUEST must be deduplicated")
	}
	if !needsDedup(message.TopicMessageSigned) {
		t.Fatal("MESSAGE:SIGNED must be deduplicated")
	}
	if needsDedup(message.TopicHeartbeat) {
		t.Fatal("HEARTBEAT must not be deduplicated")
	}
}

func TestIsDuplicateWithinWindow(t *testing.T) {
	b := newTestBus()
	m := &message.Message{Author: "peer-1", TransactionHash: "0xabc"}

	if b.isDuplicate(message.TopicMessageRequest, m) {
		t.Fatal("first sighting must not be a duplicate")
	}
	if !b.isDuplicate(message.TopicMessageRequest, m) {
		t.Fatal("second sighting within the window must be a duplicate")
	}
}

func TestIsDuplicateDistinguishesKeys(t *testing.T) {
	b := newTestBus()
	a := &message.Message{Author: "peer-1", TransactionHash: "0xabc"}
	c := &message.Message{Author: "peer-2", TransactionHash: "0xabc"}

	if b.isDuplicate(message.TopicMessageRequest, a) {
		t.Fatal("first sighting must not be a duplicate")
	}
	if b.isDuplicate(message.TopicMessageRequest, c) {
		t.Fatal("a different author must not be treated as a duplicate")
	}
	if b.isDuplicate(message.TopicMessageSigned, a) {
		t.Fatal("a different topic must not be treated as a duplicate")
	}
}

func TestIsDuplicateExpiresAfterWindow(t *testing.T) {
	b := newTestBus()
	m := &message.Message{Author: "peer-1", TransactionHash: "0xabc"}
	key := string(message.TopicMessageRequest) + "|" + m.Author + "|" + m.TransactionHash
	b.recent[key] = time.Now().Add(-dedupWindow - time.Second)

	if b.isDuplicate(message.TopicMessageRequest, m) {
		t.Fatal("an entry older than the dedup window must not count as a duplicate")
	}
}
