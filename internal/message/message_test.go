package message

import "testing"

func TestIsHeartbeat(t *testing.T) {
	m := &Message{Source: HeartbeatSource}
	if !m.IsHeartbeat() {
		t.Fatal("expected heartbeat sentinel to report IsHeartbeat")
	}
	m.Source = "1"
	if m.IsHeartbeat() {
		t.Fatal("chain id 1 must not be treated as heartbeat")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	featureID := 2
	original := &Message{
		Type:   TopicMessageRequest,
		Author: "node-a",
		Values: &Values{TxID: "42", Sender: "0xabc"},
		FeatureID: &featureID,
	}

	clone := original.Clone()
	clone.Values.TxID = "99"
	*clone.FeatureID = 7
	clone.Author = "node-b"

	if original.Values.TxID != "42" {
		t.Fatalf("mutating clone.Values leaked into original: got %q", original.Values.TxID)
	}
	if *original.FeatureID != 2 {
		t.Fatalf("mutating clone.FeatureID leaked into original: got %d", *original.FeatureID)
	}
	if original.Author != "node-a" {
		t.Fatalf("mutating clone.Author leaked into original: got %q", original.Author)
	}
}

func TestCloneNilValues(t *testing.T) {
	original := &Message{Type: TopicHeartbeat}
	clone := original.Clone()
	if clone.Values != nil || clone.FeatureID != nil {
		t.Fatal("clone of a message with nil Values/FeatureID must stay nil")
	}
}

func TestNewCorrelationIDIsUnique(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	if a == "" || b == "" {
		t.Fatal("expected a non-empty correlation id")
	}
	if a == b {
		t.Fatal("expected two distinct correlation ids")
	}
}
