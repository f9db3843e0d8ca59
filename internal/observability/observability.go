// Package observability defines the narrow interfaces the core exposes to
// the chat-notification sink and the WebSocket data-stream broadcaster
// (spec.md §6). Both collaborators are explicitly out of scope as
// features; this package only carries the consumer contract and filter
// shape the orchestrator taps on ingress, plus a logging-only default so
// Vladiator has something to wire when neither sink is configured.
package observability

import (
	"context"

	"github.com/vladiator-network/vladiator/internal/message"
)

// Filter decides whether a sink cares about a given frame, matching on
// author, source, or values.sender as spec.md §6 allows.
type Filter struct {
	Author string
	Source string
	Sender string
}

// Matches reports whether m satisfies every non-empty field of f.
func (f Filter) Matches(m *message.Message) bool {
	if f.Author != "" && f.Author != m.Author {
		return false
	}
	if f.Source != "" && f.Source != m.Source {
		return false
	}
	if f.Sender != "" {
		if m.Values == nil || m.Values.Sender != f.Sender {
			return false
		}
	}
	return true
}

// Sink is an external collaborator the orchestrator taps on every inbound
// frame, subject to its own Filter.
type Sink interface {
	Observe(ctx context.Context, m *message.Message)
}

// LoggingSink is the default Sink: it logs matching frames and does not
// reach any external system. Real chat/data-stream sinks are separate
// out-of-scope collaborators that would implement Sink directly.
type LoggingSink struct {
	Filter Filter
	Log    func(m *message.Message)
}

// Observe logs m if it matches the configured filter.
func (s LoggingSink) Observe(ctx context.Context, m *message.Message) {
	if !s.Filter.Matches(m) {
		return
	}
	if s.Log != nil {
		s.Log(m)
	}
}
