// Package feature holds the compile-time feature-plugin registry. Per
// SPEC_FULL.md's design note, features are a fixed map populated at
// program startup rather than loaded from a directory at runtime — the
// teacher's dynamic coinregistry.Registry pattern is generalized here to a
// static map, since the feature set is closed and known at build time.
package feature

import (
	"context"

	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
)

// Feature is a plug-in invoked between validation and signing. Process may
// mutate nothing observable outside its return value; it reports failure
// either via a non-nil error or via the returned failed flag, both of
// which the coordinator treats identically (publish FEATURE:FAILED).
type Feature interface {
	ID() int
	Name() string
	Description() string

	// Process runs the feature against the populated, validated message.
	// It returns an opaque reply (hex-encoded bytes, stored verbatim in
	// featureReply) and whether the feature considers its own work failed.
	Process(ctx context.Context, d driver.Driver, m *message.Message) (reply string, failed bool, err error)

	// IsMessageValid reports a feature's own verdict on a message, separate
	// from the driver's isMessageValid. The coordinator does not call it, so
	// its result does not affect signing. The default features in this
	// registry always return true.
	IsMessageValid(ctx context.Context, d driver.Driver, m *message.Message) (bool, error)
}

// Registry is the compile-time featureId → Feature map.
type Registry struct {
	features map[int]Feature
}

// NewRegistry builds a registry from a fixed list of features, keyed by
// their own declared ID. A duplicate ID is a programming error and panics
// at startup rather than silently shadowing.
func NewRegistry(features ...Feature) *Registry {
	r := &Registry{features: make(map[int]Feature, len(features))}
	for _, f := range features {
		if _, exists := r.features[f.ID()]; exists {
			panic("feature: duplicate featureId registered")
		}
		r.features[f.ID()] = f
	}
	return r
}

// Get looks up a feature by id. The coordinator treats a missing id as an
// unknown-feature failure (featureFailed=true, FEATURE:FAILED emitted).
func (r *Registry) Get(id int) (Feature, bool) {
	f, ok := r.features[id]
	return f, ok
}
