package feature

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
)

// Echo is featureId 2: always succeeds, replying with the SHA-256 of
// featureData. Exercises the FEATURE:START -> FEATURE:COMPLETED path without
// an external dependency; it is not used as a fallback for unknown ids.
type Echo struct{}

func (Echo) ID() int             { return 2 }
func (Echo) Name() string        { return "payload-echo" }
func (Echo) Description() string { return "echoes the SHA-256 of featureData as featureReply" }

func (Echo) Process(ctx context.Context, d driver.Driver, m *message.Message) (string, bool, error) {
	raw, err := decodeHex(m.FeatureData)
	if err != nil {
		return "", false, err
	}
	sum := sha256.Sum256(raw)
	return "0x" + hex.EncodeToString(sum[:]), false, nil
}

func (Echo) IsMessageValid(ctx context.Context, d driver.Driver, m *message.Message) (bool, error) {
	return true, nil
}
