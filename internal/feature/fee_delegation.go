package feature

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/src/driver"
)

// FeeDelegation is featureId 1: featureData carries an ABI-encoded
// (address payer) tuple; process checks the payer against a static
// allow-list and echoes it back as featureReply.
type FeeDelegation struct {
	allowlist map[string]bool
}

// NewFeeDelegation builds the fee-delegation feature with a fixed set of
// pre-authorized payer addresses.
func NewFeeDelegation(allowlist []string) *FeeDelegation {
	m := make(map[string]bool, len(allowlist))
	for _, addr := range allowlist {
		m[strings.ToLower(addr)] = true
	}
	return &FeeDelegation{allowlist: m}
}

func (f *FeeDelegation) ID() int          { return 1 }
func (f *FeeDelegation) Name() string     { return "fee-delegation" }
func (f *FeeDelegation) Description() string {
	return "verifies the gas-sponsorship payer is on the allow-list and echoes it back"
}

var addressTupleArgs = abi.Arguments{{Type: mustAddressType()}}

func mustAddressType() abi.Type {
	t, err := abi.NewType("address", "", nil)
	if err != nil {
		panic("feature: invalid address abi type: " + err.Error())
	}
	return t
}

func (f *FeeDelegation) Process(ctx context.Context, d driver.Driver, m *message.Message) (string, bool, error) {
	raw, err := decodeHex(m.FeatureData)
	if err != nil {
		return "", false, fmt.Errorf("decode featureData: %w", err)
	}
	values, err := addressTupleArgs.Unpack(raw)
	if err != nil || len(values) != 1 {
		return "", false, fmt.Errorf("unpack payer tuple: %w", err)
	}
	payer, ok := values[0].(common.Address)
	if !ok {
		return "", false, fmt.Errorf("unexpected payer type %T", values[0])
	}

	if !f.allowlist[strings.ToLower(payer.Hex())] {
		return "", true, nil
	}
	return payer.Hex(), false, nil
}

func (f *FeeDelegation) IsMessageValid(ctx context.Context, d driver.Driver, m *message.Message) (bool, error) {
	return true, nil
}
