package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// rpcHelper wraps an ethclient.Client with the handful of operations a
// message-relay driver needs: receipt lookup, confirmation counting, and
// read-only contract calls. Grounded on the teacher's
// src/chainadapter/ethereum/rpc.go RPCHelper, generalized from
// wallet-nonce/gas-estimation helpers to receipt/view-call helpers.
type rpcHelper struct {
	client *ethclient.Client
}

func newRPCHelper(client *ethclient.Client) *rpcHelper {
	return &rpcHelper{client: client}
}

// receipt fetches a transaction receipt by hash. Returns (nil, nil) if the
// transaction is not yet mined.
func (h *rpcHelper) receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	r, err := h.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}
	return r, nil
}

// confirmations computes confirmation count for a receipt against the
// latest known block.
func (h *rpcHelper) confirmations(ctx context.Context, r *types.Receipt) (int, error) {
	latest, err := h.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	if r.BlockNumber == nil {
		return 0, nil
	}
	diff := int64(latest) - r.BlockNumber.Int64() + 1
	if diff < 0 {
		diff = 0
	}
	return int(diff), nil
}

// waitForTransaction polls until the receipt has at least `confirmations`
// confirmations, the context is cancelled, or maxWait elapses (returning
// the best confirmation count observed either way — the caller decides
// whether a short return is a confirmation shortfall).
func (h *rpcHelper) waitForTransaction(ctx context.Context, txHash common.Hash, confirmationsNeeded int, maxWait time.Duration) (*types.Receipt, int, error) {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		r, err := h.receipt(ctx, txHash)
		if err != nil {
			return nil, 0, err
		}
		if r != nil {
			conf, err := h.confirmations(ctx, r)
			if err != nil {
				return r, 0, err
			}
			if conf >= confirmationsNeeded {
				return r, conf, nil
			}
			if time.Now().After(deadline) {
				return r, conf, nil
			}
		} else if time.Now().After(deadline) {
			return nil, 0, nil
		}

		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// callView performs a read-only contract call and unpacks a single return
// value into out.
func (h *rpcHelper) callView(ctx context.Context, contract common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := parsedMessageContractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s call: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	result, err := h.client.CallContract(ctx, msg, nil)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsedMessageContractABI.Unpack(method, result)
	if err != nil {
		return fmt.Errorf("unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return fmt.Errorf("unexpected %s return arity: %d", method, len(values))
	}
	if !assignOut(values[0], out) {
		return fmt.Errorf("unexpected %s return type %T", method, values[0])
	}
	return nil
}

func assignOut(value interface{}, out interface{}) bool {
	switch o := out.(type) {
	case *bool:
		if v, ok := value.(bool); ok {
			*o = v
			return true
		}
	case *common.Address:
		if v, ok := value.(common.Address); ok {
			*o = v
			return true
		}
	case **big.Int:
		if v, ok := value.(*big.Int); ok {
			*o = v
			return true
		}
	}
	return false
}
