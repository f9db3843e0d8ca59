package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client used by driver unit tests: it returns a
// canned response per method name without touching the network.
type MockClient struct {
	mu        sync.Mutex
	Responses map[string]json.RawMessage
	Errors    map[string]error
	Calls     []string
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{
		Responses: make(map[string]json.RawMessage),
		Errors:    make(map[string]error),
	}
}

// SetResponse registers a canned JSON response for a method.
func (c *MockClient) SetResponse(method string, v interface{}) {
	data, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Responses[method] = data
}

// SetError registers a canned error for a method.
func (c *MockClient) SetError(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[method] = err
}

func (c *MockClient) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, method)
	if err, ok := c.Errors[method]; ok {
		return nil, err
	}
	if res, ok := c.Responses[method]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("mock client: no response registered for %q", method)
}

func (c *MockClient) CallBatch(ctx context.Context, requests []Request) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(requests))
	for i, r := range requests {
		res, err := c.Call(ctx, r.Method, r.Params)
		if err != nil {
			continue
		}
		results[i] = res
	}
	return results, nil
}

func (c *MockClient) Close() error { return nil }

var _ Client = (*MockClient)(nil)
