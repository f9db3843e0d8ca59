package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientCallReturnsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "eth_blockNumber" {
			t.Fatalf("method = %q, want eth_blockNumber", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x10"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 2*time.Second)
	res, err := c.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(res) != `"0x10"` {
		t.Fatalf("result = %s, want \"0x10\"", res)
	}
}

func TestHTTPClientCallReturnsRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 2*time.Second)
	_, err := c.Call(context.Background(), "eth_call", nil)
	if err == nil {
		t.Fatal("expected an error for an RPC error envelope")
	}
	if err.Error() != "boom" {
		t.Fatalf("error = %q, want boom", err.Error())
	}
}

func TestHTTPClientCallBatchPreservesOrderOnPartialFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 2 {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":2,"error":{"code":-1,"message":"fail"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 2*time.Second)
	results, err := c.CallBatch(context.Background(), []Request{
		{Method: "a"}, {Method: "b"}, {Method: "c"},
	})
	if err != nil {
		t.Fatalf("CallBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if string(results[0]) != `"ok"` || string(results[2]) != `"ok"` {
		t.Fatalf("expected successful slots populated, got %v", results)
	}
	if results[1] != nil {
		t.Fatalf("expected the failed slot to stay nil, got %s", results[1])
	}
}

func TestMockClientRecordsCallsAndHonorsCannedResponses(t *testing.T) {
	m := NewMockClient()
	m.SetResponse("chainsig", "0xabc")
	m.SetError("broken", context.DeadlineExceeded)

	res, err := m.Call(context.Background(), "chainsig", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(res) != `"0xabc"` {
		t.Fatalf("result = %s, want \"0xabc\"", res)
	}

	if _, err := m.Call(context.Background(), "broken", nil); err == nil {
		t.Fatal("expected the canned error for method \"broken\"")
	}

	if _, err := m.Call(context.Background(), "unregistered", nil); err == nil {
		t.Fatal("expected an error for an unregistered method")
	}

	if len(m.Calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(m.Calls))
	}
}
