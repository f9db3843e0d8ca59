package config

import "testing"

func TestLoadNetworksValid(t *testing.T) {
	raw := []byte(`
mainnet:
  id: "1"
  type: EVMMV3
  name: Ethereum
  rpc: https://eth.example/rpc
  finality: 12
bsc:
  id: "56"
  type: EVMMV3
  name: BNB Smart Chain
  rpc: https://bsc.example/rpc
  finality: 15
`)
	networks, err := LoadNetworks(raw)
	if err != nil {
		t.Fatalf("LoadNetworks: %v", err)
	}
	if len(networks) != 2 {
		t.Fatalf("expected 2 networks, got %d", len(networks))
	}
	if networks["mainnet"].Finality != 12 {
		t.Fatalf("mainnet.Finality = %d, want 12", networks["mainnet"].Finality)
	}
}

func TestLoadNetworksMissingField(t *testing.T) {
	raw := []byte(`
mainnet:
  type: EVMMV3
  rpc: https://eth.example/rpc
`)
	if _, err := LoadNetworks(raw); err == nil {
		t.Fatal("expected an error for a network missing id")
	}
}

func TestLoadNodeIdentityRequiresKeys(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	if _, err := LoadNodeIdentity(getenv); err == nil {
		t.Fatal("expected an error when NODE_PRIVATE_KEY/NODE_PUBLIC_KEY are absent")
	}

	env["NODE_PRIVATE_KEY"] = "deadbeef"
	env["NODE_PUBLIC_KEY"] = "node-pub"
	env["BOOTSTRAP_PEERS"] = "/ip4/1.2.3.4/tcp/4001/p2p/Qm1, /ip4/5.6.7.8/tcp/4001/p2p/Qm2"
	env["DATA_STREAM_PORT"] = "9090"
	env["DEBUG"] = "true"

	id, err := LoadNodeIdentity(getenv)
	if err != nil {
		t.Fatalf("LoadNodeIdentity: %v", err)
	}
	if len(id.BootstrapPeers) != 2 {
		t.Fatalf("expected 2 bootstrap peers, got %d", len(id.BootstrapPeers))
	}
	if id.DataStreamPort != 9090 {
		t.Fatalf("DataStreamPort = %d, want 9090", id.DataStreamPort)
	}
	if !id.Debug {
		t.Fatal("Debug should be true")
	}
}
