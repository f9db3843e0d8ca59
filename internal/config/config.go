// Package config loads the per-chain NetworkConfig map and node identity
// settings. Generalized from the teacher's internal/app.AppConfig (a
// JSON-encrypted wallet config file) to a YAML network map plus the
// environment variables spec.md §6 names — this daemon has no wallet
// metadata to protect, so the encrypted-file layer is dropped in favor of
// plain config consumed at process start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NetworkConfig describes one chain this node can drive.
type NetworkConfig struct {
	ID                string `yaml:"id"`
	Type              string `yaml:"type"`
	Name              string `yaml:"name"`
	RPC               string `yaml:"rpc"`
	RPCExec           string `yaml:"rpcExec,omitempty"`
	Finality          int    `yaml:"finality"`
	ChunkSize         int    `yaml:"chunkSize,omitempty"`
	Lookback          int    `yaml:"lookback,omitempty"`
	LookbackDelay     int    `yaml:"lookbackDelay,omitempty"`
	FreeGas           bool   `yaml:"freeGas,omitempty"`
	GasOffset         string `yaml:"gasOffset,omitempty"`
	ForceLegacyGas    bool   `yaml:"forceLegacyGas,omitempty"`
	ForceGasFeeAmount string `yaml:"forceGasFeeAmount,omitempty"`
	MessageContract   string `yaml:"messageContract,omitempty"`
}

// Networks is the network-label → NetworkConfig map spec.md §6 requires.
type Networks map[string]NetworkConfig

// LoadNetworks parses a YAML document of the shape described in spec.md §6.
func LoadNetworks(raw []byte) (Networks, error) {
	var networks Networks
	if err := yaml.Unmarshal(raw, &networks); err != nil {
		return nil, fmt.Errorf("parse network config: %w", err)
	}
	for label, n := range networks {
		if n.ID == "" {
			return nil, fmt.Errorf("network %q: missing id", label)
		}
		if n.Type == "" {
			return nil, fmt.Errorf("network %q: missing type", label)
		}
		if n.RPC == "" {
			return nil, fmt.Errorf("network %q: missing rpc", label)
		}
	}
	return networks, nil
}

// NodeIdentity is every value spec.md §6's environment variable table
// contributes to process bootstrap.
type NodeIdentity struct {
	NodePrivateKey   string
	NodePublicKey    string
	P2PPrivateKey    string // base64 protobuf identity, empty => generate
	Bootnode         bool
	BootstrapPeers   []string
	AnnounceAddress  string
	DataStreamPort   int // 0 => broadcaster disabled
	Debug            bool
}

// LoadNodeIdentity reads the environment variables spec.md §6 names.
// NODE_PRIVATE_KEY and NODE_PUBLIC_KEY are required; everything else has a
// safe zero value.
func LoadNodeIdentity(getenv func(string) string) (NodeIdentity, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	id := NodeIdentity{
		NodePrivateKey:  getenv("NODE_PRIVATE_KEY"),
		NodePublicKey:   getenv("NODE_PUBLIC_KEY"),
		P2PPrivateKey:   getenv("P2P_PRIVATE_KEY"),
		Bootnode:        parseBool(getenv("BOOTNODE")),
		AnnounceAddress: getenv("ANNOUNCE_ADDRESS"),
		Debug:           parseBool(getenv("DEBUG")),
	}

	if id.NodePrivateKey == "" {
		return NodeIdentity{}, fmt.Errorf("NODE_PRIVATE_KEY is required")
	}
	if id.NodePublicKey == "" {
		return NodeIdentity{}, fmt.Errorf("NODE_PUBLIC_KEY is required")
	}

	if raw := getenv("BOOTSTRAP_PEERS"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				id.BootstrapPeers = append(id.BootstrapPeers, p)
			}
		}
	}

	if raw := getenv("DATA_STREAM_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return NodeIdentity{}, fmt.Errorf("DATA_STREAM_PORT: %w", err)
		}
		id.DataStreamPort = port
	}

	return id, nil
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}
