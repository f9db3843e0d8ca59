package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladiator-network/vladiator/internal/bus"
	"github.com/vladiator-network/vladiator/internal/config"
	"github.com/vladiator-network/vladiator/internal/feature"
	"github.com/vladiator-network/vladiator/internal/logging"
	"github.com/vladiator-network/vladiator/internal/message"
	"github.com/vladiator-network/vladiator/internal/observability"
	"github.com/vladiator-network/vladiator/internal/orchestrator"
	"github.com/vladiator-network/vladiator/src/driver"
	"github.com/vladiator-network/vladiator/src/driver/evm"
	"github.com/vladiator-network/vladiator/src/driver/metrics"
	"github.com/vladiator-network/vladiator/src/driver/substrate"
)

const networksConfigPath = "networks.yaml"

func main() {
	identity, err := config.LoadNodeIdentity(os.Getenv)
	if err != nil {
		os.Stderr.WriteString("vladiator: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(identity.Debug)

	raw, err := os.ReadFile(networksConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", networksConfigPath).Msg("read network config")
	}
	networks, err := config.LoadNetworks(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("parse network config")
	}

	driverMetrics := metrics.NewDriverMetrics(prometheus.DefaultRegisterer)

	drivers := make(map[string]driver.Driver, len(networks))
	for label, n := range networks {
		d, err := buildDriver(n, identity, driverMetrics)
		if err != nil {
			log.Fatal().Err(err).Str("network", label).Msg("construct driver")
		}
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = d.Connect(connectCtx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("network", label).Msg("connect driver")
		}
		drivers[n.ID] = d
	}

	features := feature.NewRegistry(
		feature.NewFeeDelegation(nil),
		feature.Echo{},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bus.New(ctx, bus.Config{
		ListenAddress:   "/ip4/0.0.0.0/tcp/0",
		AnnounceAddress: identity.AnnounceAddress,
		Bootnode:        identity.Bootnode,
		BootstrapPeers:  parseBootstrapPeers(identity.BootstrapPeers),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("start message bus")
	}
	defer b.Close()

	sinks := []observability.Sink{
		observability.LoggingSink{
			Log: func(m *message.Message) {
				log.Debug().Str("type", string(m.Type)).Str("author", m.Author).Msg("observed frame")
			},
		},
	}

	v := orchestrator.New(b, drivers, features, sinks, identity.NodePublicKey, log)

	log.Info().Int("chains", len(drivers)).Msg("vladiator starting")
	if err := v.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("orchestrator exited")
	}
	log.Info().Msg("vladiator shutting down")
}

func buildDriver(n config.NetworkConfig, identity config.NodeIdentity, reg *metrics.DriverMetrics) (driver.Driver, error) {
	switch driver.Family(n.Type) {
	case driver.FamilyEVM:
		return evm.NewAdapter(evm.Config{
			ChainID:         n.ID,
			RPC:             n.RPC,
			MessageContract: common.HexToAddress(n.MessageContract),
			Finality:        n.Finality,
			NodePrivateKey:  identity.NodePrivateKey,
		}, reg)
	case driver.FamilySubstrate:
		return substrate.NewAdapter(substrate.Config{
			ChainID:     n.ID,
			RPC:         n.RPC,
			Finality:    n.Finality,
			NodeSeed:    identity.NodePrivateKey,
			SS58Network: 42,
		}, reg)
	default:
		return nil, driver.New(driver.KindConnect, "unknown driver family: "+n.Type, nil)
	}
}

func parseBootstrapPeers(raw []string) []peer.AddrInfo {
	var out []peer.AddrInfo
	for _, addr := range raw {
		info, err := peer.AddrInfoFromString(addr)
		if err != nil {
			continue
		}
		out = append(out, *info)
	}
	return out
}
