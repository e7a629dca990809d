// Command whts-master runs the Master tier of the WHTS stack: it listens
// for Backend control traffic and Slave replies on one UDP socket, drives
// the collection cycle, and exposes Prometheus metrics.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/whts/whts-go/internal/config"
	"github.com/whts/whts-go/internal/logging"
	"github.com/whts/whts-go/internal/master"
	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/metrics"
	"github.com/whts/whts-go/internal/reassembly"
	"github.com/whts/whts-go/internal/transport"
	"github.com/whts/whts-go/internal/wire"
)

const version = "1.0.0"

var cycleStates = []string{"Idle", "Collecting", "ReadingData", "Complete"}

func main() {
	var envFile, metricsAddr string

	cfg := config.Defaults()

	root := &cobra.Command{
		Use:   "whts-master",
		Short: "Run the WHTS Master gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return err
			}
			mergeFlags(cmd.Flags(), &loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}
			return run(loaded, metricsAddr)
		},
	}

	flags := root.Flags()
	flags.StringVar(&envFile, "env-file", "", "path to a .env-style config file")
	flags.StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	flags.IntVar(&cfg.MTU, "mtu", cfg.MTU, "frame size cap before fragmentation")
	flags.IntVar(&cfg.MaxReceiveBuffer, "max-receive-buffer", cfg.MaxReceiveBuffer, "reassembler input cap in bytes")
	flags.Int64Var(&cfg.CycleIntervalMS, "cycle-interval-ms", cfg.CycleIntervalMS, "minimum gap between cycle starts")
	flags.Int64Var(&cfg.PendingCommandTimeoutMS, "pending-command-timeout-ms", cfg.PendingCommandTimeoutMS, "retry spacing for outstanding commands")
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "max retransmissions before a command is dropped")
	flags.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address the Master binds for Backend/Slave traffic")
	flags.StringVar(&cfg.BackendAddr, "backend-addr", cfg.BackendAddr, "Backend's unicast address")
	flags.StringVar(&cfg.BroadcastAddr, "broadcast-addr", cfg.BroadcastAddr, "broadcast address simulating the wireless downlink")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// mergeFlags overlays any flag the user actually set onto loaded, so env
// and .env values still win when a flag was left at its default.
func mergeFlags(flags *pflag.FlagSet, loaded *config.Config) {
	if flags.Changed("mtu") {
		v, _ := flags.GetInt("mtu")
		loaded.MTU = v
	}
	if flags.Changed("max-receive-buffer") {
		v, _ := flags.GetInt("max-receive-buffer")
		loaded.MaxReceiveBuffer = v
	}
	if flags.Changed("cycle-interval-ms") {
		v, _ := flags.GetInt64("cycle-interval-ms")
		loaded.CycleIntervalMS = v
	}
	if flags.Changed("pending-command-timeout-ms") {
		v, _ := flags.GetInt64("pending-command-timeout-ms")
		loaded.PendingCommandTimeoutMS = v
	}
	if flags.Changed("max-retries") {
		v, _ := flags.GetInt("max-retries")
		loaded.MaxRetries = v
	}
	if flags.Changed("listen-addr") {
		v, _ := flags.GetString("listen-addr")
		loaded.ListenAddr = v
	}
	if flags.Changed("backend-addr") {
		v, _ := flags.GetString("backend-addr")
		loaded.BackendAddr = v
	}
	if flags.Changed("broadcast-addr") {
		v, _ := flags.GetString("broadcast-addr")
		loaded.BroadcastAddr = v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		loaded.LogLevel = v
	}
}

func run(cfg config.Config, metricsAddr string) error {
	log := logging.New(os.Stderr, cfg.LogLevel)
	logging.Banner("MASTER", version)

	backendAddr, err := net.ResolveUDPAddr("udp", cfg.BackendAddr)
	if err != nil {
		return fmt.Errorf("resolving backend-addr: %w", err)
	}
	broadcastAddr, err := net.ResolveUDPAddr("udp", cfg.BroadcastAddr)
	if err != nil {
		return fmt.Errorf("resolving broadcast-addr: %w", err)
	}
	port, err := transport.NewUDPPort(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("binding listen-addr: %w", err)
	}
	defer port.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewMaster(reg)
	go serveMetrics(metricsAddr, reg, log)

	dispatcher := master.NewDispatcher(backendAddr, broadcastAddr, cfg.PendingCommandTimeoutMS, cfg.CycleIntervalMS, cfg.MaxRetries)
	reassembler := reassembly.NewReassembler(reassembly.Config{
		MTU:               cfg.MTU,
		MaxReceiveBuffer:  cfg.MaxReceiveBuffer,
		FragmentTimeoutMS: cfg.FragmentTimeoutMS,
	})
	fragCfg := reassembly.Config{MTU: cfg.MTU, MaxReceiveBuffer: cfg.MaxReceiveBuffer, FragmentTimeoutMS: cfg.FragmentTimeoutMS}

	log.Info().Str("listen", cfg.ListenAddr).Str("backend", cfg.BackendAddr).Msg("master ready")

	lastEvictMS := nowMS()
	for {
		now := nowMS()

		data, _, err := port.Recv()
		switch {
		case err == nil:
			reassembler.Feed(data, now)
		case err == transport.ErrWouldBlock:
			// nothing waiting this tick
		default:
			log.Warn().Err(err).Msg("recv error")
		}

		for {
			frame, ok := reassembler.Dequeue()
			if !ok {
				break
			}
			handleFrame(dispatcher, frame, now, log, m, port, fragCfg)
		}

		outs, stats := dispatcher.Tick(now)
		for _, out := range outs {
			send(port, fragCfg, out, log)
		}
		m.RetriesTotal.Add(float64(stats.Retries))
		m.RetryDropsTotal.Add(float64(stats.RetryDrops))

		if now-lastEvictMS >= cfg.FragmentTimeoutMS {
			reassembler.EvictExpired(now)
			lastEvictMS = now
		}

		m.RegistrySize.Set(float64(len(dispatcher.Registry.Connected())))
		m.ConnectedSlaves.Set(float64(len(dispatcher.Registry.Connected())))
		m.PendingCommands.Set(float64(dispatcher.Pending.Len()))
		m.SetCycleState(dispatcher.Cycle.State.String(), cycleStates)

		time.Sleep(10 * time.Millisecond)
	}
}

func handleFrame(d *master.Dispatcher, frame wire.Frame, now int64, log logging.Logger, m *metrics.Master, port *transport.UDPPort, fragCfg reassembly.Config) {
	pkt, err := message.ParsePacket(frame.PacketID, frame.Payload)
	if err != nil {
		m.DecodeErrorsTotal.Inc()
		log.Warn().Err(err).Str("packet_id", frame.PacketID.String()).Msg("decode failed")
		return
	}

	switch frame.PacketID {
	case wire.PacketBackendToMaster:
		for _, out := range d.HandleBackendToMaster(pkt.Msg, now) {
			send(port, fragCfg, out, log)
		}
	case wire.PacketSlaveToMaster:
		d.HandleSlaveToMaster(pkt.SlaveID, pkt.Msg, now)
	case wire.PacketSlaveToBackend:
		out, cycleCompleted := d.HandleSlaveToBackend(pkt.SlaveID, frame.Payload, now)
		if cycleCompleted {
			m.CyclesCompleted.Inc()
		}
		send(port, fragCfg, out, log)
	}
}

func send(port *transport.UDPPort, fragCfg reassembly.Config, out master.Outbound, log logging.Logger) {
	frames, err := reassembly.Fragment(fragCfg, out.PacketID, out.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("fragmenting outbound frame failed")
		return
	}
	for _, f := range frames {
		if err := port.Send(f, out.Addr); err != nil {
			log.Warn().Err(err).Msg("send failed")
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn().Err(err).Msg("metrics server stopped")
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}
