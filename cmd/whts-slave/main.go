// Command whts-slave runs one Slave device: it prompts for a 32-bit device
// id, announces itself to the Master, and then services MasterToSlave
// commands against a simulated GPIO bank.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whts/whts-go/internal/config"
	"github.com/whts/whts-go/internal/gpio"
	"github.com/whts/whts-go/internal/logging"
	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/reassembly"
	"github.com/whts/whts-go/internal/slave"
	"github.com/whts/whts-go/internal/transport"
	"github.com/whts/whts-go/internal/wire"
)

const version = "1.0.0"

var firmwareMajor, firmwareMinor uint8 = 1, 0
var firmwarePatch uint16 = 0

func main() {
	var envFile, masterAddrFlag, listenAddrFlag string
	var deviceIDFlag uint32
	var hasDeviceIDFlag bool

	root := &cobra.Command{
		Use:   "whts-slave",
		Short: "Run a WHTS Slave device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if masterAddrFlag != "" {
				cfg.BroadcastAddr = masterAddrFlag
			}
			if listenAddrFlag != "" {
				cfg.ListenAddr = listenAddrFlag
			}

			deviceID := deviceIDFlag
			if !hasDeviceIDFlag {
				deviceID, err = promptDeviceID()
				if err != nil {
					return err
				}
			}
			return run(cfg, deviceID)
		},
	}

	flags := root.Flags()
	flags.StringVar(&envFile, "env-file", "", "path to a .env-style config file")
	flags.StringVar(&masterAddrFlag, "master-addr", "", "Master's unicast/broadcast address")
	flags.StringVar(&listenAddrFlag, "listen-addr", "", "address this Slave binds to")
	flags.Uint32Var(&deviceIDFlag, "device-id", 0, "32-bit device id (skips the interactive prompt)")
	root.PreRun = func(cmd *cobra.Command, args []string) {
		hasDeviceIDFlag = cmd.Flags().Changed("device-id")
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func promptDeviceID() (uint32, error) {
	fmt.Print("Enter this Slave's 32-bit device id: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("reading device id: %w", err)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid device id %q: %w", line, err)
	}
	return uint32(id), nil
}

func run(cfg config.Config, deviceID uint32) error {
	log := logging.New(os.Stderr, cfg.LogLevel)
	logging.Banner(fmt.Sprintf("SLAVE %d", deviceID), version)

	masterAddr, err := net.ResolveUDPAddr("udp", cfg.BroadcastAddr)
	if err != nil {
		return fmt.Errorf("resolving master-addr: %w", err)
	}
	listenAddr := cfg.ListenAddr
	if listenAddr == cfg.BroadcastAddr {
		listenAddr = ":0"
	}
	port, err := transport.NewUDPPort(listenAddr)
	if err != nil {
		return fmt.Errorf("binding listen-addr: %w", err)
	}
	defer port.Close()

	bank := gpio.NewSimulatedBank(cfg.MaxGPIOPins)
	clipBank := gpio.NewSimulatedBank(1)
	dev := slave.NewDevice(deviceID, bank)
	dev.BindClipGPIO(clipBank)

	fragCfg := reassembly.Config{MTU: cfg.MTU, MaxReceiveBuffer: cfg.MaxReceiveBuffer, FragmentTimeoutMS: cfg.FragmentTimeoutMS}
	reassembler := reassembly.NewReassembler(fragCfg)

	log.Info().Uint32("device_id", deviceID).Str("master", cfg.BroadcastAddr).Msg("slave starting")

	announce := message.Announce{DeviceID: deviceID, Major: firmwareMajor, Minor: firmwareMinor, Patch: firmwarePatch}
	sendToMaster(port, fragCfg, message.PackSlaveToMaster(deviceID, announce), wire.PacketSlaveToMaster, masterAddr, log)

	for {
		now := time.Now().UnixMilli()

		data, _, err := port.Recv()
		switch {
		case err == nil:
			reassembler.Feed(data, now)
		case err == transport.ErrWouldBlock:
		default:
			log.Warn().Err(err).Msg("recv error")
		}

		for {
			frame, ok := reassembler.Dequeue()
			if !ok {
				break
			}
			handleFrame(dev, frame, now, port, fragCfg, masterAddr, log)
		}

		dev.Tick(now)

		time.Sleep(10 * time.Millisecond)
	}
}

func handleFrame(dev *slave.Device, frame wire.Frame, now int64, port *transport.UDPPort, fragCfg reassembly.Config, masterAddr *net.UDPAddr, log logging.Logger) {
	if frame.PacketID != wire.PacketMasterToSlave {
		return
	}
	pkt, err := message.ParsePacket(frame.PacketID, frame.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("decode failed")
		return
	}
	if !dev.Accepts(pkt.DestinationID) {
		return
	}

	for _, reply := range dev.Handle(now, pkt.Msg) {
		var payload []byte
		var packetID wire.PacketID
		if reply.ToBackend {
			payload = message.PackSlaveToBackend(dev.DeviceID, message.DeviceStatus{}, reply.Msg)
			packetID = wire.PacketSlaveToBackend
		} else {
			payload = message.PackSlaveToMaster(dev.DeviceID, reply.Msg)
			packetID = wire.PacketSlaveToMaster
		}
		sendToMaster(port, fragCfg, payload, packetID, masterAddr, log)
	}
}

func sendToMaster(port *transport.UDPPort, fragCfg reassembly.Config, payload []byte, packetID wire.PacketID, masterAddr *net.UDPAddr, log logging.Logger) {
	frames, err := reassembly.Fragment(fragCfg, packetID, payload)
	if err != nil {
		log.Warn().Err(err).Msg("fragmenting reply failed")
		return
	}
	for _, f := range frames {
		if err := port.Send(f, masterAddr); err != nil {
			log.Warn().Err(err).Msg("send failed")
		}
	}
}
