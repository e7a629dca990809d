package master

import (
	"net"

	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/wire"
)

// Outbound is one payload the caller must frame (and fragment, if it
// exceeds the configured MTU) and hand to the transport port.
type Outbound struct {
	PacketID wire.PacketID
	Payload  []byte
	Addr     *net.UDPAddr
}

// Dispatcher implements §4.8: inbound frame routing by packet_id, the
// retry policy, ping session ticking and cycle orchestration. It owns no
// socket; it only decides what must be sent and hands Outbound values back
// to the caller's main loop.
type Dispatcher struct {
	Registry *Registry
	Pending  *PendingTable
	Pings    *PingSessions
	Cycle    *Cycle

	BackendAddr   *net.UDPAddr
	BroadcastAddr *net.UDPAddr
	MaxRetries    int
}

// NewDispatcher wires a fresh registry, pending table, ping session set
// and cycle together.
func NewDispatcher(backendAddr, broadcastAddr *net.UDPAddr, pendingTimeoutMS, cycleIntervalMS int64, maxRetries int) *Dispatcher {
	return &Dispatcher{
		Registry:      NewRegistry(),
		Pending:       NewPendingTable(pendingTimeoutMS),
		Pings:         NewPingSessions(),
		Cycle:         NewCycle(cycleIntervalMS),
		BackendAddr:   backendAddr,
		BroadcastAddr: broadcastAddr,
		MaxRetries:    maxRetries,
	}
}

func (d *Dispatcher) retryTo(deviceID uint32, ackMessageID uint8, msg message.Message, nowMS int64) Outbound {
	payload := message.PackMasterToSlave(deviceID, msg)
	d.Pending.Add(deviceID, ackMessageID, payload, d.BroadcastAddr, nowMS, d.MaxRetries)
	return Outbound{PacketID: wire.PacketMasterToSlave, Payload: payload, Addr: d.BroadcastAddr}
}

// HandleBackendToMaster processes one decoded Backend2Master message.
func (d *Dispatcher) HandleBackendToMaster(msg message.Message, nowMS int64) []Outbound {
	var out []Outbound
	switch m := msg.(type) {
	case message.SlaveCfg:
		for _, e := range m.Entries {
			d.Registry.SetConfig(e.ID, SlaveConfig{
				ConductionNum: e.ConductionNum,
				ResistanceNum: e.ResistanceNum,
				ClipMode:      e.ClipMode,
				ClipStatus:    e.ClipStatus,
			}, nowMS)
		}
		out = append(out, d.toBackend(message.SlaveCfgResp{Status: 0, Entries: m.Entries}))

	case message.ModeCfg:
		d.Cycle.Mode = m.Mode
		for _, e := range d.Registry.ConfiguredAndConnected() {
			out = append(out, d.retryTo(e.DeviceID, modeCfgAckID(m.Mode), modeCfgCommand(m.Mode, e.Config), nowMS))
		}
		out = append(out, d.toBackend(message.ModeCfgResp{Status: 0, Mode: m.Mode}))

	case message.BackendRst:
		for _, e := range m.Entries {
			if entry, ok := d.Registry.Lookup(e.ID); ok && entry.Connected {
				out = append(out, d.retryTo(e.ID, message.IDRstResp, message.Rst{LockStatus: e.Lock, ClipLED: e.ClipStatus}, nowMS))
			}
		}
		out = append(out, d.toBackend(message.MasterRstResp{Status: 0, Entries: m.Entries}))

	case message.Ctrl:
		d.Cycle.RunningStatus = m.RunningStatus
		if m.RunningStatus == message.RunningReset {
			for _, e := range d.Registry.Connected() {
				out = append(out, Outbound{
					PacketID: wire.PacketMasterToSlave,
					Payload:  message.PackMasterToSlave(e.DeviceID, message.Rst{}),
					Addr:     d.BroadcastAddr,
				})
			}
			d.Cycle.Reset()
		}
		out = append(out, d.toBackend(message.CtrlResp{Status: 0, RunningStatus: m.RunningStatus}))

	case message.PingCtrl:
		entry, connected := d.Registry.Lookup(m.DestinationID)
		success := uint16(0)
		total := m.PingCount
		if connected && entry.Connected {
			d.Pings.Start(m.DestinationID, m.PingMode, m.PingCount, m.Interval, d.BroadcastAddr)
		} else {
			total = 0
		}
		out = append(out, d.toBackend(message.PingResponse{
			PingMode: m.PingMode, Total: total, Success: success, DestinationID: m.DestinationID,
		}))

	case message.DeviceListReq:
		out = append(out, d.toBackend(d.Registry.ToDeviceListResponse(nowMS, d.Pending.timeoutMS)))
	}
	return out
}

func (d *Dispatcher) toBackend(msg message.Message) Outbound {
	return Outbound{PacketID: wire.PacketMasterToBackend, Payload: message.PackMasterToBackend(msg), Addr: d.BackendAddr}
}

func modeCfgAckID(mode uint8) uint8 {
	switch mode {
	case message.ModeConduction:
		return message.IDConductionCfgResp
	case message.ModeResistance:
		return message.IDResistanceCfgResp
	default:
		return message.IDClipCfgResp
	}
}

func modeCfgCommand(mode uint8, cfg SlaveConfig) message.Message {
	switch mode {
	case message.ModeConduction:
		return message.ConductionCfg{Num: uint16(cfg.ConductionNum)}
	case message.ModeResistance:
		return message.ResistanceCfg{Num: uint16(cfg.ResistanceNum)}
	default:
		return message.ClipCfg{Mode: cfg.ClipMode, ClipPin: cfg.ClipStatus}
	}
}

// HandleSlaveToMaster updates the registry, retires matching pending
// commands and counts ping responses toward the target's ping session.
func (d *Dispatcher) HandleSlaveToMaster(deviceID uint32, msg message.Message, nowMS int64) {
	d.Registry.Observe(deviceID, nowMS)
	switch m := msg.(type) {
	case message.Announce:
		entry, _ := d.Registry.Lookup(deviceID)
		entry.Major, entry.Minor, entry.Patch = m.Major, m.Minor, m.Patch
		d.Pending.RemoveMatching(deviceID, message.IDAnnounce)
	case message.ShortIDConfirm:
		entry, _ := d.Registry.Lookup(deviceID)
		entry.ShortID = m.ShortID
		d.Pending.RemoveMatching(deviceID, message.IDShortIDConfirm)
	case message.PingRsp:
		d.Pings.RecordPong(deviceID)
	case message.ConductionCfgResp:
		d.Pending.RemoveMatching(deviceID, message.IDConductionCfgResp)
	case message.ResistanceCfgResp:
		d.Pending.RemoveMatching(deviceID, message.IDResistanceCfgResp)
	case message.ClipCfgResp:
		d.Pending.RemoveMatching(deviceID, message.IDClipCfgResp)
	case message.RstResp:
		d.Pending.RemoveMatching(deviceID, message.IDRstResp)
	}
}

// HandleSlaveToBackend marks the Slave's data as received and forwards the
// original frame payload upstream unmodified, per §4.8. cycleCompleted
// reports whether this was the last outstanding Slave for the active cycle,
// i.e. the cycle just reached Complete.
func (d *Dispatcher) HandleSlaveToBackend(deviceID uint32, rawPayload []byte, nowMS int64) (out Outbound, cycleCompleted bool) {
	d.Registry.Observe(deviceID, nowMS)
	wasComplete := d.Cycle.State == CycleComplete
	d.Cycle.MarkDataReceived(deviceID, nowMS)
	cycleCompleted = !wasComplete && d.Cycle.State == CycleComplete
	d.Pending.RemoveMatching(deviceID, message.IDConductionData)
	d.Pending.RemoveMatching(deviceID, message.IDResistanceData)
	d.Pending.RemoveMatching(deviceID, message.IDClipData)
	return Outbound{PacketID: wire.PacketSlaveToBackend, Payload: rawPayload, Addr: d.BackendAddr}, cycleCompleted
}

// TickStats reports the retry activity one Tick call produced, for metrics.
type TickStats struct {
	Retries    int
	RetryDrops int
}

// Tick drains pending retries, ping sessions and the collection cycle for
// one main-loop iteration.
func (d *Dispatcher) Tick(nowMS int64) ([]Outbound, TickStats) {
	var out []Outbound

	resends, dropped := d.Pending.Tick(nowMS)
	for _, r := range resends {
		out = append(out, Outbound{PacketID: wire.PacketMasterToSlave, Payload: r.CommandBytes, Addr: r.Addr})
	}
	stats := TickStats{Retries: len(resends), RetryDrops: dropped}

	for _, p := range d.Pings.Tick(nowMS) {
		payload := message.PackMasterToSlave(p.TargetID, message.PingReq{Seq: p.Seq, Timestamp: uint32(nowMS)})
		out = append(out, Outbound{PacketID: wire.PacketMasterToSlave, Payload: payload, Addr: p.Addr})
	}

	slaves := d.Registry.ConfiguredAndConnected()
	sync := d.Cycle.Tick(nowMS, slaves)
	if sync.ShouldSync {
		for _, id := range sync.Targets {
			out = append(out, Outbound{
				PacketID: wire.PacketMasterToSlave,
				Payload:  message.PackMasterToSlave(id, message.Sync{Mode: d.Cycle.Mode, Timestamp: uint32(nowMS)}),
				Addr:     d.BroadcastAddr,
			})
		}
	}
	for _, id := range d.Cycle.PendingReads() {
		out = append(out, d.retryTo(id, readAckID(d.Cycle.Mode), readCommand(d.Cycle.Mode), nowMS))
	}

	return out, stats
}

func readAckID(mode uint8) uint8 {
	switch mode {
	case message.ModeConduction:
		return message.IDConductionData
	case message.ModeResistance:
		return message.IDResistanceData
	default:
		return message.IDClipData
	}
}

func readCommand(mode uint8) message.Message {
	switch mode {
	case message.ModeConduction:
		return message.ReadConductionData{}
	case message.ModeResistance:
		return message.ReadResistanceData{}
	default:
		return message.ReadClipData{}
	}
}
