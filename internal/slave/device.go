// Package slave implements the Slave-side device state machine described
// in §4.6: a single device id, a bound Collector for conduction/resistance
// scanning, and the reply logic for every Master2Slave command.
package slave

import (
	"github.com/whts/whts-go/internal/collector"
	"github.com/whts/whts-go/internal/gpio"
	"github.com/whts/whts-go/internal/message"
)

// State is the SlaveDeviceSM's lifecycle.
type State int

const (
	StateIdle State = iota
	StateConfigured
	StateCollecting
	StateCollectionComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConfigured:
		return "Configured"
	case StateCollecting:
		return "Collecting"
	case StateCollectionComplete:
		return "CollectionComplete"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Reply is one message a Device wants sent back, already decided whether
// it belongs on the Slave2Master or Slave2Backend wire (§4.6's routing
// rule: message ids in the Slave-to-Backend space go to the Backend with
// DeviceStatus attached, everything else goes to the Master).
type Reply struct {
	ToBackend bool
	Msg       message.Message
}

// Device is one Slave's protocol state machine.
type Device struct {
	DeviceID uint32

	state  State
	mode   uint8 // message.ModeConduction / ModeResistance / ModeClip
	status uint8

	collector *collector.Collector

	conductionCfg message.ConductionCfg
	resistanceCfg message.ResistanceCfg
	clipCfg       message.ClipCfg
	haveClipCfg   bool

	lockStatus uint8
	clipLED    uint16

	deviceStatus message.DeviceStatus
	clipBank     gpio.Bank // single-pin read source for clip mode
}

// NewDevice returns an Idle Device identified by deviceID, with its
// Collector bound to bank for conduction/resistance scanning.
func NewDevice(deviceID uint32, bank gpio.Bank) *Device {
	c := collector.NewCollector()
	c.BindGPIO(bank)
	return &Device{DeviceID: deviceID, state: StateIdle, collector: c}
}

// BindClipGPIO attaches the single-pin source used for clip-mode reads.
func (d *Device) BindClipGPIO(bank gpio.Bank) {
	d.clipBank = bank
}

func (d *Device) State() State { return d.state }

// Accepts reports whether an inbound MasterToSlave frame addressed to
// destinationID should be processed by this device, per §4.6's filtering
// rule.
func (d *Device) Accepts(destinationID uint32) bool {
	return destinationID == d.DeviceID || destinationID == 0xFFFFFFFF
}

// Handle dispatches one decoded Master2Slave message and returns any
// replies to send. now is the caller's millisecond clock.
func (d *Device) Handle(now int64, msg message.Message) []Reply {
	switch m := msg.(type) {
	case message.Sync:
		return d.handleSync(now, m)
	case message.ConductionCfg:
		return d.handleConductionCfg(m)
	case message.ResistanceCfg:
		return d.handleResistanceCfg(m)
	case message.ClipCfg:
		return d.handleClipCfg(m)
	case message.ReadConductionData:
		return d.handleReadData(now, message.IDConductionData)
	case message.ReadResistanceData:
		return d.handleReadData(now, message.IDResistanceData)
	case message.ReadClipData:
		return d.handleReadClipData()
	case message.Rst:
		return d.handleRst(m)
	case message.PingReq:
		return d.handlePingReq(now, m)
	case message.ShortIDAssign:
		return d.handleShortIDAssign(m)
	default:
		return nil
	}
}

// Tick advances any in-progress Collector cycle. Call once per main-loop
// iteration regardless of whether a frame arrived.
func (d *Device) Tick(now int64) {
	if d.state != StateCollecting {
		return
	}
	_ = d.collector.ProcessCollection(now)
	if d.collector.State() == collector.StateCompleted {
		d.state = StateCollectionComplete
	} else if d.collector.State() == collector.StateError {
		d.state = StateError
	}
}

func (d *Device) handleSync(now int64, m message.Sync) []Reply {
	if d.state != StateConfigured && d.state != StateCollectionComplete {
		return nil
	}
	d.mode = m.Mode
	if err := d.collector.Start(); err != nil {
		d.state = StateError
		d.status = 1
		return nil
	}
	d.state = StateCollecting
	return nil
}

func (d *Device) handleConductionCfg(m message.ConductionCfg) []Reply {
	status := uint8(0)
	err := d.collector.Configure(collector.Config{
		Num:               int(m.Num),
		StartDetectionNum: int(m.Start),
		TotalDetectionNum: int(m.Total),
		IntervalMS:        int64(m.Interval),
	})
	if err != nil {
		status = 1
		d.state = StateError
	} else {
		d.conductionCfg = m
		d.mode = message.ModeConduction
		if d.state != StateCollecting {
			d.state = StateConfigured
		}
	}
	return []Reply{{Msg: message.ConductionCfgResp{
		Status: status, TimeSlot: m.TimeSlot, Interval: m.Interval,
		Total: m.Total, Start: m.Start, Num: m.Num,
	}}}
}

func (d *Device) handleResistanceCfg(m message.ResistanceCfg) []Reply {
	status := uint8(0)
	err := d.collector.Configure(collector.Config{
		Num:               int(m.Num),
		StartDetectionNum: int(m.Start),
		TotalDetectionNum: int(m.Total),
		IntervalMS:        int64(m.Interval),
	})
	if err != nil {
		status = 1
		d.state = StateError
	} else {
		d.resistanceCfg = m
		d.mode = message.ModeResistance
		if d.state != StateCollecting {
			d.state = StateConfigured
		}
	}
	return []Reply{{Msg: message.ResistanceCfgResp{
		Status: status, TimeSlot: m.TimeSlot, Interval: m.Interval,
		Total: m.Total, Start: m.Start, Num: m.Num,
	}}}
}

func (d *Device) handleClipCfg(m message.ClipCfg) []Reply {
	d.clipCfg = m
	d.haveClipCfg = true
	d.mode = message.ModeClip
	if d.state != StateCollecting {
		d.state = StateConfigured
	}
	return []Reply{{Msg: message.ClipCfgResp{
		Status: 0, Interval: m.Interval, Mode: m.Mode, ClipPin: m.ClipPin,
	}}}
}

// handleReadData force-completes the Collector if it is still Collecting,
// then replies with the packed matrix. kind distinguishes the Slave2Backend
// message id to emit (conduction vs resistance share the wire shape but not
// the id).
func (d *Device) handleReadData(_ int64, kind uint8) []Reply {
	if d.state == StateCollecting {
		if err := d.collector.ForceComplete(); err != nil {
			d.state = StateError
		} else if d.collector.State() == collector.StateCompleted {
			d.state = StateCollectionComplete
		} else if d.collector.State() == collector.StateError {
			d.state = StateError
		}
	}
	data := d.collector.Compress()
	if d.state == StateCollectionComplete || d.state == StateConfigured {
		d.state = StateCollectionComplete
	}
	var msg message.Message
	if kind == message.IDConductionData {
		msg = message.ConductionData{Data: data}
	} else {
		msg = message.ResistanceData{Data: data}
	}
	return []Reply{{ToBackend: true, Msg: msg}}
}

func (d *Device) handleReadClipData() []Reply {
	value := uint16(0)
	if d.clipBank != nil && d.haveClipCfg {
		high, err := d.clipBank.Read(int(d.clipCfg.ClipPin))
		if err == nil && high {
			value = 1
		}
	}
	return []Reply{{ToBackend: true, Msg: message.ClipData{Value: value}}}
}

func (d *Device) handleRst(m message.Rst) []Reply {
	d.lockStatus = m.LockStatus
	d.clipLED = m.ClipLED
	if d.state != StateIdle {
		d.state = StateConfigured
	}
	return []Reply{{Msg: message.RstResp{Status: 0, LockStatus: m.LockStatus, ClipLED: m.ClipLED}}}
}

func (d *Device) handlePingReq(now int64, m message.PingReq) []Reply {
	return []Reply{{Msg: message.PingRsp{Seq: m.Seq, Timestamp: uint32(now)}}}
}

func (d *Device) handleShortIDAssign(m message.ShortIDAssign) []Reply {
	return []Reply{{Msg: message.ShortIDConfirm{Status: 0, ShortID: m.ShortID}}}
}
