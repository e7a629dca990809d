package message

import "github.com/whts/whts-go/internal/wire"

// SlaveCfgEntry is one per-Slave configuration row inside a SlaveCfg.
type SlaveCfgEntry struct {
	ID             uint32
	ConductionNum  uint8
	ResistanceNum  uint8
	ClipMode       uint8
	ClipStatus     uint16
}

// SlaveCfg registers Slaves and their per-mode measurement parameters.
type SlaveCfg struct {
	Entries []SlaveCfgEntry
}

func (m SlaveCfg) MessageID() uint8 { return IDSlaveCfg }

func (m SlaveCfg) Serialize() []byte {
	w := wire.NewWriter(1 + len(m.Entries)*9)
	w.WriteU8(uint8(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU32(e.ID)
		w.WriteU8(e.ConductionNum)
		w.WriteU8(e.ResistanceNum)
		w.WriteU8(e.ClipMode)
		w.WriteU16(e.ClipStatus)
	}
	return w.Bytes()
}

func parseSlaveCfg(body []byte) (SlaveCfg, error) {
	r := wire.NewReader(body)
	n, ok := r.ReadU8()
	if !ok {
		return SlaveCfg{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	entries := make([]SlaveCfgEntry, 0, n)
	for i := 0; i < int(n); i++ {
		id, ok1 := r.ReadU32()
		cond, ok2 := r.ReadU8()
		res, ok3 := r.ReadU8()
		clipMode, ok4 := r.ReadU8()
		clipStatus, ok5 := r.ReadU16()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return SlaveCfg{}, &InsufficientBytesError{Expected: 1 + (i+1)*9, Actual: len(body)}
		}
		entries = append(entries, SlaveCfgEntry{ID: id, ConductionNum: cond, ResistanceNum: res, ClipMode: clipMode, ClipStatus: clipStatus})
	}
	return SlaveCfg{Entries: entries}, nil
}

// ModeCfg selects the measurement mode for the next cycle.
type ModeCfg struct{ Mode uint8 }

func (m ModeCfg) MessageID() uint8  { return IDModeCfg }
func (m ModeCfg) Serialize() []byte { return []byte{m.Mode} }

func parseModeCfg(body []byte) (ModeCfg, error) {
	r := wire.NewReader(body)
	mode, ok := r.ReadU8()
	if !ok {
		return ModeCfg{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	return ModeCfg{Mode: mode}, nil
}

// BackendRstEntry is one per-Slave reset target inside a Rst.
type BackendRstEntry struct {
	ID         uint32
	Lock       uint8
	ClipStatus uint16
}

// Rst resets the targeted Slaves' lock/clip state.
type BackendRst struct {
	Entries []BackendRstEntry
}

func (m BackendRst) MessageID() uint8 { return IDBackendRst }

func (m BackendRst) Serialize() []byte {
	w := wire.NewWriter(1 + len(m.Entries)*7)
	w.WriteU8(uint8(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU32(e.ID)
		w.WriteU8(e.Lock)
		w.WriteU16(e.ClipStatus)
	}
	return w.Bytes()
}

func parseBackendRst(body []byte) (BackendRst, error) {
	r := wire.NewReader(body)
	n, ok := r.ReadU8()
	if !ok {
		return BackendRst{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	entries := make([]BackendRstEntry, 0, n)
	for i := 0; i < int(n); i++ {
		id, ok1 := r.ReadU32()
		lock, ok2 := r.ReadU8()
		clipStatus, ok3 := r.ReadU16()
		if !ok1 || !ok2 || !ok3 {
			return BackendRst{}, &InsufficientBytesError{Expected: 1 + (i+1)*7, Actual: len(body)}
		}
		entries = append(entries, BackendRstEntry{ID: id, Lock: lock, ClipStatus: clipStatus})
	}
	return BackendRst{Entries: entries}, nil
}

// Ctrl sets the Master's running status (stop/run/reset).
type Ctrl struct{ RunningStatus uint8 }

func (m Ctrl) MessageID() uint8  { return IDCtrl }
func (m Ctrl) Serialize() []byte { return []byte{m.RunningStatus} }

func parseCtrl(body []byte) (Ctrl, error) {
	r := wire.NewReader(body)
	rs, ok := r.ReadU8()
	if !ok {
		return Ctrl{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	return Ctrl{RunningStatus: rs}, nil
}

// PingCtrl starts a ping session targeting one device.
type PingCtrl struct {
	PingMode      uint8
	PingCount     uint16
	Interval      uint16
	DestinationID uint32
}

func (m PingCtrl) MessageID() uint8 { return IDPingCtrl }

func (m PingCtrl) Serialize() []byte {
	w := wire.NewWriter(9)
	w.WriteU8(m.PingMode)
	w.WriteU16(m.PingCount)
	w.WriteU16(m.Interval)
	w.WriteU32(m.DestinationID)
	return w.Bytes()
}

func parsePingCtrl(body []byte) (PingCtrl, error) {
	r := wire.NewReader(body)
	mode, ok1 := r.ReadU8()
	count, ok2 := r.ReadU16()
	interval, ok3 := r.ReadU16()
	dest, ok4 := r.ReadU32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return PingCtrl{}, &InsufficientBytesError{Expected: 9, Actual: len(body)}
	}
	return PingCtrl{PingMode: mode, PingCount: count, Interval: interval, DestinationID: dest}, nil
}

// DeviceListReq asks the Master to enumerate its device registry.
type DeviceListReq struct{ Reserve uint8 }

func (m DeviceListReq) MessageID() uint8  { return IDDeviceListReq }
func (m DeviceListReq) Serialize() []byte { return []byte{m.Reserve} }

func parseDeviceListReq(body []byte) (DeviceListReq, error) {
	r := wire.NewReader(body)
	reserve, ok := r.ReadU8()
	if !ok {
		return DeviceListReq{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	return DeviceListReq{Reserve: reserve}, nil
}

// NewBackend2Master decodes a Backend2Master message body given its id.
func NewBackend2Master(id uint8, body []byte) (Message, error) {
	switch id {
	case IDSlaveCfg:
		return parseSlaveCfg(body)
	case IDModeCfg:
		return parseModeCfg(body)
	case IDBackendRst:
		return parseBackendRst(body)
	case IDCtrl:
		return parseCtrl(body)
	case IDPingCtrl:
		return parsePingCtrl(body)
	case IDDeviceListReq:
		return parseDeviceListReq(body)
	default:
		return nil, &UnknownMessageIDError{PacketID: wire.PacketBackendToMaster, MessageID: id}
	}
}
