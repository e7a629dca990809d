package message

import "github.com/whts/whts-go/internal/wire"

// ConductionCfgResp echoes a ConductionCfg with a leading status byte.
type ConductionCfgResp struct {
	Status   uint8
	TimeSlot uint8
	Interval uint8
	Total    uint16
	Start    uint16
	Num      uint16
}

func (m ConductionCfgResp) MessageID() uint8 { return IDConductionCfgResp }

func (m ConductionCfgResp) Serialize() []byte {
	w := wire.NewWriter(9)
	w.WriteU8(m.Status)
	w.WriteU8(m.TimeSlot)
	w.WriteU8(m.Interval)
	w.WriteU16(m.Total)
	w.WriteU16(m.Start)
	w.WriteU16(m.Num)
	return w.Bytes()
}

func parseConductionCfgResp(body []byte) (ConductionCfgResp, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	ts, ok2 := r.ReadU8()
	iv, ok3 := r.ReadU8()
	total, ok4 := r.ReadU16()
	start, ok5 := r.ReadU16()
	num, ok6 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return ConductionCfgResp{}, &InsufficientBytesError{Expected: 9, Actual: len(body)}
	}
	return ConductionCfgResp{Status: status, TimeSlot: ts, Interval: iv, Total: total, Start: start, Num: num}, nil
}

// ResistanceCfgResp has the same wire shape as ConductionCfgResp.
type ResistanceCfgResp struct {
	Status   uint8
	TimeSlot uint8
	Interval uint8
	Total    uint16
	Start    uint16
	Num      uint16
}

func (m ResistanceCfgResp) MessageID() uint8 { return IDResistanceCfgResp }

func (m ResistanceCfgResp) Serialize() []byte {
	return ConductionCfgResp(m).Serialize()
}

func parseResistanceCfgResp(body []byte) (ResistanceCfgResp, error) {
	c, err := parseConductionCfgResp(body)
	return ResistanceCfgResp(c), err
}

// ClipCfgResp echoes a ClipCfg with a leading status byte.
type ClipCfgResp struct {
	Status   uint8
	Interval uint8
	Mode     uint8
	ClipPin  uint16
}

func (m ClipCfgResp) MessageID() uint8 { return IDClipCfgResp }

func (m ClipCfgResp) Serialize() []byte {
	w := wire.NewWriter(5)
	w.WriteU8(m.Status)
	w.WriteU8(m.Interval)
	w.WriteU8(m.Mode)
	w.WriteU16(m.ClipPin)
	return w.Bytes()
}

func parseClipCfgResp(body []byte) (ClipCfgResp, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	iv, ok2 := r.ReadU8()
	mode, ok3 := r.ReadU8()
	pin, ok4 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return ClipCfgResp{}, &InsufficientBytesError{Expected: 5, Actual: len(body)}
	}
	return ClipCfgResp{Status: status, Interval: iv, Mode: mode, ClipPin: pin}, nil
}

// RstResp echoes a Rst with a leading status byte.
type RstResp struct {
	Status     uint8
	LockStatus uint8
	ClipLED    uint16
}

func (m RstResp) MessageID() uint8 { return IDRstResp }

func (m RstResp) Serialize() []byte {
	w := wire.NewWriter(4)
	w.WriteU8(m.Status)
	w.WriteU8(m.LockStatus)
	w.WriteU16(m.ClipLED)
	return w.Bytes()
}

func parseRstResp(body []byte) (RstResp, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	lock, ok2 := r.ReadU8()
	led, ok3 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 {
		return RstResp{}, &InsufficientBytesError{Expected: 4, Actual: len(body)}
	}
	return RstResp{Status: status, LockStatus: lock, ClipLED: led}, nil
}

// PingRsp answers a PingReq with the same sequence and a fresh timestamp.
type PingRsp struct {
	Seq       uint16
	Timestamp uint32
}

func (m PingRsp) MessageID() uint8 { return IDPingRsp }

func (m PingRsp) Serialize() []byte {
	w := wire.NewWriter(6)
	w.WriteU16(m.Seq)
	w.WriteU32(m.Timestamp)
	return w.Bytes()
}

func parsePingRsp(body []byte) (PingRsp, error) {
	r := wire.NewReader(body)
	seq, ok1 := r.ReadU16()
	ts, ok2 := r.ReadU32()
	if !ok1 || !ok2 {
		return PingRsp{}, &InsufficientBytesError{Expected: 6, Actual: len(body)}
	}
	return PingRsp{Seq: seq, Timestamp: ts}, nil
}

// Announce is a Slave's unsolicited self-introduction, carrying its full
// 32-bit device id and firmware version.
type Announce struct {
	DeviceID uint32
	Major    uint8
	Minor    uint8
	Patch    uint16
}

func (m Announce) MessageID() uint8 { return IDAnnounce }

func (m Announce) Serialize() []byte {
	w := wire.NewWriter(8)
	w.WriteU32(m.DeviceID)
	w.WriteU8(m.Major)
	w.WriteU8(m.Minor)
	w.WriteU16(m.Patch)
	return w.Bytes()
}

func parseAnnounce(body []byte) (Announce, error) {
	r := wire.NewReader(body)
	id, ok1 := r.ReadU32()
	major, ok2 := r.ReadU8()
	minor, ok3 := r.ReadU8()
	patch, ok4 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Announce{}, &InsufficientBytesError{Expected: 8, Actual: len(body)}
	}
	return Announce{DeviceID: id, Major: major, Minor: minor, Patch: patch}, nil
}

// ShortIDConfirm acknowledges a ShortIDAssign.
type ShortIDConfirm struct {
	Status  uint8
	ShortID uint8
}

func (m ShortIDConfirm) MessageID() uint8 { return IDShortIDConfirm }

func (m ShortIDConfirm) Serialize() []byte {
	return []byte{m.Status, m.ShortID}
}

func parseShortIDConfirm(body []byte) (ShortIDConfirm, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	id, ok2 := r.ReadU8()
	if !ok1 || !ok2 {
		return ShortIDConfirm{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	return ShortIDConfirm{Status: status, ShortID: id}, nil
}

// NewSlave2Master decodes a Slave2Master message body given its message id.
func NewSlave2Master(id uint8, body []byte) (Message, error) {
	switch id {
	case IDConductionCfgResp:
		return parseConductionCfgResp(body)
	case IDResistanceCfgResp:
		return parseResistanceCfgResp(body)
	case IDClipCfgResp:
		return parseClipCfgResp(body)
	case IDRstResp:
		return parseRstResp(body)
	case IDPingRsp:
		return parsePingRsp(body)
	case IDAnnounce:
		return parseAnnounce(body)
	case IDShortIDConfirm:
		return parseShortIDConfirm(body)
	default:
		return nil, &UnknownMessageIDError{PacketID: wire.PacketSlaveToMaster, MessageID: id}
	}
}
