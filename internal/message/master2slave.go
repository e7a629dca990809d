package message

import "github.com/whts/whts-go/internal/wire"

// Sync starts a measurement cycle on the addressed Slave(s).
type Sync struct {
	Mode      uint8
	Timestamp uint32
}

func (m Sync) MessageID() uint8 { return IDSync }

func (m Sync) Serialize() []byte {
	w := wire.NewWriter(5)
	w.WriteU8(m.Mode)
	w.WriteU32(m.Timestamp)
	return w.Bytes()
}

func parseSync(body []byte) (Sync, error) {
	r := wire.NewReader(body)
	mode, ok1 := r.ReadU8()
	ts, ok2 := r.ReadU32()
	if !ok1 || !ok2 {
		return Sync{}, &InsufficientBytesError{Expected: 5, Actual: len(body)}
	}
	return Sync{Mode: mode, Timestamp: ts}, nil
}

// ConductionCfg configures a conduction-mode measurement window.
type ConductionCfg struct {
	TimeSlot uint8
	Interval uint8
	Total    uint16
	Start    uint16
	Num      uint16
}

func (m ConductionCfg) MessageID() uint8 { return IDConductionCfg }

func (m ConductionCfg) Serialize() []byte {
	w := wire.NewWriter(8)
	w.WriteU8(m.TimeSlot)
	w.WriteU8(m.Interval)
	w.WriteU16(m.Total)
	w.WriteU16(m.Start)
	w.WriteU16(m.Num)
	return w.Bytes()
}

func parseConductionCfg(body []byte) (ConductionCfg, error) {
	r := wire.NewReader(body)
	ts, ok1 := r.ReadU8()
	iv, ok2 := r.ReadU8()
	total, ok3 := r.ReadU16()
	start, ok4 := r.ReadU16()
	num, ok5 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return ConductionCfg{}, &InsufficientBytesError{Expected: 8, Actual: len(body)}
	}
	return ConductionCfg{TimeSlot: ts, Interval: iv, Total: total, Start: start, Num: num}, nil
}

// ResistanceCfg has the same wire shape as ConductionCfg (§3).
type ResistanceCfg struct {
	TimeSlot uint8
	Interval uint8
	Total    uint16
	Start    uint16
	Num      uint16
}

func (m ResistanceCfg) MessageID() uint8 { return IDResistanceCfg }

func (m ResistanceCfg) Serialize() []byte {
	return ConductionCfg(m).Serialize()
}

func parseResistanceCfg(body []byte) (ResistanceCfg, error) {
	c, err := parseConductionCfg(body)
	return ResistanceCfg(c), err
}

// ClipCfg configures clip-mode measurement.
type ClipCfg struct {
	Interval uint8
	Mode     uint8
	ClipPin  uint16
}

func (m ClipCfg) MessageID() uint8 { return IDClipCfg }

func (m ClipCfg) Serialize() []byte {
	w := wire.NewWriter(4)
	w.WriteU8(m.Interval)
	w.WriteU8(m.Mode)
	w.WriteU16(m.ClipPin)
	return w.Bytes()
}

func parseClipCfg(body []byte) (ClipCfg, error) {
	r := wire.NewReader(body)
	iv, ok1 := r.ReadU8()
	mode, ok2 := r.ReadU8()
	pin, ok3 := r.ReadU16()
	if !ok1 || !ok2 || !ok3 {
		return ClipCfg{}, &InsufficientBytesError{Expected: 4, Actual: len(body)}
	}
	return ClipCfg{Interval: iv, Mode: mode, ClipPin: pin}, nil
}

// ReadConductionData requests the Slave's accumulated conduction matrix.
type ReadConductionData struct{ Reserve uint8 }

func (m ReadConductionData) MessageID() uint8   { return IDReadConductionData }
func (m ReadConductionData) Serialize() []byte  { return []byte{m.Reserve} }

func parseReadConductionData(body []byte) (ReadConductionData, error) {
	return parseReadX[ReadConductionData](body, func(r uint8) ReadConductionData { return ReadConductionData{Reserve: r} })
}

// ReadResistanceData requests the Slave's accumulated resistance matrix.
type ReadResistanceData struct{ Reserve uint8 }

func (m ReadResistanceData) MessageID() uint8  { return IDReadResistanceData }
func (m ReadResistanceData) Serialize() []byte { return []byte{m.Reserve} }

func parseReadResistanceData(body []byte) (ReadResistanceData, error) {
	return parseReadX[ReadResistanceData](body, func(r uint8) ReadResistanceData { return ReadResistanceData{Reserve: r} })
}

// ReadClipData requests the Slave's clip reading.
type ReadClipData struct{ Reserve uint8 }

func (m ReadClipData) MessageID() uint8  { return IDReadClipData }
func (m ReadClipData) Serialize() []byte { return []byte{m.Reserve} }

func parseReadClipData(body []byte) (ReadClipData, error) {
	return parseReadX[ReadClipData](body, func(r uint8) ReadClipData { return ReadClipData{Reserve: r} })
}

func parseReadX[T any](body []byte, build func(uint8) T) (T, error) {
	var zero T
	r := wire.NewReader(body)
	reserve, ok := r.ReadU8()
	if !ok {
		return zero, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	return build(reserve), nil
}

// Rst resets volatile Slave state while preserving its configuration.
type Rst struct {
	LockStatus uint8
	ClipLED    uint16
}

func (m Rst) MessageID() uint8 { return IDRst }

func (m Rst) Serialize() []byte {
	w := wire.NewWriter(3)
	w.WriteU8(m.LockStatus)
	w.WriteU16(m.ClipLED)
	return w.Bytes()
}

func parseRst(body []byte) (Rst, error) {
	r := wire.NewReader(body)
	lock, ok1 := r.ReadU8()
	led, ok2 := r.ReadU16()
	if !ok1 || !ok2 {
		return Rst{}, &InsufficientBytesError{Expected: 3, Actual: len(body)}
	}
	return Rst{LockStatus: lock, ClipLED: led}, nil
}

// PingReq is a liveness probe.
type PingReq struct {
	Seq       uint16
	Timestamp uint32
}

func (m PingReq) MessageID() uint8 { return IDPingReq }

func (m PingReq) Serialize() []byte {
	w := wire.NewWriter(6)
	w.WriteU16(m.Seq)
	w.WriteU32(m.Timestamp)
	return w.Bytes()
}

func parsePingReq(body []byte) (PingReq, error) {
	r := wire.NewReader(body)
	seq, ok1 := r.ReadU16()
	ts, ok2 := r.ReadU32()
	if !ok1 || !ok2 {
		return PingReq{}, &InsufficientBytesError{Expected: 6, Actual: len(body)}
	}
	return PingReq{Seq: seq, Timestamp: ts}, nil
}

// ShortIDAssign enrolls a Slave with a compact one-byte identifier.
type ShortIDAssign struct{ ShortID uint8 }

func (m ShortIDAssign) MessageID() uint8  { return IDShortIDAssign }
func (m ShortIDAssign) Serialize() []byte { return []byte{m.ShortID} }

func parseShortIDAssign(body []byte) (ShortIDAssign, error) {
	r := wire.NewReader(body)
	id, ok := r.ReadU8()
	if !ok {
		return ShortIDAssign{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	return ShortIDAssign{ShortID: id}, nil
}

// NewMaster2Slave decodes a Master2Slave message body given its message id.
// It returns (nil, UnknownMessageIDError) for an unrecognized id.
func NewMaster2Slave(id uint8, body []byte) (Message, error) {
	switch id {
	case IDSync:
		return parseSync(body)
	case IDConductionCfg:
		return parseConductionCfg(body)
	case IDResistanceCfg:
		return parseResistanceCfg(body)
	case IDClipCfg:
		return parseClipCfg(body)
	case IDReadConductionData:
		return parseReadConductionData(body)
	case IDReadResistanceData:
		return parseReadResistanceData(body)
	case IDReadClipData:
		return parseReadClipData(body)
	case IDRst:
		return parseRst(body)
	case IDPingReq:
		return parsePingReq(body)
	case IDShortIDAssign:
		return parseShortIDAssign(body)
	default:
		return nil, &UnknownMessageIDError{PacketID: wire.PacketMasterToSlave, MessageID: id}
	}
}
