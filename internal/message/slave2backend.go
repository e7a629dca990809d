package message

import "github.com/whts/whts-go/internal/wire"

// ConductionData carries a packed conduction measurement vector upstream.
type ConductionData struct {
	Data []byte
}

func (m ConductionData) MessageID() uint8 { return IDConductionData }

func (m ConductionData) Serialize() []byte {
	w := wire.NewWriter(2 + len(m.Data))
	w.WriteU16(uint16(len(m.Data)))
	w.WriteBytes(m.Data)
	return w.Bytes()
}

func parseConductionData(body []byte) (ConductionData, error) {
	data, err := parseLengthPrefixed(body)
	if err != nil {
		return ConductionData{}, err
	}
	return ConductionData{Data: data}, nil
}

// ResistanceData carries a packed resistance measurement vector upstream.
type ResistanceData struct {
	Data []byte
}

func (m ResistanceData) MessageID() uint8 { return IDResistanceData }

func (m ResistanceData) Serialize() []byte {
	w := wire.NewWriter(2 + len(m.Data))
	w.WriteU16(uint16(len(m.Data)))
	w.WriteBytes(m.Data)
	return w.Bytes()
}

func parseResistanceData(body []byte) (ResistanceData, error) {
	data, err := parseLengthPrefixed(body)
	if err != nil {
		return ResistanceData{}, err
	}
	return ResistanceData{Data: data}, nil
}

// ClipData carries a single clip reading upstream.
type ClipData struct {
	Value uint16
}

func (m ClipData) MessageID() uint8 { return IDClipData }

func (m ClipData) Serialize() []byte {
	w := wire.NewWriter(2)
	w.WriteU16(m.Value)
	return w.Bytes()
}

func parseClipData(body []byte) (ClipData, error) {
	r := wire.NewReader(body)
	v, ok := r.ReadU16()
	if !ok {
		return ClipData{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	return ClipData{Value: v}, nil
}

// parseLengthPrefixed reads a u16 length then that many bytes, enforcing
// §4.3's "declared_length + header_bytes <= body.len()" check.
func parseLengthPrefixed(body []byte) ([]byte, error) {
	r := wire.NewReader(body)
	length, ok := r.ReadU16()
	if !ok {
		return nil, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	if int(length) > len(body)-2 {
		return nil, ErrDeclaredLengthExceedsBuffer
	}
	data, _ := r.ReadBytes(int(length))
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// NewSlave2Backend decodes a Slave2Backend message body given its message id.
func NewSlave2Backend(id uint8, body []byte) (Message, error) {
	switch id {
	case IDConductionData:
		return parseConductionData(body)
	case IDResistanceData:
		return parseResistanceData(body)
	case IDClipData:
		return parseClipData(body)
	default:
		return nil, &UnknownMessageIDError{PacketID: wire.PacketSlaveToBackend, MessageID: id}
	}
}
