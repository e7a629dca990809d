package wire

import (
	"errors"
	"fmt"
)

// PacketID identifies which link and direction a frame's payload belongs
// to. Message IDs are only meaningful once paired with a PacketID (§4.3).
type PacketID uint8

const (
	PacketMasterToSlave   PacketID = 0x00
	PacketSlaveToMaster   PacketID = 0x01
	PacketBackendToMaster PacketID = 0x02
	PacketMasterToBackend PacketID = 0x03
	PacketSlaveToBackend  PacketID = 0x04
)

func (p PacketID) String() string {
	switch p {
	case PacketMasterToSlave:
		return "MasterToSlave"
	case PacketSlaveToMaster:
		return "SlaveToMaster"
	case PacketBackendToMaster:
		return "BackendToMaster"
	case PacketMasterToBackend:
		return "MasterToBackend"
	case PacketSlaveToBackend:
		return "SlaveToBackend"
	default:
		return fmt.Sprintf("PacketID(0x%02X)", uint8(p))
	}
}

const (
	delimiter1 = 0xAB
	delimiter2 = 0xCD
	// frameHeaderLen is the fixed 7-byte header preceding every payload.
	frameHeaderLen = 7
)

// BroadcastID is the destination_id that targets every Slave in a
// MasterToSlave payload.
const BroadcastID uint32 = 0xFFFFFFFF

// Framing errors, per §7 FramingError taxonomy.
var (
	ErrInvalidDelimiter = errors.New("wire: invalid frame delimiter")
	ErrTruncated        = errors.New("wire: truncated frame")
	ErrOversizePayload  = errors.New("wire: payload exceeds uint16 length")
)

// Frame is the 7-byte-header wire envelope described in §3/§4.2.
type Frame struct {
	PacketID          PacketID
	FragmentSequence  uint8
	MoreFragmentsFlag uint8
	Payload           []byte
}

// IsComplete reports whether this frame alone carries a whole message,
// i.e. it is not a non-terminal fragment and is fragment 0.
func (f Frame) IsComplete() bool {
	return f.MoreFragmentsFlag == 0 && f.FragmentSequence == 0
}

// Serialize writes the frame header followed by the payload.
func (f Frame) Serialize() ([]byte, error) {
	if len(f.Payload) > 0xFFFF {
		return nil, ErrOversizePayload
	}
	w := NewWriter(frameHeaderLen + len(f.Payload))
	w.WriteU8(delimiter1)
	w.WriteU8(delimiter2)
	w.WriteU8(uint8(f.PacketID))
	w.WriteU8(f.FragmentSequence)
	w.WriteU8(f.MoreFragmentsFlag)
	w.WriteU16(uint16(len(f.Payload)))
	w.WriteBytes(f.Payload)
	return w.Bytes(), nil
}

// ParseFrame parses a single complete frame from data. data must contain
// exactly one frame's worth of bytes (header + declared payload length);
// trailing bytes beyond that are not an error (callers wishing to detect
// sticky-packet boundaries use the reassembler instead, which bounds the
// slice itself before calling ParseFrame).
func ParseFrame(data []byte) (Frame, error) {
	if len(data) < 2 {
		return Frame{}, ErrTruncated
	}
	if data[0] != delimiter1 || data[1] != delimiter2 {
		return Frame{}, ErrInvalidDelimiter
	}
	if len(data) < frameHeaderLen {
		return Frame{}, ErrTruncated
	}
	r := NewReader(data[2:])
	packetID, _ := r.ReadU8()
	fragSeq, _ := r.ReadU8()
	more, _ := r.ReadU8()
	length, _ := r.ReadU16()
	if len(data) < frameHeaderLen+int(length) {
		return Frame{}, ErrTruncated
	}
	payload := make([]byte, length)
	copy(payload, data[frameHeaderLen:frameHeaderLen+int(length)])
	return Frame{
		PacketID:          PacketID(packetID),
		FragmentSequence:  fragSeq,
		MoreFragmentsFlag: more,
		Payload:           payload,
	}, nil
}
