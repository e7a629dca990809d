package message

import "github.com/whts/whts-go/internal/wire"

// Packet is a decoded frame payload: the routing prefix plus the typed
// message it carries (§3). Not every direction uses every field.
type Packet struct {
	PacketID      wire.PacketID
	DestinationID uint32 // MasterToSlave only
	SlaveID       uint32 // SlaveToMaster, SlaveToBackend
	DeviceStatus  DeviceStatus
	HasStatus     bool // true for SlaveToBackend
	Msg           Message
}

// PackMasterToSlave prepends message_id and destination_id to a message body.
func PackMasterToSlave(destinationID uint32, msg Message) []byte {
	body := msg.Serialize()
	w := wire.NewWriter(5 + len(body))
	w.WriteU8(msg.MessageID())
	w.WriteU32(destinationID)
	w.WriteBytes(body)
	return w.Bytes()
}

// PackSlaveToMaster prepends message_id and slave_id to a message body.
func PackSlaveToMaster(slaveID uint32, msg Message) []byte {
	body := msg.Serialize()
	w := wire.NewWriter(5 + len(body))
	w.WriteU8(msg.MessageID())
	w.WriteU32(slaveID)
	w.WriteBytes(body)
	return w.Bytes()
}

// PackSlaveToBackend prepends message_id, slave_id and device_status to a
// message body.
func PackSlaveToBackend(slaveID uint32, status DeviceStatus, msg Message) []byte {
	body := msg.Serialize()
	w := wire.NewWriter(7 + len(body))
	w.WriteU8(msg.MessageID())
	w.WriteU32(slaveID)
	w.WriteU16(status.ToUint16())
	w.WriteBytes(body)
	return w.Bytes()
}

// PackBackendToMaster prepends message_id to a message body.
func PackBackendToMaster(msg Message) []byte {
	body := msg.Serialize()
	w := wire.NewWriter(1 + len(body))
	w.WriteU8(msg.MessageID())
	w.WriteBytes(body)
	return w.Bytes()
}

// PackMasterToBackend prepends message_id to a message body.
func PackMasterToBackend(msg Message) []byte {
	body := msg.Serialize()
	w := wire.NewWriter(1 + len(body))
	w.WriteU8(msg.MessageID())
	w.WriteBytes(body)
	return w.Bytes()
}

// ParsePacket strips a frame payload's routing prefix for the given
// PacketID and decodes the remaining message body through the two-key
// factory.
func ParsePacket(packetID wire.PacketID, payload []byte) (Packet, error) {
	r := wire.NewReader(payload)
	msgID, ok := r.ReadU8()
	if !ok {
		return Packet{}, &InsufficientBytesError{Expected: 1, Actual: len(payload)}
	}

	switch packetID {
	case wire.PacketMasterToSlave:
		dest, ok := r.ReadU32()
		if !ok {
			return Packet{}, &InsufficientBytesError{Expected: 5, Actual: len(payload)}
		}
		body, _ := r.ReadBytes(r.Remaining())
		msg, err := NewMaster2Slave(msgID, body)
		if err != nil {
			return Packet{}, err
		}
		return Packet{PacketID: packetID, DestinationID: dest, Msg: msg}, nil

	case wire.PacketSlaveToMaster:
		slaveID, ok := r.ReadU32()
		if !ok {
			return Packet{}, &InsufficientBytesError{Expected: 5, Actual: len(payload)}
		}
		body, _ := r.ReadBytes(r.Remaining())
		msg, err := NewSlave2Master(msgID, body)
		if err != nil {
			return Packet{}, err
		}
		return Packet{PacketID: packetID, SlaveID: slaveID, Msg: msg}, nil

	case wire.PacketSlaveToBackend:
		slaveID, ok1 := r.ReadU32()
		statusBits, ok2 := r.ReadU16()
		if !ok1 || !ok2 {
			return Packet{}, &InsufficientBytesError{Expected: 7, Actual: len(payload)}
		}
		body, _ := r.ReadBytes(r.Remaining())
		msg, err := NewSlave2Backend(msgID, body)
		if err != nil {
			return Packet{}, err
		}
		return Packet{PacketID: packetID, SlaveID: slaveID, DeviceStatus: DeviceStatusFromUint16(statusBits), HasStatus: true, Msg: msg}, nil

	case wire.PacketBackendToMaster:
		body, _ := r.ReadBytes(r.Remaining())
		msg, err := NewBackend2Master(msgID, body)
		if err != nil {
			return Packet{}, err
		}
		return Packet{PacketID: packetID, Msg: msg}, nil

	case wire.PacketMasterToBackend:
		body, _ := r.ReadBytes(r.Remaining())
		msg, err := NewMaster2Backend(msgID, body)
		if err != nil {
			return Packet{}, err
		}
		return Packet{PacketID: packetID, Msg: msg}, nil

	default:
		return Packet{}, &UnknownMessageIDError{PacketID: packetID, MessageID: msgID}
	}
}
