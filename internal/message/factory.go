package message

import "github.com/whts/whts-go/internal/wire"

// NewMessage is the two-key (packet_id, message_id) -> constructor lookup
// described in §4.3 and the REDESIGN FLAGS note on the cyclic message-type
// catalog: message ids are never resolved without their PacketID namespace.
func NewMessage(packetID wire.PacketID, messageID uint8, body []byte) (Message, error) {
	switch packetID {
	case wire.PacketMasterToSlave:
		return NewMaster2Slave(messageID, body)
	case wire.PacketSlaveToMaster:
		return NewSlave2Master(messageID, body)
	case wire.PacketBackendToMaster:
		return NewBackend2Master(messageID, body)
	case wire.PacketMasterToBackend:
		return NewMaster2Backend(messageID, body)
	case wire.PacketSlaveToBackend:
		return NewSlave2Backend(messageID, body)
	default:
		return nil, &UnknownMessageIDError{PacketID: packetID, MessageID: messageID}
	}
}
