package message

import (
	"errors"
	"fmt"

	"github.com/whts/whts-go/internal/wire"
)

// Decode errors, per §7 DecodeError taxonomy.
var (
	ErrDeclaredLengthExceedsBuffer = errors.New("message: declared length exceeds buffer")
)

// UnknownMessageIDError reports that (packetID, messageID) has no known
// message type. The namespace is per-direction, so both fields matter.
type UnknownMessageIDError struct {
	PacketID  wire.PacketID
	MessageID uint8
}

func (e *UnknownMessageIDError) Error() string {
	return fmt.Sprintf("message: unknown message id 0x%02X for %s", e.MessageID, e.PacketID)
}

// InsufficientBytesError reports a body shorter than the fixed layout
// requires.
type InsufficientBytesError struct {
	Expected int
	Actual   int
}

func (e *InsufficientBytesError) Error() string {
	return fmt.Sprintf("message: insufficient bytes: expected %d, got %d", e.Expected, e.Actual)
}
