package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{
		PacketID:          PacketMasterToSlave,
		FragmentSequence:  0,
		MoreFragmentsFlag: 0,
		Payload:           []byte{0x01, 0x02, 0x03},
	}
	data, err := f.Serialize()
	require.NoError(t, err)

	got, err := ParseFrame(data)
	require.NoError(t, err)
	require.Equal(t, f.PacketID, got.PacketID)
	require.Equal(t, f.FragmentSequence, got.FragmentSequence)
	require.Equal(t, f.MoreFragmentsFlag, got.MoreFragmentsFlag)
	require.Equal(t, f.Payload, got.Payload)
}

func TestFrameSyncExactBytes(t *testing.T) {
	// Scenario 1 from spec §8: Sync{mode=1, ts=0x075BCD15} to slave 0x12345678.
	payload := []byte{0x00, 0x78, 0x56, 0x34, 0x12, 0x01, 0x15, 0xCD, 0x5B, 0x07}
	f := Frame{PacketID: PacketMasterToSlave, Payload: payload}
	data, err := f.Serialize()
	require.NoError(t, err)
	require.Equal(t, []byte{
		0xAB, 0xCD, 0x00, 0x00, 0x00, 0x0A, 0x00,
		0x00, 0x78, 0x56, 0x34, 0x12, 0x01, 0x15, 0xCD, 0x5B, 0x07,
	}, data)
}

func TestParseFrameInvalidDelimiter(t *testing.T) {
	_, err := ParseFrame([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, ErrInvalidDelimiter)
}

func TestParseFrameTruncated(t *testing.T) {
	_, err := ParseFrame([]byte{0xAB, 0xCD, 0x00})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = ParseFrame([]byte{0xAB, 0xCD, 0x00, 0x00, 0x00, 0x05, 0x00, 0x01})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseFrameEmptyPayload(t *testing.T) {
	f := Frame{PacketID: PacketBackendToMaster}
	data, err := f.Serialize()
	require.NoError(t, err)

	got, err := ParseFrame(data)
	require.NoError(t, err)
	require.Empty(t, got.Payload)
	require.True(t, got.IsComplete())
}

func TestByteCodecReadOutOfRangeIsClean(t *testing.T) {
	r := NewReader([]byte{0x01})
	v, ok := r.ReadU32()
	require.False(t, ok)
	require.Zero(t, v)
	require.Equal(t, 1, r.Remaining())
}
