package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/wire"
)

func TestPackParseMasterToSlaveRoundTrip(t *testing.T) {
	msg := message.Sync{Mode: message.ModeConduction, Timestamp: 0x12345678}
	payload := message.PackMasterToSlave(wire.BroadcastID, msg)

	pkt, err := message.ParsePacket(wire.PacketMasterToSlave, payload)
	require.NoError(t, err)
	require.Equal(t, wire.BroadcastID, pkt.DestinationID)
	require.Equal(t, msg, pkt.Msg)
}

func TestPackParseSlaveToBackendCarriesDeviceStatus(t *testing.T) {
	status := message.DeviceStatus{BatteryLowAlarm: true, Accessory2: true}
	msg := message.ClipData{Value: 42}
	payload := message.PackSlaveToBackend(7, status, msg)

	pkt, err := message.ParsePacket(wire.PacketSlaveToBackend, payload)
	require.NoError(t, err)
	require.True(t, pkt.HasStatus)
	require.Equal(t, uint32(7), pkt.SlaveID)
	require.Equal(t, status, pkt.DeviceStatus)
	require.Equal(t, msg, pkt.Msg)
}

// TestMessageIDNamespacesAreNotGlobal pins §4.3: id 0x00 means SYNC_MSG
// under MasterToSlave but SLAVE_CFG_MSG under BackendToMaster.
func TestMessageIDNamespacesAreNotGlobal(t *testing.T) {
	syncBody := message.Sync{Mode: message.ModeClip, Timestamp: 1}.Serialize()
	m1, err := message.NewMessage(wire.PacketMasterToSlave, 0x00, syncBody)
	require.NoError(t, err)
	require.IsType(t, message.Sync{}, m1)

	slaveCfgBody := message.SlaveCfg{}.Serialize()
	m2, err := message.NewMessage(wire.PacketBackendToMaster, 0x00, slaveCfgBody)
	require.NoError(t, err)
	require.IsType(t, message.SlaveCfg{}, m2)
}

func TestNewMessageUnknownIDReturnsError(t *testing.T) {
	_, err := message.NewMessage(wire.PacketMasterToSlave, 0xFE, nil)
	require.Error(t, err)
	var unknown *message.UnknownMessageIDError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, wire.PacketMasterToSlave, unknown.PacketID)
}

func TestParsePacketBackendToMasterRoundTrip(t *testing.T) {
	msg := message.Ctrl{RunningStatus: message.RunningRun}
	payload := message.PackBackendToMaster(msg)

	pkt, err := message.ParsePacket(wire.PacketBackendToMaster, payload)
	require.NoError(t, err)
	require.Equal(t, msg, pkt.Msg)
}

func TestParsePacketTruncatedIsClean(t *testing.T) {
	_, err := message.ParsePacket(wire.PacketSlaveToMaster, []byte{0x10, 0x01})
	require.Error(t, err)
}

func TestDeviceStatusRoundTrip(t *testing.T) {
	s := message.DeviceStatus{
		ColorSensor:          true,
		ElectromagneticLock2: true,
	}
	got := message.DeviceStatusFromUint16(s.ToUint16())
	require.Equal(t, s, got)
}
