package master_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/master"
	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/wire"
)

func newTestDispatcher() *master.Dispatcher {
	backend := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8081}
	broadcast := &net.UDPAddr{IP: net.ParseIP("255.255.255.255"), Port: 8079}
	return master.NewDispatcher(backend, broadcast, 5000, 5000, 3)
}

func TestSlaveCfgRegistersAndReplies(t *testing.T) {
	d := newTestDispatcher()
	cfg := message.SlaveCfg{Entries: []message.SlaveCfgEntry{{ID: 0xA, ConductionNum: 4}}}

	out := d.HandleBackendToMaster(cfg, 0)
	require.Len(t, out, 1)
	require.Equal(t, wire.PacketMasterToBackend, out[0].PacketID)

	entry, ok := d.Registry.Lookup(0xA)
	require.True(t, ok)
	require.True(t, entry.HasConfig)
	require.Equal(t, uint8(4), entry.Config.ConductionNum)
}

func TestCtrlResetBroadcastsRstToConnectedSlaves(t *testing.T) {
	d := newTestDispatcher()
	d.Registry.Observe(1, 0)
	d.Registry.Observe(2, 0)

	out := d.HandleBackendToMaster(message.Ctrl{RunningStatus: message.RunningReset}, 0)
	// Two Rst broadcasts plus the CtrlResponse.
	require.Len(t, out, 3)
	require.Equal(t, master.CycleIdle, d.Cycle.State)
}

func TestDeviceListReqEnumeratesRegistry(t *testing.T) {
	d := newTestDispatcher()
	d.Registry.Observe(1, 0)
	out := d.HandleBackendToMaster(message.DeviceListReq{}, 0)
	require.Len(t, out, 1)

	pkt, err := message.ParsePacket(wire.PacketMasterToBackend, out[0].Payload)
	require.NoError(t, err)
	resp, ok := pkt.Msg.(message.DeviceListResponse)
	require.True(t, ok)
	require.Len(t, resp.Entries, 1)
}

func TestSlaveToBackendForwardsAndMarksDataReceived(t *testing.T) {
	d := newTestDispatcher()
	d.Registry.SetConfig(1, master.SlaveConfig{ConductionNum: 1}, 0)
	d.Cycle.Mode = message.ModeConduction
	d.Cycle.RunningStatus = message.RunningRun
	d.Cycle.Tick(0, d.Registry.ConfiguredAndConnected()) // begin + sync

	raw := message.PackSlaveToBackend(1, message.DeviceStatus{}, message.ConductionData{Data: []byte{1}})
	out, cycleCompleted := d.HandleSlaveToBackend(1, raw, 600)
	require.Equal(t, wire.PacketSlaveToBackend, out.PacketID)
	require.Equal(t, raw, out.Payload)
	require.True(t, cycleCompleted)
}

func TestPingCtrlAgainstDisconnectedDeviceRepliesZeroTotal(t *testing.T) {
	d := newTestDispatcher()
	out := d.HandleBackendToMaster(message.PingCtrl{PingMode: 0, PingCount: 5, Interval: 100, DestinationID: 0x99}, 0)
	require.Len(t, out, 1)
	pkt, err := message.ParsePacket(wire.PacketMasterToBackend, out[0].Payload)
	require.NoError(t, err)
	resp := pkt.Msg.(message.PingResponse)
	require.Equal(t, uint16(0), resp.Total)
}
