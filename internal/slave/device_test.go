package slave_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/gpio"
	"github.com/whts/whts-go/internal/message"
	"github.com/whts/whts-go/internal/slave"
)

func TestFilteringRuleIgnoresForeignDestination(t *testing.T) {
	d := slave.NewDevice(0x1234, gpio.NewSimulatedBank(4))
	require.True(t, d.Accepts(0x1234))
	require.True(t, d.Accepts(0xFFFFFFFF))
	require.False(t, d.Accepts(0x9999))
}

func TestConductionCfgThenSyncTransitionsToCollecting(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))

	replies := d.Handle(0, message.ConductionCfg{TimeSlot: 1, Interval: 10, Total: 4, Start: 0, Num: 4})
	require.Len(t, replies, 1)
	resp, ok := replies[0].Msg.(message.ConductionCfgResp)
	require.True(t, ok)
	require.Equal(t, uint8(0), resp.Status)
	require.Equal(t, slave.StateConfigured, d.State())

	replies = d.Handle(0, message.Sync{Mode: message.ModeConduction, Timestamp: 0})
	require.Empty(t, replies)
	require.Equal(t, slave.StateCollecting, d.State())
}

func TestSyncWithoutConfigIsIgnored(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))
	replies := d.Handle(0, message.Sync{Mode: message.ModeConduction, Timestamp: 0})
	require.Empty(t, replies)
	require.Equal(t, slave.StateIdle, d.State())
}

func TestReadConductionDataRepliesSlaveToBackend(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))
	d.Handle(0, message.ConductionCfg{TimeSlot: 1, Interval: 1, Total: 2, Start: 0, Num: 2})
	d.Handle(0, message.Sync{Mode: message.ModeConduction, Timestamp: 0})

	replies := d.Handle(100, message.ReadConductionData{})
	require.Len(t, replies, 1)
	require.True(t, replies[0].ToBackend)
	_, ok := replies[0].Msg.(message.ConductionData)
	require.True(t, ok)
	require.Equal(t, slave.StateCollectionComplete, d.State())
}

func TestRstPreservesConfigButClearsVolatileState(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))
	d.Handle(0, message.ConductionCfg{TimeSlot: 1, Interval: 10, Total: 4, Start: 0, Num: 4})

	replies := d.Handle(0, message.Rst{LockStatus: 1, ClipLED: 7})
	require.Len(t, replies, 1)
	resp, ok := replies[0].Msg.(message.RstResp)
	require.True(t, ok)
	require.Equal(t, uint8(1), resp.LockStatus)
	require.Equal(t, slave.StateConfigured, d.State())
}

func TestPingReqAlwaysReplies(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))
	replies := d.Handle(42, message.PingReq{Seq: 5, Timestamp: 1})
	require.Len(t, replies, 1)
	resp := replies[0].Msg.(message.PingRsp)
	require.Equal(t, uint16(5), resp.Seq)
	require.Equal(t, uint32(42), resp.Timestamp)
}

func TestShortIDAssignConfirms(t *testing.T) {
	d := slave.NewDevice(1, gpio.NewSimulatedBank(4))
	replies := d.Handle(0, message.ShortIDAssign{ShortID: 9})
	require.Len(t, replies, 1)
	resp := replies[0].Msg.(message.ShortIDConfirm)
	require.Equal(t, uint8(9), resp.ShortID)
}
