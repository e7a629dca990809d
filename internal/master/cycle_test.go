package master_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/master"
	"github.com/whts/whts-go/internal/message"
)

func slavesAB() []*master.DeviceEntry {
	return []*master.DeviceEntry{
		{DeviceID: 0xA, Connected: true, HasConfig: true, Config: master.SlaveConfig{ConductionNum: 4}},
		{DeviceID: 0xB, Connected: true, HasConfig: true, Config: master.SlaveConfig{ConductionNum: 4}},
	}
}

// TestCycleOrchestration pins spec scenario 4: Sync at t=0, read at
// t>=900ms (4*100+500), the cycle completes once both Slaves' data has been
// marked received, and a new cycle starts once cycle_interval_ms has elapsed
// since completion.
func TestCycleOrchestration(t *testing.T) {
	c := master.NewCycle(5000)
	c.Mode = message.ModeConduction
	c.RunningStatus = message.RunningRun

	slaves := slavesAB()

	out := c.Tick(0, slaves)
	require.True(t, out.ShouldSync)
	require.ElementsMatch(t, []uint32{0xA, 0xB}, out.Targets)
	require.Equal(t, master.CycleCollecting, c.State)

	out = c.Tick(500, slaves)
	require.False(t, out.ShouldSync)
	require.Equal(t, master.CycleCollecting, c.State)

	out = c.Tick(900, slaves)
	require.Equal(t, master.CycleReadingData, c.State)

	reads := c.PendingReads()
	require.ElementsMatch(t, []uint32{0xA, 0xB}, reads)
	require.Empty(t, c.PendingReads(), "second call should not re-request already-requested reads")

	c.MarkDataReceived(0xA, 900)
	require.Equal(t, master.CycleReadingData, c.State)
	c.MarkDataReceived(0xB, 900)
	require.Equal(t, master.CycleComplete, c.State)

	// Before the interval elapses, no new cycle begins.
	out = c.Tick(1000, slaves)
	require.False(t, out.ShouldSync)

	out = c.Tick(900+5000, slaves)
	require.True(t, out.ShouldSync)
}

func TestCycleWithNoConfiguredSlavesStaysInactive(t *testing.T) {
	c := master.NewCycle(5000)
	c.RunningStatus = message.RunningRun
	out := c.Tick(0, nil)
	require.False(t, out.ShouldSync)
	require.False(t, c.Active())
}
