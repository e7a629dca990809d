package collector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/collector"
	"github.com/whts/whts-go/internal/gpio"
)

func TestStartFailsWithoutGPIOBound(t *testing.T) {
	c := collector.NewCollector()
	require.NoError(t, c.Configure(collector.Config{Num: 2, TotalDetectionNum: 4, StartDetectionNum: 0, IntervalMS: 10}))
	err := c.Start()
	require.ErrorIs(t, err, collector.ErrNoGPIOBound)
	require.Equal(t, collector.StateError, c.State())
}

func TestConfigureRejectsOutOfRangeBounds(t *testing.T) {
	c := collector.NewCollector()
	err := c.Configure(collector.Config{Num: 0, TotalDetectionNum: 4})
	require.ErrorIs(t, err, collector.ErrOutOfRange)
}

func TestReconfigureWhileRunningIsRefused(t *testing.T) {
	c := collector.NewCollector()
	c.BindGPIO(gpio.NewSimulatedBank(4))
	require.NoError(t, c.Configure(collector.Config{Num: 2, TotalDetectionNum: 4, IntervalMS: 10}))
	require.NoError(t, c.Start())

	err := c.Configure(collector.Config{Num: 3, TotalDetectionNum: 5, IntervalMS: 10})
	require.ErrorIs(t, err, collector.ErrRunning)
}

func TestProcessCollectionRunsToCompletion(t *testing.T) {
	bank := gpio.NewSimulatedBank(2)
	c := collector.NewCollector()
	c.BindGPIO(bank)
	require.NoError(t, c.Configure(collector.Config{Num: 2, TotalDetectionNum: 2, StartDetectionNum: 0, IntervalMS: 100}))
	require.NoError(t, c.Start())

	require.NoError(t, c.ProcessCollection(0))
	require.Equal(t, collector.StateRunning, c.State())

	// Too soon: no advance.
	require.NoError(t, c.ProcessCollection(50))
	require.Equal(t, collector.StateRunning, c.State())

	require.NoError(t, c.ProcessCollection(150))
	require.Equal(t, collector.StateCompleted, c.State())
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	matrix := [][]bool{
		{true, false, true},
		{false, false, true},
		{true, true, false},
	}
	packed := collector.Compress(matrix)
	require.Equal(t, 2, len(packed)) // 9 bits -> 2 bytes

	got := collector.Decompress(packed, 3, 3)
	require.Equal(t, matrix, got)
}

func TestForceCompleteIgnoresIntervalGate(t *testing.T) {
	bank := gpio.NewSimulatedBank(2)
	c := collector.NewCollector()
	c.BindGPIO(bank)
	require.NoError(t, c.Configure(collector.Config{Num: 2, TotalDetectionNum: 2, StartDetectionNum: 0, IntervalMS: 10000}))
	require.NoError(t, c.Start())

	require.NoError(t, c.ProcessCollection(0))
	require.Equal(t, collector.StateRunning, c.State())

	require.NoError(t, c.ForceComplete())
	require.Equal(t, collector.StateCompleted, c.State())
}

func TestStimulatedPinIsHighOnlyDuringItsWindow(t *testing.T) {
	bank := gpio.NewSimulatedBank(3)
	c := collector.NewCollector()
	c.BindGPIO(bank)
	require.NoError(t, c.Configure(collector.Config{Num: 3, TotalDetectionNum: 3, StartDetectionNum: 0, IntervalMS: 1}))
	require.NoError(t, c.Start())

	for ms := int64(0); c.State() == collector.StateRunning; ms += 2 {
		require.NoError(t, c.ProcessCollection(ms))
	}

	matrix := c.Matrix()
	for cycle := 0; cycle < 3; cycle++ {
		for pin := 0; pin < 3; pin++ {
			if pin == cycle {
				require.Truef(t, matrix[cycle][pin], "cycle %d pin %d should be stimulated high", cycle, pin)
			} else {
				require.Falsef(t, matrix[cycle][pin], "cycle %d pin %d should not be high", cycle, pin)
			}
		}
	}
}
