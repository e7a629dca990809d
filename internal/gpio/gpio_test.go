package gpio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/gpio"
)

func TestSimulatedBankDefaultsToLow(t *testing.T) {
	b := gpio.NewSimulatedBank(4)
	high, err := b.Read(2)
	require.NoError(t, err)
	require.False(t, high)
}

func TestSetModeOutputHighDrivesLevelHigh(t *testing.T) {
	b := gpio.NewSimulatedBank(4)
	require.NoError(t, b.SetMode(1, gpio.ModeOutputHigh))
	high, err := b.Read(1)
	require.NoError(t, err)
	require.True(t, high)
}

func TestSetModeBackToInputPullDownResetsLevel(t *testing.T) {
	b := gpio.NewSimulatedBank(4)
	require.NoError(t, b.SetMode(1, gpio.ModeOutputHigh))
	require.NoError(t, b.SetMode(1, gpio.ModeInputPullDown))
	high, err := b.Read(1)
	require.NoError(t, err)
	require.False(t, high, "switching back to input/pull-down must not leave a stale HIGH reading")
}

func TestSetLevelOverridesRegardlessOfMode(t *testing.T) {
	b := gpio.NewSimulatedBank(2)
	b.SetLevel(0, true)
	high, err := b.Read(0)
	require.NoError(t, err)
	require.True(t, high)
}

func TestOutOfRangePinReturnsError(t *testing.T) {
	b := gpio.NewSimulatedBank(2)
	require.Error(t, b.SetMode(5, gpio.ModeOutputHigh))
	_, err := b.Read(5)
	require.Error(t, err)
}

func TestPinCountReportsConfiguredSize(t *testing.T) {
	b := gpio.NewSimulatedBank(64)
	require.Equal(t, 64, b.PinCount())
}
