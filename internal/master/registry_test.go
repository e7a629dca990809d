package master_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/master"
)

func TestObserveCreatesEntryOnFirstSighting(t *testing.T) {
	r := master.NewRegistry()
	_, ok := r.Lookup(5)
	require.False(t, ok)

	e := r.Observe(5, 100)
	require.True(t, e.Connected)
	require.Equal(t, int64(100), e.LastSeenMS)

	_, ok = r.Lookup(5)
	require.True(t, ok)
}

func TestDeviceListResponseMarksStaleEntriesOffline(t *testing.T) {
	r := master.NewRegistry()
	r.Observe(1, 0)

	resp := r.ToDeviceListResponse(10000, 5000)
	require.Len(t, resp.Entries, 1)
	require.Equal(t, uint8(0), resp.Entries[0].Online)

	r.Observe(1, 9999)
	resp = r.ToDeviceListResponse(10000, 5000)
	require.Equal(t, uint8(1), resp.Entries[0].Online)
}

func TestConfiguredAndConnectedFiltersUnconfigured(t *testing.T) {
	r := master.NewRegistry()
	r.Observe(1, 0)
	r.SetConfig(2, master.SlaveConfig{ConductionNum: 4}, 0)

	got := r.ConfiguredAndConnected()
	require.Len(t, got, 1)
	require.Equal(t, uint32(2), got[0].DeviceID)
}
