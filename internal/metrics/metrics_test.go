package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/metrics"
)

func TestSetCycleStateOnlyMarksCurrent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMaster(reg)

	states := []string{"Idle", "Collecting", "ReadingData", "Complete"}
	m.SetCycleState("Collecting", states)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "whts_master_cycle_state" {
			found = f
		}
	}
	require.NotNil(t, found)

	for _, metric := range found.Metric {
		var state string
		for _, l := range metric.Label {
			if l.GetName() == "state" {
				state = l.GetValue()
			}
		}
		if state == "Collecting" {
			require.Equal(t, 1.0, metric.GetGauge().GetValue())
		} else {
			require.Equal(t, 0.0, metric.GetGauge().GetValue())
		}
	}
}
