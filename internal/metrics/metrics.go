// Package metrics exposes Master-side instrumentation via
// prometheus/client_golang, updated by cmd/whts-master from
// internal/master's registry, pending table and cycle (the domain stack's
// one third-party observability dependency, per SPEC_FULL.md). The
// PingSessions and FragmentGroups gauges are registered but that loop does
// not set them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Master bundles every gauge/counter the Master process publishes.
type Master struct {
	RegistrySize    prometheus.Gauge
	ConnectedSlaves prometheus.Gauge
	PendingCommands prometheus.Gauge
	PingSessions    prometheus.Gauge
	FragmentGroups  prometheus.Gauge
	CycleState      *prometheus.GaugeVec

	RetriesTotal      prometheus.Counter
	RetryDropsTotal   prometheus.Counter
	CyclesCompleted   prometheus.Counter
	DecodeErrorsTotal prometheus.Counter
}

// NewMaster registers and returns the Master metric set on reg.
func NewMaster(reg prometheus.Registerer) *Master {
	m := &Master{
		RegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "registry_size",
			Help: "Number of Slave device ids the Master has ever observed.",
		}),
		ConnectedSlaves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "connected_slaves",
			Help: "Number of Slaves currently marked connected.",
		}),
		PendingCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "pending_commands",
			Help: "Depth of the outstanding-command retry table.",
		}),
		PingSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "ping_sessions",
			Help: "Number of active ping sessions.",
		}),
		FragmentGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "fragment_groups",
			Help: "Number of in-flight fragment reassembly groups.",
		}),
		CycleState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "whts", Subsystem: "master", Name: "cycle_state",
			Help: "1 on the currently active cycle state, 0 on the others.",
		}, []string{"state"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whts", Subsystem: "master", Name: "retries_total",
			Help: "Total Master2Slave command retransmissions.",
		}),
		RetryDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whts", Subsystem: "master", Name: "retry_drops_total",
			Help: "Total commands dropped after exceeding max_retries.",
		}),
		CyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whts", Subsystem: "master", Name: "cycles_completed_total",
			Help: "Total data-collection cycles that reached Complete.",
		}),
		DecodeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whts", Subsystem: "master", Name: "decode_errors_total",
			Help: "Total inbound frames dropped due to a decode error.",
		}),
	}
	reg.MustRegister(
		m.RegistrySize, m.ConnectedSlaves, m.PendingCommands, m.PingSessions,
		m.FragmentGroups, m.CycleState, m.RetriesTotal, m.RetryDropsTotal,
		m.CyclesCompleted, m.DecodeErrorsTotal,
	)
	return m
}

// SetCycleState zeroes every known state gauge and sets only current to 1,
// so a Grafana panel can chart the active state over time.
func (m *Master) SetCycleState(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1.0
		}
		m.CycleState.WithLabelValues(s).Set(v)
	}
}
