// Package master implements the Master-side orchestration described in
// §4.7/§4.8: the device registry, pending-command retry table, ping
// sessions, cycle state machine and inbound frame dispatcher.
package master

import "github.com/whts/whts-go/internal/message"

// SlaveConfig is a registered Slave's per-mode measurement parameters, as
// set by a Backend SlaveCfg entry.
type SlaveConfig struct {
	ConductionNum uint8
	ResistanceNum uint8
	ClipMode      uint8
	ClipStatus    uint16
}

// DeviceEntry is one row of the Master's device registry (§3).
type DeviceEntry struct {
	DeviceID  uint32
	Connected bool
	ShortID   uint8
	Config    SlaveConfig
	HasConfig bool
	Major     uint8
	Minor     uint8
	Patch     uint16
	LastSeenMS int64
}

// Registry tracks every Slave the Master has observed. Entries are created
// on first observation and mutated by announce/short-id-confirm/
// ping-response/any data receipt; they are never destroyed except on
// process exit (§3).
type Registry struct {
	entries map[uint32]*DeviceEntry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint32]*DeviceEntry)}
}

// Observe returns the entry for deviceID, creating it if this is the first
// time the Master has seen it, and refreshes LastSeenMS.
func (r *Registry) Observe(deviceID uint32, nowMS int64) *DeviceEntry {
	e, ok := r.entries[deviceID]
	if !ok {
		e = &DeviceEntry{DeviceID: deviceID}
		r.entries[deviceID] = e
	}
	e.Connected = true
	e.LastSeenMS = nowMS
	return e
}

// SetConfig stores per-Slave configuration received via a Backend SlaveCfg.
func (r *Registry) SetConfig(deviceID uint32, cfg SlaveConfig, nowMS int64) {
	e := r.Observe(deviceID, nowMS)
	e.Config = cfg
	e.HasConfig = true
}

// Lookup returns the entry for deviceID, if known.
func (r *Registry) Lookup(deviceID uint32) (*DeviceEntry, bool) {
	e, ok := r.entries[deviceID]
	return e, ok
}

// Connected returns every entry currently marked connected.
func (r *Registry) Connected() []*DeviceEntry {
	out := make([]*DeviceEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Connected {
			out = append(out, e)
		}
	}
	return out
}

// ConfiguredAndConnected returns every connected entry that also has a
// stored configuration, the set MasterCycle builds DataCollectionInfo from.
func (r *Registry) ConfiguredAndConnected() []*DeviceEntry {
	out := make([]*DeviceEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Connected && e.HasConfig {
			out = append(out, e)
		}
	}
	return out
}

// ToDeviceListResponse renders the registry as the Backend-facing listing.
// Online staleness (§6 SUPPLEMENTED FEATURES) is left to the caller, which
// passes staleAfterMS so a Slave silent longer than that reports offline
// without being evicted from the registry.
func (r *Registry) ToDeviceListResponse(nowMS, staleAfterMS int64) message.DeviceListResponse {
	entries := make([]message.DeviceListEntry, 0, len(r.entries))
	for _, e := range r.entries {
		online := uint8(0)
		if e.Connected && nowMS-e.LastSeenMS <= staleAfterMS {
			online = 1
		}
		entries = append(entries, message.DeviceListEntry{
			DeviceID: e.DeviceID,
			ShortID:  e.ShortID,
			Online:   online,
			Major:    e.Major,
			Minor:    e.Minor,
			Patch:    e.Patch,
		})
	}
	return message.DeviceListResponse{Entries: entries}
}
