package master

import "github.com/whts/whts-go/internal/message"

// CycleState is the Master's data-collection cycle lifecycle (§3/§4.7).
type CycleState int

const (
	CycleIdle CycleState = iota
	CycleCollecting
	CycleReadingData
	CycleComplete
)

func (s CycleState) String() string {
	switch s {
	case CycleIdle:
		return "Idle"
	case CycleCollecting:
		return "Collecting"
	case CycleReadingData:
		return "ReadingData"
	case CycleComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// DataCollectionInfo tracks one Slave's progress through a cycle.
type DataCollectionInfo struct {
	StartMS             int64
	EstimatedDurationMS int64
	DataRequested       bool
	DataReceived        bool
}

// estimatedDurationMS implements §4.7's per-mode formula.
func estimatedDurationMS(mode uint8, cfg SlaveConfig) int64 {
	switch mode {
	case message.ModeConduction:
		return int64(cfg.ConductionNum)*100 + 500
	case message.ModeResistance:
		return int64(cfg.ResistanceNum)*100 + 500
	default: // message.ModeClip
		return 1000
	}
}

// Cycle drives one orchestration pass across every configured, connected
// Slave: Sync, wait for estimated completion, request data, forward to
// Backend once every Slave has replied.
type Cycle struct {
	State           CycleState
	Mode            uint8
	RunningStatus   uint8
	CycleIntervalMS int64

	syncSent    bool
	cycleStart  int64
	lastCycleMS int64
	perSlave    map[uint32]*DataCollectionInfo
	active      bool
}

// NewCycle returns an Idle Cycle using the given minimum gap between
// cycle starts.
func NewCycle(cycleIntervalMS int64) *Cycle {
	return &Cycle{State: CycleIdle, CycleIntervalMS: cycleIntervalMS, perSlave: make(map[uint32]*DataCollectionInfo)}
}

// Active reports whether a cycle is currently underway.
func (c *Cycle) Active() bool { return c.active }

// beginIfDue transitions Idle/Complete into Collecting when running and,
// after a completed cycle, the interval has elapsed, building per-Slave info
// for every connected, configured device. A start with no configured Slaves
// leaves the cycle inactive (§4.7 tie-break).
func (c *Cycle) beginIfDue(nowMS int64, slaves []*DeviceEntry) {
	if c.State != CycleIdle && c.State != CycleComplete {
		return
	}
	if c.RunningStatus != message.RunningRun {
		return
	}
	if c.State == CycleComplete && nowMS-c.lastCycleMS < c.CycleIntervalMS {
		return
	}
	if len(slaves) == 0 {
		c.active = false
		return
	}
	c.perSlave = make(map[uint32]*DataCollectionInfo, len(slaves))
	for _, s := range slaves {
		c.perSlave[s.DeviceID] = &DataCollectionInfo{
			EstimatedDurationMS: estimatedDurationMS(c.Mode, s.Config),
		}
	}
	c.syncSent = false
	c.active = true
	c.State = CycleCollecting
}

// SyncOutcome reports the Sync broadcast the caller should emit, if any.
type SyncOutcome struct {
	ShouldSync bool
	Targets    []uint32
}

// Tick advances the cycle state machine by one main-loop iteration.
func (c *Cycle) Tick(nowMS int64, slaves []*DeviceEntry) SyncOutcome {
	c.beginIfDue(nowMS, slaves)

	if c.State != CycleCollecting {
		return SyncOutcome{}
	}

	if !c.syncSent {
		targets := make([]uint32, 0, len(c.perSlave))
		for id, info := range c.perSlave {
			info.StartMS = nowMS
			targets = append(targets, id)
		}
		c.syncSent = true
		return SyncOutcome{ShouldSync: true, Targets: targets}
	}

	allElapsed := true
	for _, info := range c.perSlave {
		if nowMS-info.StartMS < info.EstimatedDurationMS {
			allElapsed = false
			break
		}
	}
	if allElapsed {
		c.State = CycleReadingData
	}
	return SyncOutcome{}
}

// PendingReads returns the Slave ids that still need a Read*Data command
// sent, marking them as requested.
func (c *Cycle) PendingReads() []uint32 {
	if c.State != CycleReadingData {
		return nil
	}
	var out []uint32
	for id, info := range c.perSlave {
		if !info.DataRequested {
			info.DataRequested = true
			out = append(out, id)
		}
	}
	return out
}

// MarkDataReceived records that a Slave's data message arrived, completing
// the cycle once every Slave has reported in.
func (c *Cycle) MarkDataReceived(deviceID uint32, nowMS int64) {
	info, ok := c.perSlave[deviceID]
	if !ok {
		return
	}
	info.DataReceived = true
	for _, i := range c.perSlave {
		if !i.DataReceived {
			return
		}
	}
	c.State = CycleComplete
	c.lastCycleMS = nowMS
	c.active = false
}

// Reset broadcasts-level clears cycle state while preserving configs,
// per §4.7's running_status==2 behavior. Callers are responsible for
// emitting the Master2Slave Rst to connected Slaves.
func (c *Cycle) Reset() {
	c.State = CycleIdle
	c.syncSent = false
	c.active = false
	c.perSlave = make(map[uint32]*DataCollectionInfo)
}
