package master

import "net"

// PendingCommand is one outstanding Master2Slave command awaiting a
// matching reply, per §3/§4.8's retry policy.
type PendingCommand struct {
	TargetID        uint32
	MessageID       uint8 // the Slave2Master/Slave2Backend message id that acks this command
	CommandBytes    []byte
	ClientAddr      *net.UDPAddr
	SendTimestampMS int64
	RetryCount      int
	MaxRetries      int
}

// PendingTable tracks outstanding retried commands. It is owned and
// mutated exclusively by the main loop (§5): no locking.
type PendingTable struct {
	entries   []*PendingCommand
	timeoutMS int64
}

// NewPendingTable returns an empty table using timeoutMS as the fixed
// retry spacing (default 5000ms per §6).
func NewPendingTable(timeoutMS int64) *PendingTable {
	return &PendingTable{timeoutMS: timeoutMS}
}

// Add registers a new outstanding command.
func (t *PendingTable) Add(targetID uint32, ackMessageID uint8, commandBytes []byte, addr *net.UDPAddr, nowMS int64, maxRetries int) {
	t.entries = append(t.entries, &PendingCommand{
		TargetID:        targetID,
		MessageID:       ackMessageID,
		CommandBytes:    commandBytes,
		ClientAddr:      addr,
		SendTimestampMS: nowMS,
		MaxRetries:      maxRetries,
	})
}

// Len reports how many commands are outstanding.
func (t *PendingTable) Len() int { return len(t.entries) }

// RemoveMatching drops the first entry, if any, whose TargetID and
// MessageID match an arrived reply — the early-removal-on-ack correctness
// improvement over the reference's timer-only retry (§9 design note).
func (t *PendingTable) RemoveMatching(targetID uint32, messageID uint8) bool {
	for i, e := range t.entries {
		if e.TargetID == targetID && e.MessageID == messageID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Resend is one entry whose timeout has elapsed and must be re-sent.
type Resend struct {
	TargetID     uint32
	CommandBytes []byte
	Addr         *net.UDPAddr
}

// Tick re-sends every expired entry (resetting its timestamp and
// incrementing retry_count) and drops entries that have exceeded
// max_retries, returning the resends the caller must actually transmit and
// the count of entries dropped this tick.
func (t *PendingTable) Tick(nowMS int64) (resends []Resend, dropped int) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if nowMS-e.SendTimestampMS < t.timeoutMS {
			kept = append(kept, e)
			continue
		}
		if e.RetryCount >= e.MaxRetries {
			dropped++
			continue // dropped: retry budget exhausted
		}
		e.RetryCount++
		e.SendTimestampMS = nowMS
		resends = append(resends, Resend{TargetID: e.TargetID, CommandBytes: e.CommandBytes, Addr: e.ClientAddr})
		kept = append(kept, e)
	}
	t.entries = kept
	return resends, dropped
}
