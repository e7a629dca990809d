package master

import "net"

// PingSession tracks one in-flight PingCtrl session (§3).
type PingSession struct {
	TargetID   uint32
	Mode       uint8
	Total      uint16
	Current    uint16
	Success    uint16
	IntervalMS uint16
	LastSendMS int64
	ClientAddr *net.UDPAddr
}

func (s *PingSession) done() bool { return s.Current >= s.Total }

// PingSessions manages every outstanding ping session, keyed by target id.
// Only one session per target is kept at a time, mirroring the reference's
// single active-session-per-device model.
type PingSessions struct {
	byTarget map[uint32]*PingSession
}

// NewPingSessions returns an empty session set.
func NewPingSessions() *PingSessions {
	return &PingSessions{byTarget: make(map[uint32]*PingSession)}
}

// Start creates (or replaces) a session for targetID.
func (p *PingSessions) Start(targetID uint32, mode uint8, total, intervalMS uint16, addr *net.UDPAddr) *PingSession {
	s := &PingSession{TargetID: targetID, Mode: mode, Total: total, IntervalMS: intervalMS, ClientAddr: addr}
	p.byTarget[targetID] = s
	return s
}

// RecordPong increments Success for targetID's session, if one is active.
func (p *PingSessions) RecordPong(targetID uint32) {
	if s, ok := p.byTarget[targetID]; ok {
		s.Success++
	}
}

// PingToSend is one PingReq the caller must transmit this tick.
type PingToSend struct {
	TargetID uint32
	Seq      uint16
	Addr     *net.UDPAddr
}

// Tick advances every session whose interval has elapsed (a new session
// sends its first PingReq on its first tick), returning the PingReqs to
// send. Completed sessions (current == total) are retired.
func (p *PingSessions) Tick(nowMS int64) []PingToSend {
	var toSend []PingToSend
	for id, s := range p.byTarget {
		if s.done() {
			delete(p.byTarget, id)
			continue
		}
		if s.Current > 0 && nowMS-s.LastSendMS < int64(s.IntervalMS) {
			continue
		}
		s.Current++
		s.LastSendMS = nowMS
		toSend = append(toSend, PingToSend{TargetID: s.TargetID, Seq: s.Current, Addr: s.ClientAddr})
		if s.done() {
			delete(p.byTarget, id)
		}
	}
	return toSend
}

// Lookup returns the session for targetID, if any.
func (p *PingSessions) Lookup(targetID uint32) (*PingSession, bool) {
	s, ok := p.byTarget[targetID]
	return s, ok
}
