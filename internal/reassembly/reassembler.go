// Package reassembly implements the MTU-aware fragmenter and the streaming
// reassembler described in §4.4: splitting an oversize frame into sequenced
// fragments, and turning an arbitrary stream of bytes back into complete
// frames, tolerating sticky packets and out-of-order fragment arrival.
package reassembly

import (
	"bytes"

	"github.com/whts/whts-go/internal/wire"
)

// Config bounds the fragmenter and reassembler. Zero-value fields are
// replaced by their defaults in NewReassembler.
type Config struct {
	MTU               int // default 100
	MaxReceiveBuffer  int // default 4096
	FragmentTimeoutMS int64 // default 5000
}

const (
	defaultMTU              = 100
	defaultMaxReceiveBuffer = 4096
	defaultFragmentTimeout  = 5000

	frameHeaderLen = 7
)

func (c Config) withDefaults() Config {
	if c.MTU <= 0 {
		c.MTU = defaultMTU
	}
	if c.MaxReceiveBuffer <= 0 {
		c.MaxReceiveBuffer = defaultMaxReceiveBuffer
	}
	if c.FragmentTimeoutMS == 0 {
		c.FragmentTimeoutMS = defaultFragmentTimeout
	}
	return c
}

// Fragment frames payload under packetID and splits it into one or more
// frames no larger than cfg.MTU. If the single serialized frame already
// fits, it is returned as the sole element.
func Fragment(cfg Config, packetID wire.PacketID, payload []byte) ([][]byte, error) {
	cfg = cfg.withDefaults()

	single := wire.Frame{PacketID: packetID, Payload: payload}
	serialized, err := single.Serialize()
	if err != nil {
		return nil, err
	}
	if len(serialized) <= cfg.MTU {
		return [][]byte{serialized}, nil
	}

	fragmentPayloadSize := cfg.MTU - frameHeaderLen
	if fragmentPayloadSize <= 0 {
		fragmentPayloadSize = 1
	}
	total := (len(payload) + fragmentPayloadSize - 1) / fragmentPayloadSize
	out := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		start := i * fragmentPayloadSize
		end := start + fragmentPayloadSize
		if end > len(payload) {
			end = len(payload)
		}
		more := uint8(0)
		if i < total-1 {
			more = 1
		}
		f := wire.Frame{
			PacketID:          packetID,
			FragmentSequence:  uint8(i),
			MoreFragmentsFlag: more,
			Payload:           payload[start:end],
		}
		fb, err := f.Serialize()
		if err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, nil
}

// fragmentGroup accumulates fragments for one in-flight fragmented packet.
// RoutingID and MessageID are only known once fragment 0 has arrived, which
// sets Resolved. Groups are matched by PacketID alone; RoutingID and
// MessageID are recorded but not compared, and Resolved only keeps a second
// fragment 0 from joining a group that already has one (the keying deviation
// documented in DESIGN.md).
type fragmentGroup struct {
	PacketID   wire.PacketID
	RoutingID  uint32
	MessageID  uint8
	Resolved   bool
	Total      int // 0 = unknown
	Fragments  map[uint8][]byte
	FirstSeenMS int64
}

func newFragmentGroup(packetID wire.PacketID, nowMS int64) *fragmentGroup {
	return &fragmentGroup{
		PacketID:    packetID,
		Fragments:   make(map[uint8][]byte),
		FirstSeenMS: nowMS,
	}
}

func (g *fragmentGroup) complete() bool {
	return g.Total > 0 && len(g.Fragments) == g.Total
}

// reassemble concatenates fragment 0 verbatim (it retains the full message
// header) followed by fragments 1..total-1 in order.
func (g *fragmentGroup) reassemble() []byte {
	var buf bytes.Buffer
	buf.Write(g.Fragments[0])
	for i := 1; i < g.Total; i++ {
		buf.Write(g.Fragments[uint8(i)])
	}
	return buf.Bytes()
}

// Reassembler turns an arbitrary byte stream into complete frames. It is
// not safe for concurrent use: per §5, all protocol state is owned by the
// single cooperative main loop.
type Reassembler struct {
	cfg     Config
	buf     []byte
	groups  []*fragmentGroup
	ready   []wire.Frame
}

// NewReassembler returns a Reassembler configured per cfg, with defaults
// applied to zero-valued fields.
func NewReassembler(cfg Config) *Reassembler {
	return &Reassembler{cfg: cfg.withDefaults()}
}

// Feed appends data to the receive buffer and drains as many complete
// frames as the buffer now yields. nowMS stamps any new fragment groups for
// later eviction via EvictExpired.
func (r *Reassembler) Feed(data []byte, nowMS int64) {
	if len(r.buf)+len(data) > r.cfg.MaxReceiveBuffer {
		r.buf = r.buf[:0]
	}
	r.buf = append(r.buf, data...)
	r.scan(nowMS)
}

// scan repeatedly looks for a frame starting at the current buffer head,
// discarding any leading noise before the delimiter pair, parsing what it
// finds, and advancing past consumed bytes.
func (r *Reassembler) scan(nowMS int64) {
	for {
		idx := bytes.Index(r.buf, []byte{0xAB, 0xCD})
		if idx < 0 {
			// No delimiter anywhere: nothing recoverable is left, but keep
			// at most one trailing byte in case it is a split 0xAB.
			if len(r.buf) > 0 && r.buf[len(r.buf)-1] == 0xAB {
				r.buf = r.buf[len(r.buf)-1:]
			} else {
				r.buf = r.buf[:0]
			}
			return
		}
		if idx > 0 {
			r.buf = r.buf[idx:]
		}
		if len(r.buf) < frameHeaderLen {
			return
		}
		length := int(r.buf[5]) | int(r.buf[6])<<8
		if len(r.buf) < frameHeaderLen+length {
			return
		}

		frameBytes := r.buf[:frameHeaderLen+length]
		frame, err := wire.ParseFrame(frameBytes)
		r.buf = r.buf[frameHeaderLen+length:]
		if err != nil {
			// Malformed despite a matching delimiter; drop this frame only
			// and keep scanning the remainder of the buffer.
			continue
		}

		if frame.IsComplete() {
			r.ready = append(r.ready, frame)
			continue
		}
		r.absorbFragment(frame, nowMS)
	}
}

func (r *Reassembler) absorbFragment(frame wire.Frame, nowMS int64) {
	routingID, messageID, ok := sniffHeader(frame.PacketID, frame.Payload)

	var group *fragmentGroup
	if frame.FragmentSequence == 0 && ok {
		// Prefer an existing unresolved group for this packet id (fragments
		// that arrived before fragment 0); otherwise start fresh.
		for _, g := range r.groups {
			if g.PacketID == frame.PacketID && !g.Resolved && !g.complete() {
				group = g
				break
			}
		}
		if group == nil {
			group = newFragmentGroup(frame.PacketID, nowMS)
			r.groups = append(r.groups, group)
		}
		group.RoutingID = routingID
		group.MessageID = messageID
		group.Resolved = true
	} else {
		for _, g := range r.groups {
			if g.PacketID == frame.PacketID && !g.complete() {
				group = g
				break
			}
		}
		if group == nil {
			group = newFragmentGroup(frame.PacketID, nowMS)
			r.groups = append(r.groups, group)
		}
	}

	group.Fragments[frame.FragmentSequence] = frame.Payload
	if frame.MoreFragmentsFlag == 0 {
		group.Total = int(frame.FragmentSequence) + 1
	}

	if group.complete() {
		payload := group.reassemble()
		r.ready = append(r.ready, wire.Frame{
			PacketID:          group.PacketID,
			FragmentSequence:  0,
			MoreFragmentsFlag: 0,
			Payload:           payload,
		})
		r.removeGroup(group)
	}
}

func (r *Reassembler) removeGroup(target *fragmentGroup) {
	out := r.groups[:0]
	for _, g := range r.groups {
		if g != target {
			out = append(out, g)
		}
	}
	r.groups = out
}

// EvictExpired drops fragment groups older than FragmentTimeoutMS, per the
// §9 design note that the reference leaves this disabled but the design
// specifies it should be enforced.
func (r *Reassembler) EvictExpired(nowMS int64) int {
	evicted := 0
	out := r.groups[:0]
	for _, g := range r.groups {
		if nowMS-g.FirstSeenMS >= r.cfg.FragmentTimeoutMS {
			evicted++
			continue
		}
		out = append(out, g)
	}
	r.groups = out
	return evicted
}

// Dequeue returns the next complete frame, if any, non-blocking.
func (r *Reassembler) Dequeue() (wire.Frame, bool) {
	if len(r.ready) == 0 {
		return wire.Frame{}, false
	}
	f := r.ready[0]
	r.ready = r.ready[1:]
	return f, true
}

// sniffHeader extracts the routing identifier and message id that a
// fragment 0 payload carries as its header prefix, per §4.3's per-direction
// layouts. It returns ok=false if the payload is too short to carry even a
// message id.
func sniffHeader(packetID wire.PacketID, payload []byte) (routingID uint32, messageID uint8, ok bool) {
	r := wire.NewReader(payload)
	messageID, ok = r.ReadU8()
	if !ok {
		return 0, 0, false
	}
	switch packetID {
	case wire.PacketMasterToSlave, wire.PacketSlaveToMaster, wire.PacketSlaveToBackend:
		routingID, ok = r.ReadU32()
		return routingID, messageID, ok
	default:
		return 0, messageID, true
	}
}
