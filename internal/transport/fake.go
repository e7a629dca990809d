package transport

import "net"

// FakePort is an in-memory Port for tests: Send appends to Outbox instead
// of touching a socket, and Recv drains a queue fed by test code via
// Inject. It lets slave/master/collector tests drive full send/recv cycles
// without binding real sockets.
type FakePort struct {
	addr   *net.UDPAddr
	Outbox []OutboxEntry
	inbox  []inboxEntry
}

// OutboxEntry records one Send call.
type OutboxEntry struct {
	Data   []byte
	Target *net.UDPAddr
}

type inboxEntry struct {
	data []byte
	from *net.UDPAddr
}

// NewFakePort returns a FakePort identifying itself with addr.
func NewFakePort(addr *net.UDPAddr) *FakePort {
	return &FakePort{addr: addr}
}

// Inject queues a datagram to be returned by the next Recv call.
func (p *FakePort) Inject(data []byte, from *net.UDPAddr) {
	cp := make([]byte, len(data))
	copy(cp, data)
	p.inbox = append(p.inbox, inboxEntry{data: cp, from: from})
}

func (p *FakePort) Send(b []byte, target *net.UDPAddr) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	p.Outbox = append(p.Outbox, OutboxEntry{Data: cp, Target: target})
	return nil
}

func (p *FakePort) Recv() ([]byte, *net.UDPAddr, error) {
	if len(p.inbox) == 0 {
		return nil, nil, ErrWouldBlock
	}
	e := p.inbox[0]
	p.inbox = p.inbox[1:]
	return e.data, e.from, nil
}

func (p *FakePort) LocalAddr() *net.UDPAddr { return p.addr }
func (p *FakePort) Close() error            { return nil }
