package transport_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/transport"
)

func TestFakePortRecvReturnsWouldBlockWhenEmpty(t *testing.T) {
	p := transport.NewFakePort(&net.UDPAddr{Port: 8080})
	_, _, err := p.Recv()
	require.ErrorIs(t, err, transport.ErrWouldBlock)
}

func TestFakePortInjectThenRecvDrainsInOrder(t *testing.T) {
	p := transport.NewFakePort(&net.UDPAddr{Port: 8080})
	from := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 9000}
	p.Inject([]byte{1, 2, 3}, from)
	p.Inject([]byte{4, 5}, from)

	data, got, err := p.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
	require.Equal(t, from, got)

	data, _, err = p.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5}, data)

	_, _, err = p.Recv()
	require.ErrorIs(t, err, transport.ErrWouldBlock)
}

func TestFakePortSendRecordsToOutbox(t *testing.T) {
	p := transport.NewFakePort(&net.UDPAddr{Port: 8080})
	target := &net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 9001}
	require.NoError(t, p.Send([]byte{9, 9}, target))
	require.Len(t, p.Outbox, 1)
	require.Equal(t, []byte{9, 9}, p.Outbox[0].Data)
	require.Equal(t, target, p.Outbox[0].Target)
}

func TestFakePortInjectCopiesData(t *testing.T) {
	p := transport.NewFakePort(&net.UDPAddr{Port: 8080})
	buf := []byte{1, 2, 3}
	p.Inject(buf, nil)
	buf[0] = 0xFF

	data, _, err := p.Recv()
	require.NoError(t, err)
	require.Equal(t, byte(1), data[0])
}
