package sctp

import (
	"net"
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// associationPair spins up a connected Client/Server Association pair over
// an in-memory net.Pipe, the same in-memory transport pattern this
// repository's internal/transport/test package benchmarks against. Client
// blocks on the handshake, so it runs in a goroutine while Server runs on
// the test goroutine.
func associationPair(t *testing.T) (client *Association, server *Association) {
	t.Helper()

	ca, cb := net.Pipe()
	loggerFactory := logging.NewDefaultLoggerFactory()

	type result struct {
		assoc *Association
		err   error
	}

	clientCh := make(chan result, 1)
	go func() {
		a, err := Client(Config{NetConn: ca, LoggerFactory: loggerFactory})
		clientCh <- result{a, err}
	}()

	server, err := Server(Config{NetConn: cb, LoggerFactory: loggerFactory})
	require.NoError(t, err)

	res := <-clientCh
	require.NoError(t, res.err)

	return res.assoc, server
}

func TestAssociationHandshakeEstablishesBothSides(t *testing.T) {
	client, server := associationPair(t)
	defer client.Close() //nolint:errcheck
	defer server.Close()  //nolint:errcheck

	assert.Equal(t, Established, client.state)
	assert.Equal(t, Established, server.state)

	assert.Equal(t, server.myVerificationTag, client.peerVerificationTag)
	assert.Equal(t, client.myVerificationTag, server.peerVerificationTag)
}

func TestAssociationStreamRoundTrip(t *testing.T) {
	client, server := associationPair(t)
	defer client.Close() //nolint:errcheck
	defer server.Close()  //nolint:errcheck

	out, err := client.OpenStream(1, PayloadTypeWebRTCBinary)
	require.NoError(t, err)

	acceptCh := make(chan *Stream, 1)
	go func() {
		s, acceptErr := server.AcceptStream()
		require.NoError(t, acceptErr)
		acceptCh <- s
	}()

	want := []byte("hello sctp")
	_, err = out.WriteSCTP(want, PayloadTypeWebRTCBinary)
	require.NoError(t, err)

	var in *Stream
	select {
	case in = <-acceptCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for AcceptStream")
	}

	got := make([]byte, 1500)
	n, ppi, err := in.ReadSCTP(got)
	require.NoError(t, err)
	assert.Equal(t, PayloadTypeWebRTCBinary, ppi)
	assert.Equal(t, want, got[:n])
}

func TestAssociationOpenStreamIsIdempotent(t *testing.T) {
	client, server := associationPair(t)
	defer client.Close() //nolint:errcheck
	defer server.Close()  //nolint:errcheck

	s1, err := client.OpenStream(7, PayloadTypeWebRTCBinary)
	require.NoError(t, err)
	s2, err := client.OpenStream(7, PayloadTypeWebRTCBinary)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
}
