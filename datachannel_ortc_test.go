// +build !js

package webrtc

import (
	"net"
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/require"

	"github.com/webrtc-core/rtcstack/internal/sctp"
)

// dataChannelAssociationPair spins up a connected client/server Association
// pair over an in-memory net.Pipe, mirroring how a DTLS connection hands
// Association its transport.Conn.
func dataChannelAssociationPair(t *testing.T) (client *sctp.Association, server *sctp.Association) {
	t.Helper()

	ca, cb := net.Pipe()
	loggerFactory := logging.NewDefaultLoggerFactory()

	type result struct {
		assoc *sctp.Association
		err   error
	}

	clientCh := make(chan result, 1)
	go func() {
		a, err := sctp.Client(sctp.Config{NetConn: ca, LoggerFactory: loggerFactory})
		clientCh <- result{a, err}
	}()

	server, err := sctp.Server(sctp.Config{NetConn: cb, LoggerFactory: loggerFactory})
	require.NoError(t, err)

	res := <-clientCh
	require.NoError(t, res.err)

	return res.assoc, server
}

func TestDataChannel_OpenAckE2E(t *testing.T) {
	client, server := dataChannelAssociationPair(t)
	defer client.Close() //nolint:errcheck
	defer server.Close()  //nolint:errcheck

	acceptCh := make(chan *DataChannel, 1)
	acceptErrCh := make(chan error, 1)
	go func() {
		dc, err := AcceptDataChannel(server)
		if err != nil {
			acceptErrCh <- err
			return
		}
		acceptCh <- dc
	}()

	local, err := DialDataChannel(client, 1, &DataChannelConfig{Label: "foo"})
	require.NoError(t, err)
	require.Equal(t, uint16(1), local.StreamIdentifier())

	select {
	case err := <-acceptErrCh:
		t.Fatalf("AcceptDataChannel failed: %v", err)
	case remote := <-acceptCh:
		require.Equal(t, "foo", remote.Config.Label)
		require.Equal(t, uint16(1), remote.StreamIdentifier())

		want := []byte("hello")
		_, err := remote.Write(want)
		require.NoError(t, err)

		got := make([]byte, 1500)
		n, err := local.Read(got)
		require.NoError(t, err)
		require.Equal(t, want, got[:n])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for AcceptDataChannel")
	}
}
