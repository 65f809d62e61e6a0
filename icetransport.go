// +build !js

package webrtc

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"

	"github.com/webrtc-core/rtcstack/internal/mux"
)

// ICERole describes the role an ICE agent takes on once a candidate pair
// has been selected: controlling (acts as the DTLS client) or controlled
// (acts as the DTLS server).
type ICERole byte

const (
	// ICERoleControlling is the role for the agent that drives the
	// connectivity checks and resolves in-progress checks.
	ICERoleControlling ICERole = iota + 1

	// ICERoleControlled is the role for the agent that responds to
	// connectivity checks and does not take decisions.
	ICERoleControlled
)

func (r ICERole) String() string {
	switch r {
	case ICERoleControlling:
		return "controlling"
	case ICERoleControlled:
		return "controlled"
	default:
		return unknownStr
	}
}

// ICETransport wraps the connected datagram transport handed to it by an
// external ICE agent and demultiplexes it into DTLS/SRTP-bound endpoints.
// ICE candidate gathering, pairing and connectivity checks are out of
// scope here: the caller is expected to supply an already-selected,
// connected net.Conn for the chosen candidate pair.
type ICETransport struct {
	lock sync.RWMutex

	role  ICERole
	state ICETransportState

	conn net.Conn
	mux  *mux.Mux

	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger

	onConnectionStateChangeHdlr atomic.Value // func(ICETransportState)
}

// NewICETransport wraps conn, the already-connected datagram conn for a
// selected ICE candidate pair, with a byte-range demultiplexer.
func NewICETransport(conn net.Conn, role ICERole, loggerFactory logging.LoggerFactory) *ICETransport {
	t := &ICETransport{
		conn:          conn,
		role:          role,
		loggerFactory: loggerFactory,
		log:           loggerFactory.NewLogger("ice-transport"),
		state:         ICETransportStateNew,
	}

	t.mux = mux.NewMux(mux.Config{
		Conn:          conn,
		BufferSize:    receiveMTU,
		LoggerFactory: loggerFactory,
	})
	t.setState(ICETransportStateConnected)

	return t
}

// Stop irreversibly stops the ICETransport.
func (t *ICETransport) Stop() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.setState(ICETransportStateClosed)
	if t.mux != nil {
		return t.mux.Close()
	}
	return nil
}

// OnConnectionStateChange sets a handler that is fired when the
// demultiplexer's view of the transport's state changes.
func (t *ICETransport) OnConnectionStateChange(f func(ICETransportState)) {
	t.onConnectionStateChangeHdlr.Store(f)
}

func (t *ICETransport) setState(state ICETransportState) {
	t.state = state
	if hdlr, ok := t.onConnectionStateChangeHdlr.Load().(func(ICETransportState)); ok && hdlr != nil {
		hdlr(state)
	}
}

// Role indicates the current role of the ICE transport.
func (t *ICETransport) Role() ICERole {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.role
}

// State returns the current ice transport state.
func (t *ICETransport) State() ICETransportState {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.state
}

// NewEndpoint registers a new endpoint on the underlying mux.
func (t *ICETransport) NewEndpoint(f mux.MatchFunc) *mux.Endpoint {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.mux.NewEndpoint(f)
}
