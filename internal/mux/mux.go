// Package mux multiplexes packets on a single socket (RFC7983).
package mux

import (
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"
	"github.com/pion/transport/v4/packetio"
)

// The maximum amount of data that can be buffered before returning errors.
const maxBufferSize = 1000 * 1000 // 1MB

// maxPendingPackets bounds the queue of packets received before any
// registered Endpoint claims them (e.g. a DTLS packet arriving before
// DTLSTransport.Start has created its endpoint). Older entries are
// dropped to make room for new ones.
const maxPendingPackets = 32

// Config collects the arguments to mux.Mux construction into
// a single structure.
type Config struct {
	Conn          net.Conn
	BufferSize    int
	LoggerFactory logging.LoggerFactory
}

// Mux allows multiplexing.
type Mux struct {
	lock       sync.RWMutex
	nextConn   connection
	endpoints  map[*Endpoint]MatchFunc
	bufferSize int
	closedCh   chan struct{}

	pendingPackets [][]byte

	// droppedPackets counts packets that matched no endpoint and fell off
	// the pending queue, or that an endpoint's bounded buffer had to drop
	// because it was full.
	droppedPackets uint64

	log logging.LeveledLogger
}

// NewMux creates a new Mux.
func NewMux(config Config) *Mux {
	m := &Mux{
		nextConn:   newConnection(config.Conn),
		endpoints:  make(map[*Endpoint]MatchFunc),
		bufferSize: config.BufferSize,
		closedCh:   make(chan struct{}),
		log:        config.LoggerFactory.NewLogger("mux"),
	}

	go m.readLoop()

	return m
}

// NewEndpoint creates a new Endpoint, draining any already-buffered
// pending packets that match f into it.
func (m *Mux) NewEndpoint(f MatchFunc) *Endpoint {
	e := &Endpoint{
		mux:    m,
		buffer: packetio.NewBuffer(),
	}

	// Set a maximum size of the buffer in bytes.
	// NOTE: We actually won't get anywhere close to this limit.
	// SRTP/SCTP will constantly read from the endpoint and drop packets
	// if it's full.
	e.buffer.SetLimitSize(maxBufferSize)

	m.lock.Lock()
	m.endpoints[e] = f

	remaining := m.pendingPackets[:0]
	for _, p := range m.pendingPackets {
		if f(p) {
			if _, err := e.buffer.Write(p); err != nil {
				m.log.Warnf("mux: failed to deliver pending packet: %v", err)
			}
			continue
		}
		remaining = append(remaining, p)
	}
	m.pendingPackets = remaining
	m.lock.Unlock()

	return e
}

// RemoveEndpoint removes an endpoint from the Mux.
func (m *Mux) RemoveEndpoint(e *Endpoint) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.endpoints, e)
}

// Close closes the Mux and all associated Endpoints.
func (m *Mux) Close() error {
	m.lock.Lock()
	for e := range m.endpoints {
		err := e.close()
		if err != nil {
			m.lock.Unlock()
			return err
		}

		delete(m.endpoints, e)
	}
	m.lock.Unlock()

	err := m.nextConn.Close()
	if err != nil {
		return err
	}

	// Wait for readLoop to end
	<-m.closedCh

	return nil
}

// DroppedPackets returns the number of inbound packets dropped so far,
// either for matching no endpoint (and overflowing the pending queue) or
// because the matched endpoint's buffer was full.
func (m *Mux) DroppedPackets() uint64 {
	return atomic.LoadUint64(&m.droppedPackets)
}

func (m *Mux) readLoop() {
	defer close(m.closedCh)

	buf := make([]byte, m.bufferSize)
	for {
		n, err := m.nextConn.Read(buf)
		switch {
		case errIsTimeout(err):
			continue
		case err == io.ErrShortBuffer:
			continue
		case err != nil:
			return
		}

		if err := m.dispatch(append([]byte{}, buf[:n]...)); err != nil {
			return
		}
	}
}

func errIsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if err == packetio.ErrTimeout {
		return true
	}
	ne, ok := err.(interface{ Timeout() bool })
	return ok && ne.Timeout()
}

func (m *Mux) dispatch(buf []byte) error {
	var endpoint *Endpoint

	m.lock.Lock()
	for e, f := range m.endpoints {
		if f(buf) {
			endpoint = e
			break
		}
	}

	if endpoint == nil {
		if len(buf) > 0 {
			m.pendingPackets = append(m.pendingPackets, buf)
			if len(m.pendingPackets) > maxPendingPackets {
				m.pendingPackets = m.pendingPackets[len(m.pendingPackets)-maxPendingPackets:]
				atomic.AddUint64(&m.droppedPackets, 1)
			}
		}
		m.lock.Unlock()

		if len(buf) > 0 {
			m.log.Tracef("mux: no endpoint yet for packet starting with %d, queued\n", buf[0])
		} else {
			m.log.Warnf("mux: no endpoint for zero length packet")
		}
		return nil
	}
	m.lock.Unlock()

	if _, err := endpoint.buffer.Write(buf); err != nil {
		if err == packetio.ErrFull {
			atomic.AddUint64(&m.droppedPackets, 1)
			m.log.Warnf("mux: endpoint buffer full, dropping packet (%d bytes)\n", len(buf))
			return nil
		}
		return err
	}

	return nil
}
