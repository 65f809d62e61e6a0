package sctp

import (
	"io"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// ReliabilityType selects one of the three per-message delivery policies a
// stream can request, RFC 8831 section 6.4 / RFC 4960 section 4.5.
type ReliabilityType int

const (
	// ReliabilityTypeReliable retransmits a message indefinitely until
	// acknowledged; this is the default.
	ReliabilityTypeReliable ReliabilityType = iota
	// ReliabilityTypeRexmit stores ReliabilityValue as a retransmit limit.
	// The association does not enforce it: messages are retransmitted
	// until acknowledged and no FORWARD-TSN is sent.
	ReliabilityTypeRexmit
	// ReliabilityTypeTimed stores ReliabilityValue as a lifetime in
	// milliseconds. The association does not enforce it: messages are
	// retransmitted until acknowledged and no FORWARD-TSN is sent.
	ReliabilityTypeTimed
)

// streamState tracks whether a stream reset has been requested/completed,
// independent of the association's lifecycle.
type streamState int

const (
	streamStateOpen streamState = iota
	streamStateResetRequested
	streamStateClosed
)

// Stream is one bidirectional SCTP stream multiplexed inside an Association;
// a WebRTC data channel owns exactly one.
type Stream struct {
	association *Association

	lock sync.RWMutex

	streamIdentifier   uint16
	defaultPayloadType PayloadProtocolIdentifier

	unordered        bool
	reliabilityType  ReliabilityType
	reliabilityValue uint32

	reassemblyQueue *reassemblyQueue
	sequenceNumber  uint16

	state streamState

	readNotifier chan struct{}
	closeOnce    sync.Once
	closeCh      chan struct{}

	onBufferedAmountLow func()
}

func newStream(a *Association, streamIdentifier uint16) *Stream {
	return &Stream{
		association:      a,
		streamIdentifier: streamIdentifier,
		reassemblyQueue:  &reassemblyQueue{},
		readNotifier:     make(chan struct{}, 1),
		closeCh:          make(chan struct{}),
	}
}

// StreamIdentifier returns the stream id assigned at creation.
func (s *Stream) StreamIdentifier() uint16 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.streamIdentifier
}

// SetDefaultPayloadType sets the PPID used by Write (as opposed to WriteSCTP,
// which takes one explicitly).
func (s *Stream) SetDefaultPayloadType(ppi PayloadProtocolIdentifier) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.defaultPayloadType = ppi
}

// SetReliabilityParams configures this stream's ordering and partial
// reliability policy. It is the Go-side equivalent of the DCEP OPEN
// message's channel type field.
func (s *Stream) SetReliabilityParams(unordered bool, reliabilityType ReliabilityType, reliabilityValue uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.unordered = unordered
	s.reliabilityType = reliabilityType
	s.reliabilityValue = reliabilityValue
}

// Read reads one complete message, dropping the Payload Protocol Identifier.
func (s *Stream) Read(p []byte) (int, error) {
	n, _, err := s.ReadSCTP(p)
	return n, err
}

// ReadSCTP reads one complete message and returns its Payload Protocol
// Identifier alongside it.
func (s *Stream) ReadSCTP(p []byte) (int, PayloadProtocolIdentifier, error) {
	for {
		s.lock.Lock()
		userData, ppi, ok := s.reassemblyQueue.pop()
		s.lock.Unlock()
		if ok {
			n := copy(p, userData)
			if n < len(userData) {
				return n, ppi, io.ErrShortBuffer
			}
			return n, ppi, nil
		}

		select {
		case <-s.readNotifier:
		case <-s.closeCh:
			return 0, 0, io.EOF
		}
	}
}

// handleData feeds one inbound DATA chunk's payload into the reassembly
// queue and wakes a pending reader. Called by the association on its
// inbound path; never by the application.
func (s *Stream) handleData(pd *chunkPayloadData) {
	s.lock.Lock()
	s.reassemblyQueue.push(pd)
	s.lock.Unlock()

	select {
	case s.readNotifier <- struct{}{}:
	default:
	}
}

// Write writes p using the stream's default Payload Protocol Identifier.
func (s *Stream) Write(p []byte) (int, error) {
	s.lock.RLock()
	ppi := s.defaultPayloadType
	s.lock.RUnlock()
	return s.WriteSCTP(p, ppi)
}

// WriteSCTP fragments p into DATA chunks tagged with ppi and hands them to
// the association for transmission.
func (s *Stream) WriteSCTP(p []byte, ppi PayloadProtocolIdentifier) (int, error) {
	if len(p) > math.MaxUint16 {
		return 0, errors.Errorf("message of %d bytes exceeds the maximum of %d", len(p), math.MaxUint16)
	}

	s.lock.RLock()
	if s.state != streamStateOpen {
		s.lock.RUnlock()
		return 0, errors.New("stream is closed")
	}
	s.lock.RUnlock()

	chunks := s.packetize(p, ppi)
	if err := s.association.sendPayloadData(chunks); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Stream) packetize(raw []byte, ppi PayloadProtocolIdentifier) []*chunkPayloadData {
	s.lock.Lock()
	defer s.lock.Unlock()

	mtu := s.association.myMaxMTU
	if mtu == 0 {
		mtu = defaultMTU
	}

	var chunks []*chunkPayloadData
	remaining := raw
	for {
		n := len(remaining)
		if uint32(n) > mtu {
			n = int(mtu)
		}

		chunks = append(chunks, &chunkPayloadData{
			streamIdentifier:     s.streamIdentifier,
			userData:             remaining[:n],
			beginningFragment:    len(chunks) == 0,
			endingFragment:       n == len(remaining),
			unordered:            s.unordered,
			payloadType:          ppi,
			streamSequenceNumber: s.sequenceNumber,
		})

		remaining = remaining[n:]
		if len(remaining) == 0 {
			break
		}
	}

	if !s.unordered {
		s.sequenceNumber++
	}

	return chunks
}

// Close requests the stream be reset, per RFC 6525: the association sends an
// Outgoing Reset Request and tears the stream down once the peer's response
// arrives, or after rtoMax if none does. Close blocks until then.
func (s *Stream) Close() error {
	s.lock.Lock()
	if s.state != streamStateOpen {
		s.lock.Unlock()
		return nil
	}
	s.state = streamStateResetRequested
	s.lock.Unlock()

	s.association.requestStreamReset(s.streamIdentifier)
	return nil
}

// onReset is invoked by the association once the peer has confirmed (or
// unilaterally performed) the stream reset.
func (s *Stream) onReset() {
	s.closeOnce.Do(func() {
		s.lock.Lock()
		s.state = streamStateClosed
		s.lock.Unlock()
		close(s.closeCh)
	})

	a := s.association
	a.lock.Lock()
	delete(a.streams, s.streamIdentifier)
	a.lock.Unlock()
}
