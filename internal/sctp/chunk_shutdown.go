package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const shutdownCumulativeTSNAckLength = 4

// chunkShutdown begins graceful association teardown: it carries the
// cumulative TSN the sender has fully received, so the peer can finish
// delivering anything still outstanding before ack'ing the shutdown.
type chunkShutdown struct {
	chunkHeader
	cumulativeTSNAck uint32
}

func (s *chunkShutdown) unmarshal(raw []byte) error {
	if err := s.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if len(s.chunkHeader.raw) != shutdownCumulativeTSNAckLength {
		return errors.Errorf("SHUTDOWN value must be exactly %d bytes, got %d", shutdownCumulativeTSNAckLength, len(s.chunkHeader.raw))
	}
	s.cumulativeTSNAck = binary.BigEndian.Uint32(s.chunkHeader.raw)
	return nil
}

func (s *chunkShutdown) marshal() ([]byte, error) {
	raw := make([]byte, shutdownCumulativeTSNAckLength)
	binary.BigEndian.PutUint32(raw, s.cumulativeTSNAck)
	s.chunkHeader.typ = ctShutdown
	s.chunkHeader.raw = raw
	return s.chunkHeader.marshal()
}

func (s *chunkShutdown) check() (bool, error) {
	return false, nil
}

// chunkShutdownAck answers SHUTDOWN once the sender has itself finished
// transmitting everything outstanding: SHUTDOWN-SENT -> SHUTDOWN-ACK-SENT.
type chunkShutdownAck struct {
	chunkHeader
}

func (s *chunkShutdownAck) unmarshal(raw []byte) error {
	if err := s.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if len(s.chunkHeader.raw) != 0 {
		return errors.Errorf("SHUTDOWN-ACK must carry no value, got %d bytes", len(s.chunkHeader.raw))
	}
	return nil
}

func (s *chunkShutdownAck) marshal() ([]byte, error) {
	s.chunkHeader.typ = ctShutdownAck
	s.chunkHeader.raw = nil
	return s.chunkHeader.marshal()
}

func (s *chunkShutdownAck) check() (bool, error) {
	return false, nil
}

// chunkShutdownComplete closes out the teardown handshake: on receipt, the
// TCB is freed and the association is CLOSED.
type chunkShutdownComplete struct {
	chunkHeader
}

// shutdownCompleteTBit marks a SHUTDOWN-COMPLETE sent without a matching
// TCB (e.g. a stray SHUTDOWN-ACK after the association already closed).
const shutdownCompleteTBit = 1 << 0

func (s *chunkShutdownComplete) unmarshal(raw []byte) error {
	if err := s.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if len(s.chunkHeader.raw) != 0 {
		return errors.Errorf("SHUTDOWN-COMPLETE must carry no value, got %d bytes", len(s.chunkHeader.raw))
	}
	return nil
}

func (s *chunkShutdownComplete) marshal() ([]byte, error) {
	s.chunkHeader.typ = ctShutdownComplete
	s.chunkHeader.raw = nil
	return s.chunkHeader.marshal()
}

func (s *chunkShutdownComplete) check() (bool, error) {
	return true, nil
}
