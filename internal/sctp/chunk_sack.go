package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// gapAckBlock is one selectively-acknowledged run of TSNs, expressed as an
// offset from the SACK's cumulative TSN ack point (RFC 4960 section 3.3.4).
type gapAckBlock struct {
	start uint16
	end   uint16
}

const sackFixedLength = 12

// chunkSelectiveAck is the SACK chunk: the receiver's cumulative ack point
// plus any selectively-received gap blocks and duplicate TSNs, driving the
// sender's retransmission and congestion control decisions.
type chunkSelectiveAck struct {
	chunkHeader

	cumulativeTSNAck               uint32
	advertisedReceiverWindowCredit uint32
	gapAckBlocks                   []gapAckBlock
	duplicateTSN                   []uint32
}

func (s *chunkSelectiveAck) unmarshal(raw []byte) error {
	if err := s.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	body := s.chunkHeader.raw
	if len(body) < sackFixedLength {
		return errors.Errorf("SACK needs %d bytes, got %d", sackFixedLength, len(body))
	}

	s.cumulativeTSNAck = binary.BigEndian.Uint32(body[0:])
	s.advertisedReceiverWindowCredit = binary.BigEndian.Uint32(body[4:])
	numGapAckBlocks := int(binary.BigEndian.Uint16(body[8:]))
	numDupTSN := int(binary.BigEndian.Uint16(body[10:]))

	offset := sackFixedLength
	need := numGapAckBlocks*4 + numDupTSN*4
	if len(body)-offset < need {
		return errors.Errorf("SACK declares %d gap blocks and %d dup TSNs but only has %d bytes left", numGapAckBlocks, numDupTSN, len(body)-offset)
	}

	s.gapAckBlocks = make([]gapAckBlock, numGapAckBlocks)
	for i := 0; i < numGapAckBlocks; i++ {
		s.gapAckBlocks[i] = gapAckBlock{
			start: binary.BigEndian.Uint16(body[offset:]),
			end:   binary.BigEndian.Uint16(body[offset+2:]),
		}
		offset += 4
	}

	s.duplicateTSN = make([]uint32, numDupTSN)
	for i := 0; i < numDupTSN; i++ {
		s.duplicateTSN[i] = binary.BigEndian.Uint32(body[offset:])
		offset += 4
	}

	return nil
}

func (s *chunkSelectiveAck) marshal() ([]byte, error) {
	body := make([]byte, sackFixedLength+4*len(s.gapAckBlocks)+4*len(s.duplicateTSN))
	binary.BigEndian.PutUint32(body[0:], s.cumulativeTSNAck)
	binary.BigEndian.PutUint32(body[4:], s.advertisedReceiverWindowCredit)
	binary.BigEndian.PutUint16(body[8:], uint16(len(s.gapAckBlocks)))
	binary.BigEndian.PutUint16(body[10:], uint16(len(s.duplicateTSN)))

	offset := sackFixedLength
	for _, b := range s.gapAckBlocks {
		binary.BigEndian.PutUint16(body[offset:], b.start)
		binary.BigEndian.PutUint16(body[offset+2:], b.end)
		offset += 4
	}
	for _, tsn := range s.duplicateTSN {
		binary.BigEndian.PutUint32(body[offset:], tsn)
		offset += 4
	}

	s.chunkHeader.typ = ctSack
	s.chunkHeader.raw = body
	return s.chunkHeader.marshal()
}

func (s *chunkSelectiveAck) check() (bool, error) {
	return false, nil
}
