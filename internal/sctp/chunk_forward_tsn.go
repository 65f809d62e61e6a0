package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// forwardTSNStream names one stream whose sequence advanced past an
// abandoned message, so the receiver's per-stream ordering can skip it.
type forwardTSNStream struct {
	identifier uint16
	sequence   uint16
}

const forwardTSNFixedLength = 4
const forwardTSNStreamLength = 4

// chunkForwardTSN (RFC 3758) advances the cumulative TSN past one or more
// abandoned messages under partial reliability, so the receiver's
// reassembly window does not stall waiting for data that will never arrive.
type chunkForwardTSN struct {
	chunkHeader
	newCumulativeTSN uint32
	streams          []forwardTSNStream
}

func (f *chunkForwardTSN) unmarshal(raw []byte) error {
	if err := f.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	body := f.chunkHeader.raw
	if len(body) < forwardTSNFixedLength {
		return errors.Errorf("FORWARD-TSN needs %d bytes, got %d", forwardTSNFixedLength, len(body))
	}
	if (len(body)-forwardTSNFixedLength)%forwardTSNStreamLength != 0 {
		return errors.New("FORWARD-TSN stream list is not a whole number of entries")
	}

	f.newCumulativeTSN = binary.BigEndian.Uint32(body[0:])
	f.streams = nil
	for offset := forwardTSNFixedLength; offset < len(body); offset += forwardTSNStreamLength {
		f.streams = append(f.streams, forwardTSNStream{
			identifier: binary.BigEndian.Uint16(body[offset:]),
			sequence:   binary.BigEndian.Uint16(body[offset+2:]),
		})
	}
	return nil
}

func (f *chunkForwardTSN) marshal() ([]byte, error) {
	body := make([]byte, forwardTSNFixedLength+forwardTSNStreamLength*len(f.streams))
	binary.BigEndian.PutUint32(body[0:], f.newCumulativeTSN)
	for i, s := range f.streams {
		offset := forwardTSNFixedLength + i*forwardTSNStreamLength
		binary.BigEndian.PutUint16(body[offset:], s.identifier)
		binary.BigEndian.PutUint16(body[offset+2:], s.sequence)
	}

	f.chunkHeader.typ = ctForwardTSN
	f.chunkHeader.raw = body
	return f.chunkHeader.marshal()
}

func (f *chunkForwardTSN) check() (bool, error) {
	return false, nil
}
