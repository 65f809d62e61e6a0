package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// reconfigResult is the Result field of a Re-configuration Response
// parameter, RFC 6525 section 4.4.
type reconfigResult uint32

const (
	reconfigResultSuccessNOP             reconfigResult = 0
	reconfigResultSuccessPerformed       reconfigResult = 1
	reconfigResultDenied                 reconfigResult = 2
	reconfigResultErrorWrongSSN          reconfigResult = 3
	reconfigResultErrorRequestAlreadyInP reconfigResult = 4
	reconfigResultErrorBadSequenceNumber reconfigResult = 5
	reconfigResultInProgress             reconfigResult = 6
)

// paramOutgoingResetRequest is the Outgoing SSN Reset Request Parameter
// (type 0x000D): "close these outbound streams, but not before last_tsn has
// been cumulatively acknowledged."
type paramOutgoingResetRequest struct {
	reconfigRequestSequenceNumber  uint32
	reconfigResponseSequenceNumber uint32
	senderLastTSN                  uint32
	streamIdentifiers              []uint16
}

const outgoingResetRequestFixedLength = 12

func (p *paramOutgoingResetRequest) unmarshalValue(raw []byte) error {
	if len(raw) < outgoingResetRequestFixedLength {
		return errors.Errorf("outgoing reset request needs %d bytes, got %d", outgoingResetRequestFixedLength, len(raw))
	}
	if len(raw)%2 != 0 {
		return errors.Errorf("outgoing reset request has an odd trailing stream id byte")
	}

	p.reconfigRequestSequenceNumber = binary.BigEndian.Uint32(raw[0:])
	p.reconfigResponseSequenceNumber = binary.BigEndian.Uint32(raw[4:])
	p.senderLastTSN = binary.BigEndian.Uint32(raw[8:])

	p.streamIdentifiers = nil
	for i := outgoingResetRequestFixedLength; i+2 <= len(raw); i += 2 {
		p.streamIdentifiers = append(p.streamIdentifiers, binary.BigEndian.Uint16(raw[i:]))
	}
	return nil
}

func (p *paramOutgoingResetRequest) marshal() ([]byte, error) {
	raw := make([]byte, outgoingResetRequestFixedLength+2*len(p.streamIdentifiers))
	binary.BigEndian.PutUint32(raw[0:], p.reconfigRequestSequenceNumber)
	binary.BigEndian.PutUint32(raw[4:], p.reconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(raw[8:], p.senderLastTSN)
	for i, sid := range p.streamIdentifiers {
		binary.BigEndian.PutUint16(raw[outgoingResetRequestFixedLength+2*i:], sid)
	}

	h := paramHeader{typ: ptOutgoingResetRequest, raw: raw}
	return h.marshal(), nil
}

// paramReconfigResponse is the Re-configuration Response Parameter
// (type 0x0010): the peer's answer to an Outgoing/Incoming Reset Request or
// an Add Streams request.
type paramReconfigResponse struct {
	reconfigResponseSequenceNumber uint32
	result                         reconfigResult
}

const reconfigResponseLength = 8

func (p *paramReconfigResponse) unmarshalValue(raw []byte) error {
	if len(raw) < reconfigResponseLength {
		return errors.Errorf("reconfig response needs %d bytes, got %d", reconfigResponseLength, len(raw))
	}
	p.reconfigResponseSequenceNumber = binary.BigEndian.Uint32(raw[0:])
	p.result = reconfigResult(binary.BigEndian.Uint32(raw[4:]))
	return nil
}

func (p *paramReconfigResponse) marshal() ([]byte, error) {
	raw := make([]byte, reconfigResponseLength)
	binary.BigEndian.PutUint32(raw[0:], p.reconfigResponseSequenceNumber)
	binary.BigEndian.PutUint32(raw[4:], uint32(p.result))
	h := paramHeader{typ: ptReconfigResponse, raw: raw}
	return h.marshal(), nil
}
