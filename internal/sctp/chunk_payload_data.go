package sctp

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// PayloadProtocolIdentifier is the SCTP PPID data channels use to tag each
// DATA chunk's content type, RFC 8831 section 8.
type PayloadProtocolIdentifier uint32

// PayloadProtocolIdentifier values used by the WebRTC data channel protocol.
const (
	PayloadTypeWebRTCDCEP        PayloadProtocolIdentifier = 50
	PayloadTypeWebRTCString      PayloadProtocolIdentifier = 51
	PayloadTypeWebRTCBinary      PayloadProtocolIdentifier = 53
	PayloadTypeWebRTCStringEmpty PayloadProtocolIdentifier = 56
	PayloadTypeWebRTCBinaryEmpty PayloadProtocolIdentifier = 57
)

func (p PayloadProtocolIdentifier) String() string {
	switch p {
	case PayloadTypeWebRTCDCEP:
		return "WebRTC DCEP"
	case PayloadTypeWebRTCString:
		return "WebRTC String"
	case PayloadTypeWebRTCBinary:
		return "WebRTC Binary"
	case PayloadTypeWebRTCStringEmpty:
		return "WebRTC String (Empty)"
	case PayloadTypeWebRTCBinaryEmpty:
		return "WebRTC Binary (Empty)"
	default:
		return fmt.Sprintf("unknown PPID %d", uint32(p))
	}
}

const (
	payloadDataEndingFragmentBitmask   = 1 << 0
	payloadDataBeginningFragmentBitmask = 1 << 1
	payloadDataUnorderedBitmask        = 1 << 2
	payloadDataImmediateSackBitmask    = 1 << 3

	payloadDataHeaderLength = 12
)

// chunkPayloadData is a DATA chunk, RFC 4960 section 3.3.1. It is also the
// unit FORWARD-TSN abandons and RE-CONFIG's last_tsn is measured against.
type chunkPayloadData struct {
	chunkHeader

	unordered         bool
	beginningFragment bool
	endingFragment    bool
	immediateSack     bool

	tsn                  uint32
	streamIdentifier     uint16
	streamSequenceNumber uint16
	payloadType          PayloadProtocolIdentifier
	userData             []byte

	// abandoned marks a chunk as abandoned under partial reliability. It is
	// set by abandonStaleChunks, which folds the chunk into the FORWARD-TSN
	// it builds; the chunk stays in the inflight queue and T3
	// retransmission does not check the flag.
	abandoned bool

	// retransmissions counts how many times the T3 timer has requeued this
	// chunk, for comparison against a max_retransmits limit.
	retransmissions int
}

func (p *chunkPayloadData) unmarshal(raw []byte) error {
	if err := p.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if len(p.chunkHeader.raw) < payloadDataHeaderLength {
		return errors.Errorf("DATA chunk needs %d bytes, got %d", payloadDataHeaderLength, len(p.chunkHeader.raw))
	}

	p.immediateSack = p.flags&payloadDataImmediateSackBitmask != 0
	p.unordered = p.flags&payloadDataUnorderedBitmask != 0
	p.beginningFragment = p.flags&payloadDataBeginningFragmentBitmask != 0
	p.endingFragment = p.flags&payloadDataEndingFragmentBitmask != 0

	raw = p.chunkHeader.raw
	p.tsn = binary.BigEndian.Uint32(raw[0:])
	p.streamIdentifier = binary.BigEndian.Uint16(raw[4:])
	p.streamSequenceNumber = binary.BigEndian.Uint16(raw[6:])
	p.payloadType = PayloadProtocolIdentifier(binary.BigEndian.Uint32(raw[8:]))
	p.userData = raw[payloadDataHeaderLength:]

	return nil
}

func (p *chunkPayloadData) marshal() ([]byte, error) {
	raw := make([]byte, payloadDataHeaderLength+len(p.userData))
	binary.BigEndian.PutUint32(raw[0:], p.tsn)
	binary.BigEndian.PutUint16(raw[4:], p.streamIdentifier)
	binary.BigEndian.PutUint16(raw[6:], p.streamSequenceNumber)
	binary.BigEndian.PutUint32(raw[8:], uint32(p.payloadType))
	copy(raw[payloadDataHeaderLength:], p.userData)

	var flags byte
	if p.endingFragment {
		flags |= payloadDataEndingFragmentBitmask
	}
	if p.beginningFragment {
		flags |= payloadDataBeginningFragmentBitmask
	}
	if p.unordered {
		flags |= payloadDataUnorderedBitmask
	}
	if p.immediateSack {
		flags |= payloadDataImmediateSackBitmask
	}

	p.chunkHeader.typ = ctPayloadData
	p.chunkHeader.flags = flags
	p.chunkHeader.raw = raw
	return p.chunkHeader.marshal()
}

func (p *chunkPayloadData) check() (bool, error) {
	return false, nil
}
