package sctp

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// chunkType identifies the kind of an SCTP chunk, RFC 4960 section 3.2 plus
// the RE-CONFIG (RFC 6525) and FORWARD-TSN (RFC 3758) extensions.
type chunkType uint8

const (
	ctPayloadData      chunkType = 0
	ctInit             chunkType = 1
	ctInitAck          chunkType = 2
	ctSack             chunkType = 3
	ctHeartbeat        chunkType = 4
	ctHeartbeatAck     chunkType = 5
	ctAbort            chunkType = 6
	ctShutdown         chunkType = 7
	ctShutdownAck      chunkType = 8
	ctError            chunkType = 9
	ctCookieEcho       chunkType = 10
	ctCookieAck        chunkType = 11
	ctEcne             chunkType = 12
	ctCwr              chunkType = 13
	ctShutdownComplete chunkType = 14
	ctReconfig         chunkType = 0x82
	ctForwardTSN       chunkType = 0xC0
)

// chunkTypeReportMask and chunkTypeSkipMask are applied to the Type field of
// an unrecognized chunk, per RFC 4960 section 3.2: the top two bits of the
// chunk type tell the receiver what to do when the type is unknown.
const (
	chunkTypeReportMask = 0x40
	chunkTypeSkipMask   = 0x80
)

func (c chunkType) String() string {
	switch c {
	case ctPayloadData:
		return "DATA"
	case ctInit:
		return "INIT"
	case ctInitAck:
		return "INIT-ACK"
	case ctSack:
		return "SACK"
	case ctHeartbeat:
		return "HEARTBEAT"
	case ctHeartbeatAck:
		return "HEARTBEAT-ACK"
	case ctAbort:
		return "ABORT"
	case ctShutdown:
		return "SHUTDOWN"
	case ctShutdownAck:
		return "SHUTDOWN-ACK"
	case ctError:
		return "ERROR"
	case ctCookieEcho:
		return "COOKIE-ECHO"
	case ctCookieAck:
		return "COOKIE-ACK"
	case ctEcne:
		return "ECNE"
	case ctCwr:
		return "CWR"
	case ctShutdownComplete:
		return "SHUTDOWN-COMPLETE"
	case ctReconfig:
		return "RE-CONFIG"
	case ctForwardTSN:
		return "FORWARD-TSN"
	default:
		return fmt.Sprintf("unknown chunk type %d", uint8(c))
	}
}

const chunkHeaderSize = 4

// chunkHeader is the common {type, flags, length} prefix every chunk carries.
// raw holds the chunk value with any trailing padding stripped.
type chunkHeader struct {
	typ   chunkType
	flags byte
	raw   []byte
}

func (c *chunkHeader) unmarshal(raw []byte) error {
	if len(raw) < chunkHeaderSize {
		return errors.Errorf("chunk header needs %d bytes, got %d", chunkHeaderSize, len(raw))
	}

	c.typ = chunkType(raw[0])
	c.flags = raw[1]
	length := binary.BigEndian.Uint16(raw[2:])
	if int(length) < chunkHeaderSize {
		return errors.Errorf("chunk length %d is shorter than the chunk header", length)
	}

	valueLength := int(length) - chunkHeaderSize
	if valueLength > len(raw)-chunkHeaderSize {
		return errors.Errorf("chunk length %d claims more data than the %d bytes available", length, len(raw)-chunkHeaderSize)
	}

	// RFC 4960 3.2: padding bytes past the declared length must be zero but
	// are never counted in length. Validate any that fit within raw.
	paddingStart := chunkHeaderSize + valueLength
	paddingEnd := paddingStart + getPadding(valueLength)
	if paddingEnd > len(raw) {
		paddingEnd = len(raw)
	}
	for i := paddingStart; i < paddingEnd; i++ {
		if raw[i] != 0 {
			return errors.Errorf("non-zero chunk padding at offset %d", i)
		}
	}

	c.raw = raw[chunkHeaderSize : chunkHeaderSize+valueLength]
	return nil
}

func (c *chunkHeader) marshal() ([]byte, error) {
	length := chunkHeaderSize + len(c.raw)
	out := make([]byte, length+getPadding(length))
	out[0] = uint8(c.typ)
	out[1] = c.flags
	binary.BigEndian.PutUint16(out[2:], uint16(length))
	copy(out[chunkHeaderSize:], c.raw)
	return out, nil
}

func (c *chunkHeader) valueLength() int {
	return len(c.raw)
}

// chunk is implemented by every concrete chunk type. check reports whether
// receiving the chunk ends the association (ABORT and SHUTDOWN-COMPLETE do),
// alongside an error for a chunk that fails validation.
type chunk interface {
	unmarshal(raw []byte) error
	marshal() ([]byte, error)
	check() (abort bool, err error)
	valueLength() int
}

func parseChunk(raw []byte) (chunk, error) {
	if len(raw) < chunkHeaderSize {
		return nil, errors.Errorf("not enough data for a chunk header: %d bytes", len(raw))
	}

	var c chunk
	switch chunkType(raw[0]) {
	case ctInit:
		c = &chunkInit{}
	case ctInitAck:
		c = &chunkInitAck{}
	case ctAbort:
		c = &chunkAbort{}
	case ctCookieEcho:
		c = &chunkCookieEcho{}
	case ctCookieAck:
		c = &chunkCookieAck{}
	case ctHeartbeat:
		c = &chunkHeartbeat{}
	case ctHeartbeatAck:
		c = &chunkHeartbeatAck{}
	case ctPayloadData:
		c = &chunkPayloadData{}
	case ctSack:
		c = &chunkSelectiveAck{}
	case ctShutdown:
		c = &chunkShutdown{}
	case ctShutdownAck:
		c = &chunkShutdownAck{}
	case ctShutdownComplete:
		c = &chunkShutdownComplete{}
	case ctError:
		c = &chunkError{}
	case ctReconfig:
		c = &chunkReconfig{}
	case ctForwardTSN:
		c = &chunkForwardTSN{}
	default:
		return nil, unknownChunkTypeError{typ: chunkType(raw[0]), flags: raw[1]}
	}

	if err := c.unmarshal(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// unknownChunkTypeError is returned by parseChunk for a chunk type this
// association does not implement. reportError/skip tells the caller which of
// the two top bits of the type byte were set, per RFC 4960 section 3.2.
type unknownChunkTypeError struct {
	typ   chunkType
	flags byte
}

func (e unknownChunkTypeError) Error() string {
	return fmt.Sprintf("unrecognized chunk type %d", uint8(e.typ))
}

// reportError reports whether the sender asked (via the top bits of the
// chunk type) for an ERROR chunk to be generated for this unrecognized type.
func (e unknownChunkTypeError) reportError() bool {
	return uint8(e.typ)&chunkTypeReportMask != 0
}

// skip reports whether the chunk should be silently skipped rather than
// aborting the whole packet.
func (e unknownChunkTypeError) skip() bool {
	return uint8(e.typ)&chunkTypeSkipMask != 0
}
