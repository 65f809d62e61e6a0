package sctp

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// errorCauseCode identifies the reason carried by an ERROR or ABORT chunk,
// RFC 4960 section 3.3.10.
type errorCauseCode uint16

const (
	causeInvalidStreamIdentifier      errorCauseCode = 1
	causeMissingMandatoryParameter    errorCauseCode = 2
	causeStaleCookieError             errorCauseCode = 3
	causeOutOfResource                errorCauseCode = 4
	causeUnresolvableAddress          errorCauseCode = 5
	causeUnrecognizedChunkType        errorCauseCode = 6
	causeInvalidMandatoryParameter    errorCauseCode = 7
	causeUnrecognizedParameters       errorCauseCode = 8
	causeNoUserData                   errorCauseCode = 9
	causeCookieReceivedWhileShutdown  errorCauseCode = 10
	causeRestartAssociationNewAddrs   errorCauseCode = 11
	causeUserInitiatedAbort           errorCauseCode = 12
	causeProtocolViolation            errorCauseCode = 13
)

func (c errorCauseCode) String() string {
	switch c {
	case causeInvalidStreamIdentifier:
		return "Invalid Stream Identifier"
	case causeMissingMandatoryParameter:
		return "Missing Mandatory Parameter"
	case causeStaleCookieError:
		return "Stale Cookie Error"
	case causeOutOfResource:
		return "Out of Resource"
	case causeUnresolvableAddress:
		return "Unresolvable Address"
	case causeUnrecognizedChunkType:
		return "Unrecognized Chunk Type"
	case causeInvalidMandatoryParameter:
		return "Invalid Mandatory Parameter"
	case causeUnrecognizedParameters:
		return "Unrecognized Parameters"
	case causeNoUserData:
		return "No User Data"
	case causeCookieReceivedWhileShutdown:
		return "Cookie Received While Shutting Down"
	case causeRestartAssociationNewAddrs:
		return "Restart of an Association with New Addresses"
	case causeUserInitiatedAbort:
		return "User-Initiated Abort"
	case causeProtocolViolation:
		return "Protocol Violation"
	default:
		return fmt.Sprintf("unknown error cause %d", uint16(c))
	}
}

const errorCauseHeaderLength = 4

// errorCause is implemented by every concrete cause a chunk can carry.
type errorCause interface {
	marshal() ([]byte, error)
	length() int
}

// parseErrorCause dispatches on the cause code, returning the cause and its
// total on-wire length (including any trailing padding) so callers can walk
// a cause list.
func parseErrorCause(raw []byte) (errorCause, int, error) {
	if len(raw) < errorCauseHeaderLength {
		return nil, 0, errors.Errorf("error cause needs %d bytes, got %d", errorCauseHeaderLength, len(raw))
	}

	code := errorCauseCode(binary.BigEndian.Uint16(raw[0:]))
	causeLength := int(binary.BigEndian.Uint16(raw[2:]))
	if causeLength < errorCauseHeaderLength || causeLength > len(raw) {
		return nil, 0, errors.Errorf("error cause length %d invalid for %d bytes available", causeLength, len(raw))
	}
	value := raw[errorCauseHeaderLength:causeLength]

	var c errorCause
	switch code {
	case causeInvalidMandatoryParameter:
		c = &causeInvalidMandatoryParam{}
	case causeUnrecognizedChunkType:
		c = &causeUnrecognizedChunk{unrecognizedChunk: append([]byte(nil), value...)}
	case causeProtocolViolation:
		c = &causeProtocolViolationDetail{additionalInfo: append([]byte(nil), value...)}
	case causeStaleCookieError:
		c = &causeStaleCookie{}
	default:
		c = &causeGeneric{code: code, value: append([]byte(nil), value...)}
	}

	total := causeLength + getPadding(causeLength)
	if total > len(raw) {
		total = len(raw)
	}
	return c, total, nil
}

func marshalCause(code errorCauseCode, value []byte) []byte {
	length := errorCauseHeaderLength + len(value)
	out := make([]byte, length+getPadding(length))
	binary.BigEndian.PutUint16(out[0:], uint16(code))
	binary.BigEndian.PutUint16(out[2:], uint16(length))
	copy(out[errorCauseHeaderLength:], value)
	return out
}

// causeInvalidMandatoryParam signals that a mandatory parameter's value
// failed validation.
type causeInvalidMandatoryParam struct{}

func (c *causeInvalidMandatoryParam) marshal() ([]byte, error) {
	return marshalCause(causeInvalidMandatoryParameter, nil), nil
}

func (c *causeInvalidMandatoryParam) length() int { return errorCauseHeaderLength }

// causeUnrecognizedChunk echoes the offending chunk's header+value back to
// the sender, per RFC 4960 section 3.3.10.6.
type causeUnrecognizedChunk struct {
	unrecognizedChunk []byte
}

func (c *causeUnrecognizedChunk) marshal() ([]byte, error) {
	return marshalCause(causeUnrecognizedChunkType, c.unrecognizedChunk), nil
}

func (c *causeUnrecognizedChunk) length() int {
	return errorCauseHeaderLength + len(c.unrecognizedChunk)
}

// causeProtocolViolationDetail is a free-form diagnostic string used when no
// more specific cause applies.
type causeProtocolViolationDetail struct {
	additionalInfo []byte
}

func (c *causeProtocolViolationDetail) marshal() ([]byte, error) {
	return marshalCause(causeProtocolViolation, c.additionalInfo), nil
}

func (c *causeProtocolViolationDetail) length() int {
	return errorCauseHeaderLength + len(c.additionalInfo)
}

// causeStaleCookie reports that a COOKIE-ECHO arrived after its state
// cookie's freshness window elapsed.
type causeStaleCookie struct {
	measureOfStaleness uint32
}

func (c *causeStaleCookie) marshal() ([]byte, error) {
	value := make([]byte, 4)
	binary.BigEndian.PutUint32(value, c.measureOfStaleness)
	return marshalCause(causeStaleCookieError, value), nil
}

func (c *causeStaleCookie) length() int { return errorCauseHeaderLength + 4 }

// causeGeneric carries any cause code this package does not model with a
// dedicated type; it preserves the raw value for round-tripping.
type causeGeneric struct {
	code  errorCauseCode
	value []byte
}

func (c *causeGeneric) marshal() ([]byte, error) {
	return marshalCause(c.code, c.value), nil
}

func (c *causeGeneric) length() int { return errorCauseHeaderLength + len(c.value) }
