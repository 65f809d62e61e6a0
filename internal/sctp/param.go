package sctp

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// paramType is the Type field of an SCTP variable-length parameter
// (RFC 4960 section 3.2.1) plus the RE-CONFIG (RFC 6525) parameter types.
type paramType uint16

const (
	ptHeartbeatInfo        paramType = 1
	ptIPv4Addr             paramType = 5
	ptIPv6Addr             paramType = 6
	ptStateCookie          paramType = 7
	ptUnrecognizedParam    paramType = 8
	ptCookiePreservative   paramType = 9
	ptHostNameAddr         paramType = 11
	ptSupportedAddrTypes   paramType = 12
	ptOutgoingResetRequest paramType = 0x000D
	ptIncomingResetRequest paramType = 0x000E
	ptSSNTSNResetRequest   paramType = 0x000F
	ptReconfigResponse     paramType = 0x0010
	ptAddOutgoingStreams   paramType = 0x0011
	ptAddIncomingStreams   paramType = 0x0012
	ptRandom               paramType = 0x8002
	ptChunkList            paramType = 0x8003
	ptRequestedHMACAlgo    paramType = 0x8004
	ptSupportedExtensions  paramType = 0x8008
	ptForwardTSNSupported  paramType = 0xC000
)

func (p paramType) String() string {
	switch p {
	case ptHeartbeatInfo:
		return "Heartbeat Info"
	case ptIPv4Addr:
		return "IPv4 Address"
	case ptIPv6Addr:
		return "IPv6 Address"
	case ptStateCookie:
		return "State Cookie"
	case ptUnrecognizedParam:
		return "Unrecognized Parameters"
	case ptCookiePreservative:
		return "Cookie Preservative"
	case ptHostNameAddr:
		return "Host Name Address"
	case ptSupportedAddrTypes:
		return "Supported Address Types"
	case ptOutgoingResetRequest:
		return "Outgoing SSN Reset Request"
	case ptIncomingResetRequest:
		return "Incoming SSN Reset Request"
	case ptSSNTSNResetRequest:
		return "SSN/TSN Reset Request"
	case ptReconfigResponse:
		return "Re-configuration Response"
	case ptAddOutgoingStreams:
		return "Add Outgoing Streams Request"
	case ptAddIncomingStreams:
		return "Add Incoming Streams Request"
	case ptRandom:
		return "Random"
	case ptChunkList:
		return "Chunk List"
	case ptRequestedHMACAlgo:
		return "Requested HMAC Algorithm"
	case ptSupportedExtensions:
		return "Supported Extensions"
	case ptForwardTSNSupported:
		return "Forward TSN Supported"
	default:
		return fmt.Sprintf("unknown param type %d", uint16(p))
	}
}

const paramHeaderLength = 4

// paramHeader is the {type, length} prefix shared by every TLV parameter.
// raw holds the parameter value with any padding stripped.
type paramHeader struct {
	typ paramType
	raw []byte
}

// unmarshal parses the header and returns the total on-wire length
// (header + value, not including padding) so the caller can advance its
// offset through a parameter list.
func (p *paramHeader) unmarshal(raw []byte) (int, error) {
	if len(raw) < paramHeaderLength {
		return 0, errors.Errorf("parameter needs %d bytes, got %d", paramHeaderLength, len(raw))
	}

	p.typ = paramType(binary.BigEndian.Uint16(raw[0:]))
	length := int(binary.BigEndian.Uint16(raw[2:]))
	if length < paramHeaderLength {
		return 0, errors.Errorf("parameter length %d is shorter than its header", length)
	}
	if length > len(raw) {
		return 0, errors.Errorf("parameter claims %d bytes but only %d remain", length, len(raw))
	}

	p.raw = raw[paramHeaderLength:length]
	return length, nil
}

func (p *paramHeader) marshal() []byte {
	length := paramHeaderLength + len(p.raw)
	out := make([]byte, length)
	binary.BigEndian.PutUint16(out[0:], uint16(p.typ))
	binary.BigEndian.PutUint16(out[2:], uint16(length))
	copy(out[paramHeaderLength:], p.raw)
	return out
}

// param is implemented by every concrete optional/variable-length parameter.
type param interface {
	marshal() ([]byte, error)
}

// buildParam constructs the concrete parameter from its raw TLV bytes
// (header included), and returns its total on-wire length so the caller can
// advance through a parameter list. Unknown types come back as
// paramUnrecognized so callers can surface them inside an Unrecognized
// Parameter error cause instead of failing the whole chunk.
func buildParam(raw []byte) (param, int, error) {
	var h paramHeader
	length, err := h.unmarshal(raw)
	if err != nil {
		return nil, 0, err
	}

	var p param
	switch h.typ {
	case ptHeartbeatInfo:
		p = &paramHeartbeatInfo{info: h.raw}
	case ptStateCookie:
		p = &paramStateCookie{raw: h.raw}
	case ptRandom:
		p = &paramRandom{raw: h.raw}
	case ptRequestedHMACAlgo:
		v := &paramRequestedHMACAlgorithm{}
		if err := v.unmarshalValue(h.raw); err != nil {
			return nil, 0, err
		}
		p = v
	case ptChunkList:
		p = &paramChunkList{chunkTypes: bytesToChunkTypes(h.raw)}
	case ptSupportedExtensions:
		p = &paramSupportedExtensions{chunkTypes: bytesToChunkTypes(h.raw)}
	case ptForwardTSNSupported:
		p = &paramForwardTSNSupported{}
	case ptOutgoingResetRequest:
		v := &paramOutgoingResetRequest{}
		if err := v.unmarshalValue(h.raw); err != nil {
			return nil, 0, err
		}
		p = v
	case ptReconfigResponse:
		v := &paramReconfigResponse{}
		if err := v.unmarshalValue(h.raw); err != nil {
			return nil, 0, err
		}
		p = v
	default:
		p = &paramUnrecognized{typ: h.typ, raw: h.raw}
	}

	return p, length, nil
}

func bytesToChunkTypes(raw []byte) []chunkType {
	types := make([]chunkType, len(raw))
	for i, b := range raw {
		types[i] = chunkType(b)
	}
	return types
}

// paramRandom carries the RANDOM parameter used to seed the state cookie's
// HMAC; its value is opaque to this implementation.
type paramRandom struct {
	raw []byte
}

func (r *paramRandom) marshal() ([]byte, error) {
	h := paramHeader{typ: ptRandom, raw: r.raw}
	return h.marshal(), nil
}

// paramUnrecognized wraps any parameter type this implementation does not
// otherwise model, so it can be echoed back inside an Unrecognized
// Parameters error cause without losing the original bytes.
type paramUnrecognized struct {
	typ paramType
	raw []byte
}

func (u *paramUnrecognized) marshal() ([]byte, error) {
	h := paramHeader{typ: u.typ, raw: u.raw}
	return h.marshal(), nil
}
