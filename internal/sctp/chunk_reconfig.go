package sctp

import (
	"github.com/pkg/errors"
)

// chunkReconfig carries one or more RE-CONFIG parameters (RFC 6525): most
// commonly an Outgoing Reset Request closing data-channel streams, answered
// by a Reconfig Response. Parameters are individually length-prefixed and
// 4-byte aligned; inter-parameter padding is not counted in any chunk or
// parameter length field.
type chunkReconfig struct {
	chunkHeader
	params []param
}

func (r *chunkReconfig) unmarshal(raw []byte) error {
	if err := r.chunkHeader.unmarshal(raw); err != nil {
		return err
	}

	r.params = nil
	body := r.chunkHeader.raw
	offset := 0
	for offset < len(body) {
		remaining := len(body) - offset
		if remaining < paramHeaderLength {
			return errors.Errorf("RE-CONFIG has %d trailing bytes, too short for a parameter header", remaining)
		}

		p, n, err := buildParam(body[offset:])
		if err != nil {
			return errors.Wrap(err, "parsing RE-CONFIG parameter")
		}
		r.params = append(r.params, p)
		offset += n + getPadding(n)
	}

	return nil
}

func (r *chunkReconfig) marshal() ([]byte, error) {
	var body []byte
	for idx, p := range r.params {
		b, err := p.marshal()
		if err != nil {
			return nil, errors.Wrap(err, "marshal RE-CONFIG parameter")
		}
		body = append(body, b...)
		if idx != len(r.params)-1 {
			body = append(body, make([]byte, getPadding(len(b)))...)
		}
	}

	r.chunkHeader.typ = ctReconfig
	r.chunkHeader.raw = body
	return r.chunkHeader.marshal()
}

func (r *chunkReconfig) check() (bool, error) {
	return false, nil
}

// outgoingResetRequests returns every Outgoing Reset Request parameter
// carried by this chunk.
func (r *chunkReconfig) outgoingResetRequests() []*paramOutgoingResetRequest {
	var out []*paramOutgoingResetRequest
	for _, p := range r.params {
		if req, ok := p.(*paramOutgoingResetRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

// responses returns every Reconfig Response parameter carried by this chunk.
func (r *chunkReconfig) responses() []*paramReconfigResponse {
	var out []*paramReconfigResponse
	for _, p := range r.params {
		if resp, ok := p.(*paramReconfigResponse); ok {
			out = append(out, resp)
		}
	}
	return out
}
