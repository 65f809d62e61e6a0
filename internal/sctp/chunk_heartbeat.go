package sctp

import (
	"github.com/pkg/errors"
)

// chunkHeartbeat probes reachability of the peer; its Heartbeat Info
// parameter is opaque to the peer and must be echoed back verbatim in the
// matching HEARTBEAT-ACK.
type chunkHeartbeat struct {
	chunkHeader
	info []byte
}

func (h *chunkHeartbeat) unmarshal(raw []byte) error {
	if err := h.chunkHeader.unmarshal(raw); err != nil {
		return err
	}

	p, n, err := buildParam(h.chunkHeader.raw)
	if err != nil {
		return errors.Wrap(err, "parsing HEARTBEAT info parameter")
	}
	if n != len(h.chunkHeader.raw) {
		return errors.New("HEARTBEAT must carry exactly one parameter")
	}
	info, ok := p.(*paramHeartbeatInfo)
	if !ok {
		return errors.New("HEARTBEAT parameter is not Heartbeat Info")
	}
	h.info = info.info
	return nil
}

func (h *chunkHeartbeat) marshal() ([]byte, error) {
	p := &paramHeartbeatInfo{info: h.info}
	body, err := p.marshal()
	if err != nil {
		return nil, err
	}
	h.chunkHeader.typ = ctHeartbeat
	h.chunkHeader.raw = body
	return h.chunkHeader.marshal()
}

func (h *chunkHeartbeat) check() (bool, error) {
	return false, nil
}

// chunkHeartbeatAck replies to a HEARTBEAT with the same opaque info.
type chunkHeartbeatAck struct {
	chunkHeader
	info []byte
}

func (h *chunkHeartbeatAck) unmarshal(raw []byte) error {
	if err := h.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if len(h.chunkHeader.raw) < paramHeaderLength {
		return errors.New("HEARTBEAT-ACK is too short to carry Heartbeat Info")
	}
	h.info = h.chunkHeader.raw[paramHeaderLength:]
	return nil
}

func (h *chunkHeartbeatAck) marshal() ([]byte, error) {
	p := &paramHeartbeatInfo{info: h.info}
	body, err := p.marshal()
	if err != nil {
		return nil, err
	}
	h.chunkHeader.typ = ctHeartbeatAck
	h.chunkHeader.raw = body
	return h.chunkHeader.marshal()
}

func (h *chunkHeartbeatAck) check() (bool, error) {
	return false, nil
}
