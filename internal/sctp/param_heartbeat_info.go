package sctp

// paramHeartbeatInfo carries the opaque probe payload a HEARTBEAT expects to
// see echoed back unchanged in the matching HEARTBEAT-ACK.
type paramHeartbeatInfo struct {
	info []byte
}

func (h *paramHeartbeatInfo) marshal() ([]byte, error) {
	ph := paramHeader{typ: ptHeartbeatInfo, raw: h.info}
	return ph.marshal(), nil
}
