package sctp

// chunkCookieEcho carries the state cookie the active side received in
// INIT-ACK back to the passive side, which allocates its TCB only once the
// cookie's HMAC and freshness window both check out.
type chunkCookieEcho struct {
	chunkHeader
	cookie []byte
}

func (c *chunkCookieEcho) unmarshal(raw []byte) error {
	if err := c.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	c.cookie = c.chunkHeader.raw
	return nil
}

func (c *chunkCookieEcho) marshal() ([]byte, error) {
	c.chunkHeader.typ = ctCookieEcho
	c.chunkHeader.raw = c.cookie
	return c.chunkHeader.marshal()
}

func (c *chunkCookieEcho) check() (bool, error) {
	return false, nil
}

// chunkCookieAck completes the 4-way handshake: COOKIE-ECHOED->ESTABLISHED.
type chunkCookieAck struct {
	chunkHeader
}

func (c *chunkCookieAck) unmarshal(raw []byte) error {
	return c.chunkHeader.unmarshal(raw)
}

func (c *chunkCookieAck) marshal() ([]byte, error) {
	c.chunkHeader.typ = ctCookieAck
	c.chunkHeader.raw = nil
	return c.chunkHeader.marshal()
}

func (c *chunkCookieAck) check() (bool, error) {
	return false, nil
}
