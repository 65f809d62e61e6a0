package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// initChunkCommonLength is the size of the five mandatory fixed fields
// shared by INIT and INIT-ACK, ahead of their optional parameters.
const initChunkCommonLength = 16

// initCommon holds the fixed fields and optional parameters shared by INIT
// and INIT-ACK (RFC 4960 section 3.3.2/3.3.3).
type initCommon struct {
	initiateTag                    uint32
	advertisedReceiverWindowCredit uint32
	numOutboundStreams             uint16
	numInboundStreams              uint16
	initialTSN                     uint32
	params                         []param
}

func (i *initCommon) unmarshal(raw []byte) error {
	if len(raw) < initChunkCommonLength {
		return errors.Errorf("INIT/INIT-ACK body needs %d bytes, got %d", initChunkCommonLength, len(raw))
	}

	i.initiateTag = binary.BigEndian.Uint32(raw[0:])
	i.advertisedReceiverWindowCredit = binary.BigEndian.Uint32(raw[4:])
	i.numOutboundStreams = binary.BigEndian.Uint16(raw[8:])
	i.numInboundStreams = binary.BigEndian.Uint16(raw[10:])
	i.initialTSN = binary.BigEndian.Uint32(raw[12:])

	i.params = nil
	offset := initChunkCommonLength
	for offset < len(raw) {
		remaining := len(raw) - offset
		if remaining < paramHeaderLength {
			break
		}
		p, n, err := buildParam(raw[offset:])
		if err != nil {
			return errors.Wrap(err, "parsing INIT/INIT-ACK parameter")
		}
		i.params = append(i.params, p)
		offset += n + getPadding(n)
	}

	return nil
}

func (i *initCommon) marshal() ([]byte, error) {
	out := make([]byte, initChunkCommonLength)
	binary.BigEndian.PutUint32(out[0:], i.initiateTag)
	binary.BigEndian.PutUint32(out[4:], i.advertisedReceiverWindowCredit)
	binary.BigEndian.PutUint16(out[8:], i.numOutboundStreams)
	binary.BigEndian.PutUint16(out[10:], i.numInboundStreams)
	binary.BigEndian.PutUint32(out[12:], i.initialTSN)

	for idx, p := range i.params {
		b, err := p.marshal()
		if err != nil {
			return nil, errors.Wrap(err, "marshal INIT/INIT-ACK parameter")
		}
		out = append(out, b...)
		if idx != len(i.params)-1 {
			out = append(out, make([]byte, getPadding(len(b)))...)
		}
	}

	return out, nil
}

func (i *initCommon) stateCookie() ([]byte, bool) {
	for _, p := range i.params {
		if sc, ok := p.(*paramStateCookie); ok {
			return sc.raw, true
		}
	}
	return nil, false
}

// chunkInit is the first chunk of the 4-way handshake, sent CLOSED->COOKIE-WAIT.
type chunkInit struct {
	chunkHeader
	initCommon
}

func (c *chunkInit) unmarshal(raw []byte) error {
	if err := c.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if c.flags != 0 {
		return errors.New("INIT chunk flags must be zero")
	}
	return c.initCommon.unmarshal(c.chunkHeader.raw)
}

func (c *chunkInit) marshal() ([]byte, error) {
	body, err := c.initCommon.marshal()
	if err != nil {
		return nil, err
	}
	c.chunkHeader.typ = ctInit
	c.chunkHeader.flags = 0
	c.chunkHeader.raw = body
	return c.chunkHeader.marshal()
}

// check never asks for an abort. Whether an INIT/INIT-ACK is bundled with
// other chunks (RFC 4960 section 3.1) is not checked.
func (c *chunkInit) check() (bool, error) {
	return false, nil
}

// chunkInitAck answers an INIT carrying the passive side's own tag plus the
// state cookie the active side must echo back in COOKIE-ECHO.
type chunkInitAck struct {
	chunkHeader
	initCommon
}

func (c *chunkInitAck) unmarshal(raw []byte) error {
	if err := c.chunkHeader.unmarshal(raw); err != nil {
		return err
	}
	if err := c.initCommon.unmarshal(c.chunkHeader.raw); err != nil {
		return err
	}
	if _, ok := c.stateCookie(); !ok {
		return errors.New("INIT-ACK is missing a mandatory state cookie parameter")
	}
	return nil
}

func (c *chunkInitAck) marshal() ([]byte, error) {
	body, err := c.initCommon.marshal()
	if err != nil {
		return nil, err
	}
	c.chunkHeader.typ = ctInitAck
	c.chunkHeader.flags = 0
	c.chunkHeader.raw = body
	return c.chunkHeader.marshal()
}

func (c *chunkInitAck) check() (bool, error) {
	return false, nil
}
