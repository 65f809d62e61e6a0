package sctp

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

// packetHeaderSize is the 12-byte SCTP common header: source port,
// destination port, verification tag, checksum.
const packetHeaderSize = 12

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// packet is one SCTP packet: the common header plus one or more chunks.
// Ports are always zero on a DTLS-carried association (the data channel spec
// does not use them) but are preserved for wire fidelity.
type packet struct {
	sourcePort      uint16
	destinationPort uint16
	verificationTag uint32
	chunks          []chunk
}

func (p *packet) unmarshal(raw []byte) error {
	if len(raw) < packetHeaderSize {
		return errors.Errorf("packet needs %d bytes, got %d", packetHeaderSize, len(raw))
	}

	theirChecksum := binary.LittleEndian.Uint32(raw[8:12])
	if ourChecksum := generatePacketChecksum(raw); theirChecksum != ourChecksum {
		return errors.Errorf("checksum mismatch: theirs %d ours %d", theirChecksum, ourChecksum)
	}

	p.sourcePort = binary.BigEndian.Uint16(raw[0:])
	p.destinationPort = binary.BigEndian.Uint16(raw[2:])
	p.verificationTag = binary.BigEndian.Uint32(raw[4:])

	p.chunks = nil
	offset := packetHeaderSize
	for offset != len(raw) {
		if offset+chunkHeaderSize > len(raw) {
			return errors.Errorf("trailing %d bytes too short for a chunk header", len(raw)-offset)
		}

		c, err := parseChunk(raw[offset:])
		if err != nil {
			if unknown, ok := err.(unknownChunkTypeError); ok && unknown.skip() {
				length := int(binary.BigEndian.Uint16(raw[offset+2:]))
				offset += length + getPadding(length)
				continue
			}
			return err
		}

		valueLength := c.valueLength()
		p.chunks = append(p.chunks, c)
		offset += chunkHeaderSize + valueLength + getPadding(chunkHeaderSize+valueLength)
	}

	return nil
}

func (p *packet) marshal() ([]byte, error) {
	raw := make([]byte, packetHeaderSize)
	binary.BigEndian.PutUint16(raw[0:], p.sourcePort)
	binary.BigEndian.PutUint16(raw[2:], p.destinationPort)
	binary.BigEndian.PutUint32(raw[4:], p.verificationTag)

	for _, c := range p.chunks {
		chunkRaw, err := c.marshal()
		if err != nil {
			return nil, errors.Wrap(err, "marshal chunk")
		}
		raw = append(raw, chunkRaw...)
	}

	binary.LittleEndian.PutUint32(raw[8:12], generatePacketChecksum(raw))
	return raw, nil
}

// generatePacketChecksum computes the RFC 4960 Adler-32-replacement CRC32c
// checksum over raw with the checksum field itself zeroed.
func generatePacketChecksum(raw []byte) uint32 {
	headerCopy := make([]byte, packetHeaderSize)
	copy(headerCopy, raw[:packetHeaderSize])
	for i := 8; i < 12; i++ {
		headerCopy[i] = 0
	}

	h := crc32.New(crc32cTable)
	_, _ = h.Write(headerCopy)
	_, _ = h.Write(raw[packetHeaderSize:])
	return h.Sum32()
}
