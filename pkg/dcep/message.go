// Package dcep implements the wire framing of the DataChannel
// Establishment Protocol: the DATA_CHANNEL_OPEN/DATA_CHANNEL_ACK messages
// exchanged on an SCTP stream before it carries ordinary data, per RFC 8832.
// It deliberately stops at framing — no label/protocol/priority surface is
// exposed to callers beyond what Marshal/Unmarshal need.
package dcep

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Message is a parsed DataChannel message
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// MessageType is the first byte in a DataChannel message that specifies type
type MessageType byte

// DataChannel Message Types
const (
	DataChannelAck  MessageType = 0x02
	DataChannelOpen MessageType = 0x03
)

// ChannelType is the Channel Type field of a DATA_CHANNEL_OPEN message,
// RFC 8832 section 5.1.
type ChannelType byte

// Channel Types
const (
	ChannelTypeReliable                        ChannelType = 0x00
	ChannelTypeReliableUnordered               ChannelType = 0x80
	ChannelTypePartialReliableRexmit           ChannelType = 0x01
	ChannelTypePartialReliableRexmitUnordered  ChannelType = 0x81
	ChannelTypePartialReliableTimed            ChannelType = 0x02
	ChannelTypePartialReliableTimedUnordered   ChannelType = 0x82
)

// Parse accepts raw input and returns a DataChannel message
func Parse(raw []byte) (Message, error) {
	if len(raw) == 0 {
		return nil, errors.Errorf("DataChannel message is not long enough to determine type ")
	}

	var msg Message
	switch MessageType(raw[0]) {
	case DataChannelOpen:
		msg = &ChannelOpen{}
	case DataChannelAck:
		msg = &ChannelAck{}
	default:
		return nil, errors.Errorf("Unknown MessageType %v", MessageType(raw[0]))
	}

	if err := msg.Unmarshal(raw); err != nil {
		return nil, err
	}

	return msg, nil
}

// ParseExpectDataChannelOpen parses raw as a DATA_CHANNEL_OPEN message or
// fails if it is any other message type.
func ParseExpectDataChannelOpen(raw []byte) (*ChannelOpen, error) {
	msg, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	open, ok := msg.(*ChannelOpen)
	if !ok {
		return nil, errors.Errorf("expected DATA_CHANNEL_OPEN, got %T", msg)
	}

	return open, nil
}

// ParseExpectDataChannelAck parses raw as a DATA_CHANNEL_ACK message or
// fails if it is any other message type.
func ParseExpectDataChannelAck(raw []byte) (*ChannelAck, error) {
	msg, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	ack, ok := msg.(*ChannelAck)
	if !ok {
		return nil, errors.Errorf("expected DATA_CHANNEL_ACK, got %T", msg)
	}

	return ack, nil
}

/*
ChannelOpen represents a DATA_CHANNEL_OPEN message.

 0                   1                   2                   3
 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|  Message Type |  Channel Type |            Priority           |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|                    Reliability Parameter                      |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|         Label Length          |       Protocol Length         |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|                                                               |
|                             Label                             |
|                                                               |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|                                                               |
|                            Protocol                           |
|                                                               |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
type ChannelOpen struct {
	ChannelType          ChannelType
	Priority             uint16
	ReliabilityParameter uint32

	Label    []byte
	Protocol []byte
}

const channelOpenHeaderLength = 12

// Marshal returns raw bytes for the given message
func (c *ChannelOpen) Marshal() ([]byte, error) {
	raw := make([]byte, channelOpenHeaderLength+len(c.Label)+len(c.Protocol))

	raw[0] = uint8(DataChannelOpen)
	raw[1] = byte(c.ChannelType)
	binary.BigEndian.PutUint16(raw[2:], c.Priority)
	binary.BigEndian.PutUint32(raw[4:], c.ReliabilityParameter)
	binary.BigEndian.PutUint16(raw[8:], uint16(len(c.Label)))
	binary.BigEndian.PutUint16(raw[10:], uint16(len(c.Protocol)))
	copy(raw[channelOpenHeaderLength:], c.Label)
	copy(raw[channelOpenHeaderLength+len(c.Label):], c.Protocol)

	return raw, nil
}

// Unmarshal populates the struct with the given raw data
func (c *ChannelOpen) Unmarshal(raw []byte) error {
	if len(raw) < channelOpenHeaderLength {
		return errors.Errorf("Length of input is not long enough to satisfy header %d", len(raw))
	}

	c.ChannelType = ChannelType(raw[1])
	c.Priority = binary.BigEndian.Uint16(raw[2:])
	c.ReliabilityParameter = binary.BigEndian.Uint32(raw[4:])

	labelLength := binary.BigEndian.Uint16(raw[8:])
	protocolLength := binary.BigEndian.Uint16(raw[10:])

	if len(raw) != int(channelOpenHeaderLength+labelLength+protocolLength) {
		return errors.Errorf("Label + Protocol length don't match full packet length")
	}

	c.Label = raw[channelOpenHeaderLength : channelOpenHeaderLength+labelLength]
	c.Protocol = raw[channelOpenHeaderLength+labelLength : channelOpenHeaderLength+labelLength+protocolLength]

	return nil
}

// ChannelAck represents a DATA_CHANNEL_ACK message
type ChannelAck struct{}

const channelOpenAckLength = 4

// Marshal returns raw bytes for the given message
func (c *ChannelAck) Marshal() ([]byte, error) {
	raw := make([]byte, channelOpenAckLength)
	raw[0] = uint8(DataChannelAck)

	return raw, nil
}

// Unmarshal populates the struct with the given raw data. ChannelAck carries
// no fields; the message type is already validated by Parse.
func (c *ChannelAck) Unmarshal(raw []byte) error {
	return nil
}
