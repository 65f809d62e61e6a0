// +build !js

package webrtc

import (
	"fmt"

	"github.com/webrtc-core/rtcstack/internal/sctp"
	"github.com/webrtc-core/rtcstack/pkg/dcep"
)

const dataChannelReceiveMTU = 8192

// DataChannelConfig carries the DCEP parameters a DataChannel is opened
// with. It is wire framing only: label/priority exist here because
// DATA_CHANNEL_OPEN must carry them on the stream, not to expose a
// user-facing DataChannel API. The protocol field of DATA_CHANNEL_OPEN is
// always sent empty.
type DataChannelConfig struct {
	ChannelType          dcep.ChannelType
	Priority             uint16
	ReliabilityParameter uint32
	Label                string
}

// DataChannel wraps a single SCTP stream carrying the DCEP open/ack
// handshake ahead of ordinary reads and writes.
type DataChannel struct {
	Config DataChannelConfig

	stream *sctp.Stream
}

// DialDataChannel opens a new outbound stream on association and performs
// the DATA_CHANNEL_OPEN handshake as the active side.
func DialDataChannel(association *sctp.Association, streamIdentifier uint16, config *DataChannelConfig) (*DataChannel, error) {
	stream, err := association.OpenStream(streamIdentifier, sctp.PayloadTypeWebRTCBinary)
	if err != nil {
		return nil, err
	}

	return clientHandshake(stream, config)
}

func clientHandshake(stream *sctp.Stream, config *DataChannelConfig) (*DataChannel, error) {
	msg := &dcep.ChannelOpen{
		ChannelType:          config.ChannelType,
		Priority:             config.Priority,
		ReliabilityParameter: config.ReliabilityParameter,
		Label:                []byte(config.Label),
		Protocol:             []byte(""),
	}

	rawMsg, err := msg.Marshal()
	if err != nil {
		return nil, err
	}

	if _, err = stream.WriteSCTP(rawMsg, sctp.PayloadTypeWebRTCDCEP); err != nil {
		return nil, err
	}

	return &DataChannel{Config: *config, stream: stream}, nil
}

// AcceptDataChannel waits for the next inbound stream on association and
// performs the DATA_CHANNEL_OPEN/ACK handshake as the passive side.
func AcceptDataChannel(association *sctp.Association) (*DataChannel, error) {
	stream, err := association.AcceptStream()
	if err != nil {
		return nil, err
	}

	stream.SetDefaultPayloadType(sctp.PayloadTypeWebRTCBinary)

	return serverHandshake(stream)
}

func serverHandshake(stream *sctp.Stream) (*DataChannel, error) {
	buffer := make([]byte, dataChannelReceiveMTU)

	n, ppi, err := stream.ReadSCTP(buffer)
	if err != nil {
		return nil, err
	}

	if ppi != sctp.PayloadTypeWebRTCDCEP {
		return nil, fmt.Errorf("expected DCEP message, got payload protocol identifier %v", ppi)
	}

	openMsg, err := dcep.ParseExpectDataChannelOpen(buffer[:n])
	if err != nil {
		return nil, err
	}

	channel := &DataChannel{
		Config: DataChannelConfig{
			ChannelType:          openMsg.ChannelType,
			Priority:             openMsg.Priority,
			ReliabilityParameter: openMsg.ReliabilityParameter,
			Label:                string(openMsg.Label),
		},
		stream: stream,
	}

	if err = channel.writeDataChannelAck(); err != nil {
		return nil, err
	}

	return channel, nil
}

// StreamIdentifier returns the SCTP stream identifier carrying this channel.
func (d *DataChannel) StreamIdentifier() uint16 {
	return d.stream.StreamIdentifier()
}

// Read reads the next binary payload, blocking until one is available.
// DCEP control messages received inline (an ACK arriving after the
// handshake, or a duplicate OPEN retransmission) are consumed internally
// and never surfaced to the caller.
func (d *DataChannel) Read(p []byte) (int, error) {
	for {
		n, ppi, err := d.stream.ReadSCTP(p)
		if err != nil {
			return n, err
		}

		if ppi == sctp.PayloadTypeWebRTCDCEP {
			if err := d.handleDCEP(p[:n]); err != nil {
				return 0, err
			}

			continue
		}

		return n, nil
	}
}

func (d *DataChannel) handleDCEP(data []byte) error {
	msg, err := dcep.Parse(data)
	if err != nil {
		return err
	}

	switch msg.(type) {
	case *dcep.ChannelOpen:
		return d.writeDataChannelAck()
	case *dcep.ChannelAck:
		return nil
	default:
		return fmt.Errorf("unhandled DataChannel message %T", msg)
	}
}

// Write sends p as a single binary DATA_CHANNEL payload.
func (d *DataChannel) Write(p []byte) (int, error) {
	ppi := sctp.PayloadTypeWebRTCBinary
	if len(p) == 0 {
		ppi = sctp.PayloadTypeWebRTCBinaryEmpty
	}

	return d.stream.WriteSCTP(p, ppi)
}

func (d *DataChannel) writeDataChannelAck() error {
	ack := dcep.ChannelAck{}

	rawMsg, err := ack.Marshal()
	if err != nil {
		return err
	}

	_, err = d.stream.WriteSCTP(rawMsg, sctp.PayloadTypeWebRTCDCEP)

	return err
}

// Close closes the underlying stream, requesting an RFC 6525 stream reset.
func (d *DataChannel) Close() error {
	return d.stream.Close()
}
