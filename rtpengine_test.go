// +build !js

package webrtc

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"

	"github.com/webrtc-core/rtcstack/internal/simulcast"
)

func packetWithMID(mid string) []byte {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:          2,
			Extension:        true,
			ExtensionProfile: 0xBEDE,
			PayloadType:      96,
		},
	}
	if err := pkt.SetExtension(1, []byte(mid)); err != nil {
		panic(err)
	}

	buf, err := pkt.Marshal()
	if err != nil {
		panic(err)
	}

	return buf
}

func TestRTPEngine_UnknownMID(t *testing.T) {
	m := &MediaEngine{}
	assert.NoError(t, m.RegisterDefaultCodecs())
	assert.NoError(t, m.RegisterHeaderExtension(RTPHeaderExtensionCapability{sdesMidURI}, RTPCodecTypeVideo))
	m.pushCodecs(m.videoCodecs, RTPCodecTypeVideo)
	assert.NoError(t, m.updateHeaderExtension(1, sdesMidURI, RTPCodecTypeVideo))

	engine := NewRTPEngine(m)

	_, err := engine.HandleUndeclaredSSRC(packetWithMID("video"), 1234)
	assert.ErrorIs(t, err, ErrRTPReceiverUnknownTrack)
}

func TestRTPEngine_ProbeOverflow(t *testing.T) {
	m := &MediaEngine{}
	engine := NewRTPEngine(m)
	engine.probes = simulcast.NewProbeTable(1)

	buf := packetWithMID("video")

	_, err := engine.HandleUndeclaredSSRC(buf, 1)
	assert.Error(t, err)

	_, err = engine.HandleUndeclaredSSRC(buf, 2)
	assert.ErrorIs(t, err, ErrSimulcastProbeOverflow)
}
