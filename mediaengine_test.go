// +build !js

package webrtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaEngine_HeaderExtensionFreeIDAllocation(t *testing.T) {
	m := &MediaEngine{}

	for i := 0; i < 14; i++ {
		uri := "urn:ietf:params:rtp-hdrext:test:" + string(rune('a'+i))
		assert.NoError(t, m.RegisterHeaderExtension(RTPHeaderExtensionCapability{uri}, RTPCodecTypeVideo))
	}

	err := m.RegisterHeaderExtension(RTPHeaderExtensionCapability{"urn:ietf:params:rtp-hdrext:test:overflow"}, RTPCodecTypeVideo)
	assert.ErrorIs(t, err, ErrHeaderExtensionNoFreeID)
}

func TestMediaEngine_HeaderExtensionDirectionMismatch(t *testing.T) {
	m := &MediaEngine{}

	uri := sdesMidURI
	assert.NoError(t, m.RegisterHeaderExtension(RTPHeaderExtensionCapability{uri}, RTPCodecTypeVideo, RTPTransceiverDirectionSendonly))

	err := m.RegisterHeaderExtension(RTPHeaderExtensionCapability{uri}, RTPCodecTypeAudio, RTPTransceiverDirectionRecvonly)
	assert.ErrorIs(t, err, ErrHeaderExtensionInvalidDirection)

	// Re-registering with the same direction is fine and just widens isAudio/isVideo.
	assert.NoError(t, m.RegisterHeaderExtension(RTPHeaderExtensionCapability{uri}, RTPCodecTypeAudio, RTPTransceiverDirectionSendonly))
}

func TestMediaEngine_CodecNotFound(t *testing.T) {
	m := &MediaEngine{}
	assert.NoError(t, m.RegisterDefaultCodecs())
	m.pushCodecs(m.videoCodecs, RTPCodecTypeVideo)

	_, _, err := m.getCodecByPayload(250)
	assert.ErrorIs(t, err, ErrCodecNotFound)

	codec, typ, err := m.getCodecByPayload(96)
	assert.NoError(t, err)
	assert.Equal(t, RTPCodecTypeVideo, typ)
	assert.Equal(t, mimeTypeVP8, codec.MimeType)
}
