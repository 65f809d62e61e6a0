// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package webrtc

import (
	"github.com/pion/interceptor"
	"github.com/pion/rtp"
)

// TrackLocalWriter is the Writer for outbound RTP Packets.
type TrackLocalWriter interface {
	// WriteRTP encrypts a RTP packet and writes to the connection
	WriteRTP(header *rtp.Header, payload []byte) (int, error)

	// Write encrypts and writes a full RTP packet
	Write(b []byte) (int, error)
}

// TrackLocalContext is the Context passed when a TrackLocal has been bound
// to an RTPSender, and used by interceptors.
type TrackLocalContext interface {
	// CodecParameters returns the negotiated RTPCodecParameters. These are the
	// codecs supported by both peers and the PayloadTypes.
	CodecParameters() []RTPCodecParameters

	// HeaderExtensions returns the negotiated RTPHeaderExtensionParameters.
	HeaderExtensions() []RTPHeaderExtensionParameter

	// SSRC returns the negotiated SSRC of this track.
	SSRC() SSRC

	// SSRCRetransmission returns the negotiated SSRC used to send retransmissions
	// for this track, or 0 if RTX was not negotiated.
	SSRCRetransmission() SSRC

	// WriteStream returns the WriteStream for this TrackLocal. The implementer
	// writes the outbound media packets to it.
	WriteStream() TrackLocalWriter

	// ID is a unique identifier that is used for both Bind/Unbind.
	ID() string

	// RTCPReader returns the RTCP interceptor for this TrackLocal.
	RTCPReader() interceptor.RTCPReader
}

// baseTrackLocalContext is the concrete TrackLocalContext handed to
// TrackLocal.Bind/Unbind by an RTPSender.
type baseTrackLocalContext struct {
	id              string
	params          RTPParameters
	ssrc, ssrcRTX   SSRC
	writeStream     TrackLocalWriter
	rtcpInterceptor interceptor.RTCPReader
}

func (t *baseTrackLocalContext) CodecParameters() []RTPCodecParameters {
	return t.params.Codecs
}

func (t *baseTrackLocalContext) HeaderExtensions() []RTPHeaderExtensionParameter {
	return t.params.HeaderExtensions
}

func (t *baseTrackLocalContext) SSRC() SSRC { return t.ssrc }

func (t *baseTrackLocalContext) SSRCRetransmission() SSRC { return t.ssrcRTX }

func (t *baseTrackLocalContext) WriteStream() TrackLocalWriter { return t.writeStream }

func (t *baseTrackLocalContext) ID() string { return t.id }

func (t *baseTrackLocalContext) RTCPReader() interceptor.RTCPReader { return t.rtcpInterceptor }

// TrackLocal is an interface that controls how the user can send media.
// The user can provide their own TrackLocal implementations, or use
// TrackLocalStaticRTP.
type TrackLocal interface {
	// Bind should implement the way how the media data flows from the Track to
	// the RTPSender. This is called internally after negotiation is complete
	// and the list of available codecs has been determined.
	Bind(TrackLocalContext) (RTPCodecParameters, error)

	// Unbind should implement the teardown logic when the track is no longer
	// needed. This happens because a track has been stopped, or replaced.
	Unbind(TrackLocalContext) error

	// ID is the unique identifier for this Track. This should be unique for the
	// stream, but doesn't have to be globally unique. A common example would be
	// 'audio' or 'video' and StreamID would be 'desktop' or 'webcam'.
	ID() string

	// RID is the RTP Stream ID for this track, used to identify a simulcast layer.
	RID() string

	// StreamID is the group this track belongs to. This must be unique.
	StreamID() string

	// Kind controls if this TrackLocal is audio or video.
	Kind() RTPCodecType
}
