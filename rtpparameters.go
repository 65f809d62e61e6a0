// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package webrtc

// RTCPParameters contains the RTCP-related settings used by both senders
// and receivers, negotiated via rtcp-mux/rtcp-rsize.
type RTCPParameters struct {
	CNAME       string
	ReducedSize bool
}

// RTPParameters contains the RTP stack settings used by both senders and receivers.
type RTPParameters struct {
	Codecs           []RTPCodecParameters
	HeaderExtensions []RTPHeaderExtensionParameter
	RTCP             RTCPParameters
}
