// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package webrtc

import "github.com/pion/dtls/v3"

// Unknown is the zero-value shared by this package's "enum" types for
// comparisons when no value was set.
const Unknown = iota

const (
	unknownStr = "unknown"

	// Equal to UDP MTU
	receiveMTU = 1460

	// simulcastProbeCount is the amount of RTP Packets
	// that RTPEngine.HandleUndeclaredSSRC will read and try to dispatch from
	// mid and rid values
	simulcastProbeCount = 10

	// simulcastMaxProbeRoutines is how many active routines can be used to probe
	// If the total amount of incoming SSRCes exceeds this new requests will be ignored
	simulcastMaxProbeRoutines = 25

	mediaSectionApplication = "application"

	sdpAttributeRid = "rid"

	rtpOutboundMTU = 1200

	rtpPayloadTypeBitmask = 0x7F

	incomingUnhandledRTPSsrc = "Incoming unhandled RTP ssrc(%d), OnTrack will not be fired. %v"

	generatedCertificateOrigin = "WebRTC"

	sdesMidURI               = "urn:ietf:params:rtp-hdrext:sdes:mid"
	sdesRTPStreamIDURI       = "urn:ietf:params:rtp-hdrext:sdes:rtp-stream-id"
	sdesRepairRTPStreamIDURI = "urn:ietf:params:rtp-hdrext:sdes:repaired-rtp-stream-id"

	// Attributes returned when Read() returns an RTX packet from a separate RTX stream (distinct SSRC)
	attributeRtxPayloadType    = "rtx_payload_type"
	attributeRtxSsrc           = "rtx_ssrc"
	attributeRtxSequenceNumber = "rtx_sequence_number"
)

// defaultDtlsRoleAnswer is the DTLS role assumed when the remote side's
// DTLSParameters.Role is DTLSRoleAuto and no SettingEngine override applies.
// RFC 8842 section 5.3 has the answerer act as DTLS server by default.
const defaultDtlsRoleAnswer = DTLSRoleServer

// defaultSrtpProtectionProfiles lists the SRTP protection profiles this
// transport will offer, in priority order: GCM-256, then GCM-128, then
// CM-80, then CM-32. The first entry the remote DTLS stack also offers
// wins the negotiation.
func defaultSrtpProtectionProfiles() []dtls.SRTPProtectionProfile {
	return []dtls.SRTPProtectionProfile{
		dtls.SRTP_AEAD_AES_256_GCM,
		dtls.SRTP_AEAD_AES_128_GCM,
		dtls.SRTP_AES128_CM_HMAC_SHA1_80,
		dtls.SRTP_AES128_CM_HMAC_SHA1_32,
	}
}
