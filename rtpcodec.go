package webrtc

import (
	"fmt"
	"strings"

	"github.com/webrtc-core/rtcstack/internal/fmtp"
)

// RTPCodecType determines the type of a codec
type RTPCodecType int

const (

	// RTPCodecTypeAudio indicates this is an audio codec
	RTPCodecTypeAudio RTPCodecType = iota + 1

	// RTPCodecTypeVideo indicates this is a video codec
	RTPCodecTypeVideo
)

func (t RTPCodecType) String() string {
	switch t {
	case RTPCodecTypeAudio:
		return "audio"
	case RTPCodecTypeVideo:
		return "video" //nolint: goconst
	default:
		return ErrUnknownType.Error()
	}
}

// NewRTPCodecType creates a RTPCodecType from a string
func NewRTPCodecType(r string) RTPCodecType {
	switch {
	case strings.EqualFold(r, RTPCodecTypeAudio.String()):
		return RTPCodecTypeAudio
	case strings.EqualFold(r, RTPCodecTypeVideo.String()):
		return RTPCodecTypeVideo
	default:
		return RTPCodecType(0)
	}
}

// RTPCodecCapability provides information about codec capabilities.
//
// https://w3c.github.io/webrtc-pc/#dictionary-rtcrtpcodeccapability-members
type RTPCodecCapability struct {
	MimeType     string
	ClockRate    uint32
	Channels     uint16
	SDPFmtpLine  string
	RTCPFeedback []RTCPFeedback
}

// RTPHeaderExtensionCapability is used to define a RFC5285 RTP header extension supported by the codec.
//
// https://w3c.github.io/webrtc-pc/#dom-rtcrtpcapabilities-headerextensions
type RTPHeaderExtensionCapability struct {
	URI string
}

// RTPCodecParameters is a sequence containing the media codecs that an RtpSender
// will choose from, as well as entries for RTX, RED and FEC mechanisms. This also
// includes the PayloadType that has been negotiated
//
// https://w3c.github.io/webrtc-pc/#rtcrtpcodecparameters
type RTPCodecParameters struct {
	RTPCodecCapability
	PayloadType PayloadType

	statsID string
}

// RTCRtpCapabilities is a list of supported codecs and header extensions
//
// https://w3c.github.io/webrtc-pc/#rtcrtpcapabilities
type RTCRtpCapabilities struct {
	HeaderExtensions []RTPHeaderExtensionCapability
	Codecs           []RTPCodecCapability
}

// codecMatchType classifies how closely two codec descriptions agree: an
// exact match also matches on fmtp under internal/fmtp's rules, a partial
// match agrees on the MimeType/clock rate/channels but not on fmtp, and
// none means no candidate agrees on MimeType, clock rate and channels.
type codecMatchType int

const (
	codecMatchNone codecMatchType = iota
	codecMatchPartial
	codecMatchExact
)

func mimeTypeMatch(a, b string) bool {
	return strings.EqualFold(a, b)
}

// codecParametersFuzzySearch looks for needle inside haystack, classifying
// the quality of the best match found. Exact requires the SDPFmtpLines to
// match under internal/fmtp's rules (parameters present on both sides must
// agree; codec specific comparators apply, e.g. H.264's
// profile-level-id/packetization-mode rule); partial only requires the
// MimeType, clock rate and channel count to agree.
func codecParametersFuzzySearch(needle RTPCodecParameters, haystack []RTPCodecParameters) (RTPCodecParameters, codecMatchType) {
	var partialMatch RTPCodecParameters
	foundPartial := false

	for _, c := range haystack {
		if !mimeTypeMatch(c.MimeType, needle.MimeType) {
			continue
		}

		if !fmtp.ClockRateEqual(needle.MimeType, c.ClockRate, needle.ClockRate) ||
			!fmtp.ChannelsEqual(needle.MimeType, c.Channels, needle.Channels) {
			continue
		}

		if !foundPartial {
			partialMatch = c
			foundPartial = true
		}

		cFmtp := fmtp.Parse(c.MimeType, c.ClockRate, c.Channels, c.SDPFmtpLine)
		nFmtp := fmtp.Parse(needle.MimeType, needle.ClockRate, needle.Channels, needle.SDPFmtpLine)
		if cFmtp.Match(nFmtp) {
			return c, codecMatchExact
		}
	}

	if foundPartial {
		return partialMatch, codecMatchPartial
	}

	return RTPCodecParameters{}, codecMatchNone
}

// codecParametersAssociatedSearch finds the RTX companion codec (the entry
// whose SDPFmtpLine reads "apt=<primary.PayloadType>") for primary inside
// haystack. The match is binary: either the RTX mapping exists or it
// doesn't, so a hit is always reported as exact.
func codecParametersAssociatedSearch(primary RTPCodecParameters, haystack []RTPCodecParameters) (RTPCodecParameters, codecMatchType) {
	apt := fmt.Sprintf("apt=%d", primary.PayloadType)

	for _, c := range haystack {
		if strings.EqualFold(c.SDPFmtpLine, apt) {
			return c, codecMatchExact
		}
	}

	return RTPCodecParameters{}, codecMatchNone
}
