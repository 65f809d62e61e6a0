// +build !js

package webrtc

import "sync"

// RTPTransceiver represents a combination of an RTPSender and an RTPReceiver
// that share a common mid. Exactly one of Sender/Receiver is active in each
// direction; CurrentDirection reflects what negotiation actually settled on,
// while Direction is what the application asked for.
type RTPTransceiver struct {
	mu sync.RWMutex

	mid string

	kind      RTPCodecType
	direction RTPTransceiverDirection
	current   RTPTransceiverDirection

	sender   *RTPSender
	receiver *RTPReceiver

	// codecs is the full set of codecs this transceiver's MediaEngine
	// offers for its kind; codecPreferences narrows that set when
	// SetCodecPreferences has been called.
	codecs           []RTPCodecParameters
	codecPreferences []RTPCodecParameters

	stopped bool

	api *API
}

func (api *API) newRTPTransceiver(
	sender *RTPSender,
	receiver *RTPReceiver,
	direction RTPTransceiverDirection,
	kind RTPCodecType,
) *RTPTransceiver {
	return &RTPTransceiver{
		sender:    sender,
		receiver:  receiver,
		direction: direction,
		current:   RTPTransceiverDirectionInactive,
		kind:      kind,
		codecs:    api.mediaEngine.getCodecsByKind(kind),
		api:       api,
	}
}

// Mid returns the negotiated media id for this transceiver, or "" before
// negotiation has assigned one.
func (t *RTPTransceiver) Mid() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.mid
}

// SetMid fixes the mid for this transceiver. mid is write-once: a second
// call with any value, including the same one, fails.
func (t *RTPTransceiver) SetMid(mid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mid != "" {
		return ErrRTPTransceiverCannotChangeMid
	}

	t.mid = mid

	return nil
}

// Kind returns the media kind (audio or video) this transceiver carries.
func (t *RTPTransceiver) Kind() RTPCodecType {
	return t.kind
}

// Sender returns the RTPSender half of this transceiver.
func (t *RTPTransceiver) Sender() *RTPSender {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.sender
}

// Receiver returns the RTPReceiver half of this transceiver.
func (t *RTPTransceiver) Receiver() *RTPReceiver {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.receiver
}

// Direction returns the direction the application last requested.
func (t *RTPTransceiver) Direction() RTPTransceiverDirection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.direction
}

// SetDirection changes the application's desired direction. It takes effect
// on the next negotiation; it does not by itself pause or resume the
// sender/receiver (see setCurrentDirection for that).
func (t *RTPTransceiver) SetDirection(d RTPTransceiverDirection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.direction = d
}

// CurrentDirection returns the direction negotiation actually settled on.
func (t *RTPTransceiver) CurrentDirection() RTPTransceiverDirection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.current
}

// answerDirection computes the local answer direction for a remote offer
// direction remote, per the direction-algebra table: a one-sided remote
// offer (sendonly/recvonly) is answered with the reverse intersected
// against what this transceiver is configured to do; sendrecv/unspecified
// answers with the transceiver's own direction unchanged; inactive is
// always answered inactive.
func (t *RTPTransceiver) answerDirection(remote RTPTransceiverDirection) RTPTransceiverDirection {
	t.mu.RLock()
	local := t.direction
	t.mu.RUnlock()

	switch remote {
	case RTPTransceiverDirectionSendonly, RTPTransceiverDirectionRecvonly:
		return rtpTransceiverDirectionIntersect(remote.revDirection(), local)
	case RTPTransceiverDirectionInactive:
		return RTPTransceiverDirectionInactive
	case RTPTransceiverDirectionSendrecv:
		return local
	default:
		return local
	}
}

// setCurrentDirection records the direction negotiation settled on and
// pauses/resumes the sender and receiver to match: losing send silences
// the sender, losing recv drains the receiver, and regaining either
// resumes it without requiring renegotiation.
func (t *RTPTransceiver) setCurrentDirection(d RTPTransceiverDirection) {
	t.mu.Lock()
	prev := t.current
	t.current = d
	sender := t.sender
	receiver := t.receiver
	t.mu.Unlock()

	hadSend := hasSend(prev)
	hasSendNow := hasSend(d)
	if sender != nil && hadSend != hasSendNow {
		if hasSendNow {
			sender.resume()
		} else {
			sender.pause()
		}
	}

	hadRecv := hasRecv(prev)
	hasRecvNow := hasRecv(d)
	if receiver != nil && hadRecv != hasRecvNow {
		if hasRecvNow {
			receiver.resume()
		} else {
			receiver.pause()
		}
	}
}

func hasSend(d RTPTransceiverDirection) bool {
	return d == RTPTransceiverDirectionSendrecv || d == RTPTransceiverDirectionSendonly
}

func hasRecv(d RTPTransceiverDirection) bool {
	return d == RTPTransceiverDirectionSendrecv || d == RTPTransceiverDirectionRecvonly
}

// Codecs returns the codecs this transceiver will offer: the narrowed
// SetCodecPreferences set if one was configured, else the MediaEngine's
// full list for this transceiver's kind.
func (t *RTPTransceiver) Codecs() []RTPCodecParameters {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.codecPreferences) != 0 {
		return t.codecPreferences
	}

	return t.codecs
}

// SetCodecPreferences narrows the codecs this transceiver offers to codecs,
// in the given order. Every entry must already be one the MediaEngine knows
// about for this transceiver's kind (matched by mime type, fmtp and payload
// type); an unrecognized entry fails the whole call without mutating state.
func (t *RTPTransceiver) SetCodecPreferences(codecs []RTPCodecParameters) error {
	t.mu.RLock()
	known := t.codecs
	t.mu.RUnlock()

	for _, codec := range codecs {
		if !codecParametersKnown(codec, known) {
			return ErrRTPTransceiverCodecUnsupported
		}
	}

	t.mu.Lock()
	t.codecPreferences = codecs
	t.mu.Unlock()

	return nil
}

func codecParametersKnown(needle RTPCodecParameters, haystack []RTPCodecParameters) bool {
	for _, c := range haystack {
		if mimeTypeMatch(c.MimeType, needle.MimeType) &&
			c.SDPFmtpLine == needle.SDPFmtpLine &&
			c.PayloadType == needle.PayloadType {
			return true
		}
	}

	return false
}

// Stopped reports whether Stop has been called on this transceiver.
func (t *RTPTransceiver) Stopped() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.stopped
}

// Stop irreversibly stops the RTPTransceiver's sender and receiver. Stop is
// monotonic: a second call is a no-op that returns nil.
func (t *RTPTransceiver) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()

		return nil
	}
	t.stopped = true
	sender, receiver := t.sender, t.receiver
	t.mu.Unlock()

	if sender != nil {
		if err := sender.Stop(); err != nil {
			return err
		}
	}

	if receiver != nil {
		if err := receiver.Stop(); err != nil {
			return err
		}
	}

	return nil
}
