package webrtc

import (
	"errors"
	"fmt"
)

// InvalidStateError indicates the object is in an invalid state.
type InvalidStateError struct {
	Err error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("webrtc: InvalidStateError: %v", e.Err)
}

// Types of InvalidStateErrors
var (
	ErrConnectionClosed   = errors.New("connection closed")
	ErrDataChannelNotOpen = errors.New("data channel not open")

	ErrRTPSenderSendAlreadyCalled          = errors.New("Send has already been called on RTPSender")
	ErrRTPSenderSeqTransEnabled            = errors.New("sequence number transformer already enabled on this RTPSender")
	ErrRTPReceiverReceiveAlreadyCalled     = errors.New("Receive has already been called on RTPReceiver")
	ErrRTPTransceiverCannotChangeMid       = errors.New("mid has already been set and cannot be changed")
	ErrRTPTransceiverCodecUnsupported      = errors.New("codec is not supported by this transceiver's media engine")
	ErrRTPTransceiverStopped               = errors.New("RTPTransceiver has already been stopped")
	ErrSCTPTransportDTLSRoleUnset          = errors.New("DTLS role of SCTP transport has not been determined")
	ErrSCTPAssociationNotEstablished       = errors.New("SCTP association is not established")
)

// UnknownError indicates the operation failed for an unknown transient reason
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("webrtc: UnknownError: %v", e.Err)
}

// Types of UnknownErrors
var (
	ErrNoConfig = errors.New("no configuration provided")
)

// InvalidAccessError indicates the object does not support the operation or argument.
type InvalidAccessError struct {
	Err error
}

func (e *InvalidAccessError) Error() string {
	return fmt.Sprintf("webrtc: InvalidAccessError: %v", e.Err)
}

// Types of InvalidAccessErrors
var (
	ErrCertificateExpired = errors.New("certificate expired")
	ErrNoTurnCred         = errors.New("turn server credentials required")
	ErrTurnCred           = errors.New("invalid turn server credentials")
	ErrExistingTrack      = errors.New("track aready exists")

	ErrCodecNotFound                    = errors.New("codec not found")
	ErrUnsupportedCodec                 = errors.New("unsupported codec")
	ErrNoPayloaderForCodec              = errors.New("no payloader for codec")
	ErrUnbindFailed                     = errors.New("unbind failed, track was never bound")
	ErrRTPSenderTrackNil                = errors.New("RTPSender's Track is nil")
	ErrRTPReceiverDTLSTransportNil      = errors.New("RTPReceiver's DTLSTransport is nil")
	ErrRTPReceiverUnknownTrack          = errors.New("RTPReceiver has no stream for this track")
	ErrRTPSenderDTLSTransportNil        = errors.New("RTPSender's DTLSTransport is nil")
	ErrRTPSenderNewTrackHasIncorrectKind     = errors.New("new track must have the same kind as previous track")
	ErrRTPSenderNewTrackHasIncorrectEnvelope = errors.New("new track must have the same number of encodings as the previous track")
	ErrRTPSenderNoTrackForRID                = errors.New("no encoding for the given RID")
	ErrRTPSenderRidNil                       = errors.New("AddEncoding requires a track with an RID")
	ErrRTPSenderStopped                      = errors.New("RTPSender has already been stopped")
	ErrRTPSenderNoBaseEncoding               = errors.New("RTPSender has no base encoding to add a simulcast layer to")
	ErrRTPSenderBaseEncodingMismatch         = errors.New("simulcast encoding does not match the base encoding's id/streamID/kind")
	ErrRTPSenderRIDCollision                 = errors.New("RTPSender already has an encoding with this RID")
	ErrRTPSenderTrackRemoved                 = errors.New("Send called after the sender's track was removed")
	ErrNoSRTPProtectionProfile           = errors.New("no supported SRTP protection profile was negotiated")
	ErrNoMatchingCertificateFingerprint  = errors.New("no fingerprint in remote description matched a certificate")
	ErrUnsupportedFingerprintAlgorithm   = errors.New("unsupported fingerprint algorithm")
	ErrSimulcastProbeOverflow            = errors.New("simulcast probe table is full")
)

// NotSupportedError indicates the operation is not supported.
type NotSupportedError struct {
	Err error
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("webrtc: NotSupportedError: %v", e.Err)
}

// Types of NotSupportedErrors
var (
	ErrPrivateKeyType = errors.New("private key type not supported")
)

// InvalidModificationError indicates the object can not be modified in this way.
type InvalidModificationError struct {
	Err error
}

func (e *InvalidModificationError) Error() string {
	return fmt.Sprintf("webrtc: InvalidModificationError: %v", e.Err)
}

// Types of InvalidModificationErrors
var (
	ErrModifyingPeerIdentity         = errors.New("peerIdentity cannot be modified")
	ErrModifyingCertificates         = errors.New("certificates cannot be modified")
	ErrModifyingBundlePolicy         = errors.New("bundle policy cannot be modified")
	ErrModifyingRtcpMuxPolicy        = errors.New("rtcp mux policy cannot be modified")
	ErrModifyingIceCandidatePoolSize = errors.New("ice candidate pool size cannot be modified")
)

// SyntaxError indicates the string did not match the expected pattern.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("webrtc: SyntaxError: %v", e.Err)
}

// Types of SyntaxErrors
var ()

// TypeError indicates an issue with a supplied value
type TypeError struct {
	Err error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("webrtc: TypeError: %v", e.Err)
}

// Types of TypeError
var (
	ErrInvalidValue    = errors.New("invalid value")
	ErrStringSizeLimit = errors.New("data channel string message exceeds 65535 bytes")

	ErrHeaderExtensionInvalidDirection = errors.New("header extension direction is invalid")
	ErrHeaderExtensionNoFreeID         = errors.New("no header extension id is available in the range [1, 14]")
	ErrRetransmitsOrPacketLifeTime     = errors.New("maxRetransmits and maxPacketLifeTime must not both be set")
	ErrNegotiatedWithoutID             = errors.New("a data channel that is negotiated out-of-band must have an ID")
)

// OperationError indicates an issue with execution
type OperationError struct {
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("webrtc: OperationError: %v", e.Err)
}

// Types of OperationError
var (
	ErrMaxDataChannels = errors.New("maximum number of datachannels reached")
)

// ErrUnknownType indicates a Unknown info
var ErrUnknownType = errors.New("Unknown")
