// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package webrtc

// RTPTransceiverDirection indicates the direction of the RTPTransceiver.
type RTPTransceiverDirection int

const (
	// RTPTransceiverDirectionSendrecv indicates the RTPSender will offer
	// to send RTP and the RTPReceiver will offer to receive RTP.
	RTPTransceiverDirectionSendrecv RTPTransceiverDirection = iota + 1

	// RTPTransceiverDirectionSendonly indicates the RTPSender will offer
	// to send RTP.
	RTPTransceiverDirectionSendonly

	// RTPTransceiverDirectionRecvonly indicates the RTPReceiver will offer
	// to receive RTP.
	RTPTransceiverDirectionRecvonly

	// RTPTransceiverDirectionInactive indicates the RTPSender won't offer
	// to send RTP and the RTPReceiver won't offer to receive RTP.
	RTPTransceiverDirectionInactive
)

// This is done this way because of a linter.
const (
	rtpTransceiverDirectionSendrecvStr = "sendrecv"
	rtpTransceiverDirectionSendonlyStr = "sendonly"
	rtpTransceiverDirectionRecvonlyStr = "recvonly"
	rtpTransceiverDirectionInactiveStr = "inactive"
)

// NewRTPTransceiverDirection creates a RTPTransceiverDirection from a string
// naming the transceiver direction.
func NewRTPTransceiverDirection(raw string) RTPTransceiverDirection {
	switch raw {
	case rtpTransceiverDirectionSendrecvStr:
		return RTPTransceiverDirectionSendrecv
	case rtpTransceiverDirectionSendonlyStr:
		return RTPTransceiverDirectionSendonly
	case rtpTransceiverDirectionRecvonlyStr:
		return RTPTransceiverDirectionRecvonly
	case rtpTransceiverDirectionInactiveStr:
		return RTPTransceiverDirectionInactive
	default:
		return RTPTransceiverDirection(Unknown)
	}
}

func (t RTPTransceiverDirection) String() string {
	switch t {
	case RTPTransceiverDirectionSendrecv:
		return rtpTransceiverDirectionSendrecvStr
	case RTPTransceiverDirectionSendonly:
		return rtpTransceiverDirectionSendonlyStr
	case RTPTransceiverDirectionRecvonly:
		return rtpTransceiverDirectionRecvonlyStr
	case RTPTransceiverDirectionInactive:
		return rtpTransceiverDirectionInactiveStr
	default:
		return unknownStr
	}
}

// revDirection returns the counterpart direction as seen from the other
// side of the connection: a remote sendonly offer is answered recvonly,
// sendrecv/inactive are their own counterpart.
func (t RTPTransceiverDirection) revDirection() RTPTransceiverDirection {
	switch t {
	case RTPTransceiverDirectionSendonly:
		return RTPTransceiverDirectionRecvonly
	case RTPTransceiverDirectionRecvonly:
		return RTPTransceiverDirectionSendonly
	case RTPTransceiverDirectionSendrecv, RTPTransceiverDirectionInactive:
		return t
	default:
		return RTPTransceiverDirection(Unknown)
	}
}

// intersect computes the direction that results from combining what the
// local side wants to do with what it is actually capable of doing (e.g.
// a transceiver with no Sender can never offer to send).
func rtpTransceiverDirectionIntersect(wants, capable RTPTransceiverDirection) RTPTransceiverDirection {
	wantsSend := wants == RTPTransceiverDirectionSendrecv || wants == RTPTransceiverDirectionSendonly
	wantsRecv := wants == RTPTransceiverDirectionSendrecv || wants == RTPTransceiverDirectionRecvonly
	canSend := capable == RTPTransceiverDirectionSendrecv || capable == RTPTransceiverDirectionSendonly
	canRecv := capable == RTPTransceiverDirectionSendrecv || capable == RTPTransceiverDirectionRecvonly

	send := wantsSend && canSend
	recv := wantsRecv && canRecv

	switch {
	case send && recv:
		return RTPTransceiverDirectionSendrecv
	case send:
		return RTPTransceiverDirectionSendonly
	case recv:
		return RTPTransceiverDirectionRecvonly
	default:
		return RTPTransceiverDirectionInactive
	}
}
