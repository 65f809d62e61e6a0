// +build !js

package webrtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRTPTransceiver_SetMidWriteOnce(t *testing.T) {
	tr := &RTPTransceiver{}

	assert.NoError(t, tr.SetMid("0"))
	assert.Equal(t, "0", tr.Mid())
	assert.ErrorIs(t, tr.SetMid("0"), ErrRTPTransceiverCannotChangeMid)
	assert.ErrorIs(t, tr.SetMid("1"), ErrRTPTransceiverCannotChangeMid)
}

func TestRTPTransceiver_AnswerDirection(t *testing.T) {
	testCases := []struct {
		name     string
		local    RTPTransceiverDirection
		remote   RTPTransceiverDirection
		expected RTPTransceiverDirection
	}{
		{"sendonly remote, sendrecv local answers recvonly", RTPTransceiverDirectionSendrecv, RTPTransceiverDirectionSendonly, RTPTransceiverDirectionRecvonly},
		{"sendonly remote, sendonly local answers inactive", RTPTransceiverDirectionSendonly, RTPTransceiverDirectionSendonly, RTPTransceiverDirectionInactive},
		{"recvonly remote, sendrecv local answers sendonly", RTPTransceiverDirectionSendrecv, RTPTransceiverDirectionRecvonly, RTPTransceiverDirectionSendonly},
		{"recvonly remote, recvonly local answers inactive", RTPTransceiverDirectionRecvonly, RTPTransceiverDirectionRecvonly, RTPTransceiverDirectionInactive},
		{"sendrecv remote mirrors local direction", RTPTransceiverDirectionRecvonly, RTPTransceiverDirectionSendrecv, RTPTransceiverDirectionRecvonly},
		{"inactive remote always answers inactive", RTPTransceiverDirectionSendrecv, RTPTransceiverDirectionInactive, RTPTransceiverDirectionInactive},
	}

	for _, tc := range testCases {
		tr := &RTPTransceiver{direction: tc.local}
		assert.Equal(t, tc.expected, tr.answerDirection(tc.remote), tc.name)
	}
}

func TestRTPTransceiver_StopIdempotent(t *testing.T) {
	tr := &RTPTransceiver{}

	assert.NoError(t, tr.Stop())
	assert.True(t, tr.Stopped())
	assert.NoError(t, tr.Stop())
}

func TestRTPTransceiver_SetCurrentDirectionPausesSender(t *testing.T) {
	sender := &RTPSender{sendCalled: make(chan struct{}), stopCalled: make(chan struct{})}
	tr := &RTPTransceiver{direction: RTPTransceiverDirectionSendrecv, sender: sender}

	tr.setCurrentDirection(RTPTransceiverDirectionSendrecv)
	assert.False(t, sender.isPaused())

	tr.setCurrentDirection(RTPTransceiverDirectionRecvonly)
	assert.True(t, sender.isPaused())

	tr.setCurrentDirection(RTPTransceiverDirectionSendrecv)
	assert.False(t, sender.isPaused())
}
