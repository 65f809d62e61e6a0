package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(ssn uint16, unordered, beginning, ending bool, data string) *chunkPayloadData {
	return &chunkPayloadData{
		unordered:            unordered,
		beginningFragment:    beginning,
		endingFragment:       ending,
		streamSequenceNumber: ssn,
		payloadType:          PayloadTypeWebRTCBinary,
		userData:             []byte(data),
	}
}

func TestReassemblyQueueOrderedSingleFragmentMessage(t *testing.T) {
	r := &reassemblyQueue{}
	r.push(fragment(0, false, true, true, "hello"))

	msg, ppi, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, "hello", string(msg))
	assert.Equal(t, PayloadTypeWebRTCBinary, ppi)
}

func TestReassemblyQueueOrderedMultiFragmentMessage(t *testing.T) {
	r := &reassemblyQueue{}
	r.push(fragment(0, false, true, false, "hel"))
	r.push(fragment(0, false, false, true, "lo"))

	msg, _, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, "hello", string(msg))
}

func TestReassemblyQueueOrderedDeliveryWaitsForSSN(t *testing.T) {
	r := &reassemblyQueue{}

	// ssn 1 arrives complete before ssn 0 is finished.
	r.push(fragment(1, false, true, true, "second"))
	r.push(fragment(0, false, true, false, "fir"))

	_, _, ok := r.pop()
	assert.False(t, ok, "ssn 0 is not yet complete, ssn 1 must not be delivered early")

	r.push(fragment(0, false, false, true, "st"))

	msg, _, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, "first", string(msg))

	msg, _, ok = r.pop()
	require.True(t, ok)
	assert.Equal(t, "second", string(msg))
}

func TestReassemblyQueueUnorderedDeliversAsCompleted(t *testing.T) {
	r := &reassemblyQueue{}

	// Each unordered message's fragments arrive back-to-back, the way one
	// sender packetization call produces them; only the across-message
	// order is unordered.
	r.push(fragment(1, true, true, true, "complete-first"))
	r.push(fragment(0, true, true, false, "a-"))
	r.push(fragment(0, true, false, true, "b"))

	msg, _, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, "complete-first", string(msg))

	msg, _, ok = r.pop()
	require.True(t, ok)
	assert.Equal(t, "a-b", string(msg))

	_, _, ok = r.pop()
	assert.False(t, ok)
}

func TestReassembledMessageComplete(t *testing.T) {
	m := &reassembledMessage{}
	assert.False(t, m.complete(), "an empty message is never complete")

	m.fragments = append(m.fragments, fragment(0, false, true, false, "x"))
	assert.False(t, m.complete())

	m.fragments = append(m.fragments, fragment(0, false, false, true, "y"))
	assert.True(t, m.complete())
}
