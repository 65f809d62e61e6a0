package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkInitMarshalUnmarshal(t *testing.T) {
	c := &chunkInit{
		initCommon: initCommon{
			initiateTag:                    1234,
			advertisedReceiverWindowCredit: 1500,
			numOutboundStreams:             10,
			numInboundStreams:              10,
			initialTSN:                     5,
		},
	}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkInit{}
	require.NoError(t, got.unmarshal(raw))

	assert.Equal(t, ctInit, got.typ)
	assert.Equal(t, c.initiateTag, got.initiateTag)
	assert.Equal(t, c.advertisedReceiverWindowCredit, got.advertisedReceiverWindowCredit)
	assert.Equal(t, c.numOutboundStreams, got.numOutboundStreams)
	assert.Equal(t, c.numInboundStreams, got.numInboundStreams)
	assert.Equal(t, c.initialTSN, got.initialTSN)
}

func TestChunkInitFlagsMustBeZero(t *testing.T) {
	c := &chunkInit{initCommon: initCommon{initiateTag: 1}}
	raw, err := c.marshal()
	require.NoError(t, err)

	raw[1] = 1 // corrupt the flags byte

	got := &chunkInit{}
	assert.Error(t, got.unmarshal(raw))
}

func TestChunkInitAckRequiresStateCookie(t *testing.T) {
	c := &chunkInitAck{initCommon: initCommon{initiateTag: 1}}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkInitAck{}
	assert.Error(t, got.unmarshal(raw), "INIT-ACK without a state cookie parameter must fail to unmarshal")
}

func TestChunkInitAckRoundTripsStateCookie(t *testing.T) {
	cookie := []byte("opaque-state-cookie")
	c := &chunkInitAck{
		initCommon: initCommon{
			initiateTag: 42,
			params:      []param{&paramStateCookie{raw: cookie}},
		},
	}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkInitAck{}
	require.NoError(t, got.unmarshal(raw))

	sc, ok := got.stateCookie()
	require.True(t, ok)
	assert.Equal(t, cookie, sc)
}

func TestChunkAbortMarshalUnmarshal(t *testing.T) {
	c := &chunkAbort{causes: []errorCause{
		&causeProtocolViolationDetail{additionalInfo: []byte("bad things")},
		&causeInvalidMandatoryParam{},
	}}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkAbort{}
	require.NoError(t, got.unmarshal(raw))
	require.Len(t, got.causes, 2)

	abort, checkErr := got.check()
	assert.True(t, abort)
	assert.NoError(t, checkErr)

	violation, ok := got.causes[0].(*causeProtocolViolationDetail)
	require.True(t, ok)
	assert.Equal(t, []byte("bad things"), violation.additionalInfo)
}

func TestChunkShutdownMarshalUnmarshal(t *testing.T) {
	c := &chunkShutdown{cumulativeTSNAck: 99}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkShutdown{}
	require.NoError(t, got.unmarshal(raw))
	assert.Equal(t, uint32(99), got.cumulativeTSNAck)
}

func TestChunkShutdownRejectsWrongLength(t *testing.T) {
	// type=ctShutdown, flags=0, length=9 (value is 5 bytes, not 4), value
	// padded with zero bytes up to the next 4-byte boundary.
	raw := []byte{byte(ctShutdown), 0, 0, 9, 0, 0, 0, 42, 0, 0, 0, 0}

	got := &chunkShutdown{}
	assert.Error(t, got.unmarshal(raw))
}

func TestChunkShutdownAckRejectsNonEmptyValue(t *testing.T) {
	raw := []byte{byte(ctShutdownAck), 0, 0, 8, 1, 2, 3, 4}
	got := &chunkShutdownAck{}
	assert.Error(t, got.unmarshal(raw))
}

func TestChunkShutdownAckMarshalUnmarshal(t *testing.T) {
	c := &chunkShutdownAck{}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkShutdownAck{}
	require.NoError(t, got.unmarshal(raw))
}

func TestChunkShutdownCompleteRejectsNonEmptyValue(t *testing.T) {
	raw := []byte{byte(ctShutdownComplete), 0, 0, 8, 1, 2, 3, 4}
	got := &chunkShutdownComplete{}
	assert.Error(t, got.unmarshal(raw))
}

func TestChunkShutdownCompleteAlwaysAborts(t *testing.T) {
	c := &chunkShutdownComplete{}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkShutdownComplete{}
	require.NoError(t, got.unmarshal(raw))

	abort, checkErr := got.check()
	assert.True(t, abort)
	assert.NoError(t, checkErr)
}

func TestChunkSelectiveAckMarshalUnmarshal(t *testing.T) {
	c := &chunkSelectiveAck{
		cumulativeTSNAck:               10,
		advertisedReceiverWindowCredit: 4096,
		gapAckBlocks:                   []gapAckBlock{{start: 2, end: 2}, {start: 4, end: 6}},
		duplicateTSN:                   []uint32{11, 13},
	}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkSelectiveAck{}
	require.NoError(t, got.unmarshal(raw))

	assert.Equal(t, c.cumulativeTSNAck, got.cumulativeTSNAck)
	assert.Equal(t, c.advertisedReceiverWindowCredit, got.advertisedReceiverWindowCredit)
	assert.Equal(t, c.gapAckBlocks, got.gapAckBlocks)
	assert.Equal(t, c.duplicateTSN, got.duplicateTSN)
}

func TestChunkReconfigRoundTripsMultipleParameters(t *testing.T) {
	c := &chunkReconfig{params: []param{
		&paramOutgoingResetRequest{
			reconfigRequestSequenceNumber:  1,
			reconfigResponseSequenceNumber: 0,
			senderLastTSN:                  1000,
			streamIdentifiers:              []uint16{3, 5, 7},
		},
		&paramReconfigResponse{
			reconfigResponseSequenceNumber: 1,
			result:                         reconfigResultSuccessPerformed,
		},
	}}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkReconfig{}
	require.NoError(t, got.unmarshal(raw))

	requests := got.outgoingResetRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, uint32(1), requests[0].reconfigRequestSequenceNumber)
	assert.Equal(t, uint32(1000), requests[0].senderLastTSN)
	assert.Equal(t, []uint16{3, 5, 7}, requests[0].streamIdentifiers)

	responses := got.responses()
	require.Len(t, responses, 1)
	assert.Equal(t, reconfigResultSuccessPerformed, responses[0].result)
}

func TestChunkForwardTSNMarshalUnmarshal(t *testing.T) {
	c := &chunkForwardTSN{
		newCumulativeTSN: 777,
		streams: []forwardTSNStream{
			{identifier: 1, sequence: 9},
			{identifier: 2, sequence: 11},
		},
	}

	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkForwardTSN{}
	require.NoError(t, got.unmarshal(raw))

	assert.Equal(t, c.newCumulativeTSN, got.newCumulativeTSN)
	assert.Equal(t, c.streams, got.streams)
}

func TestChunkForwardTSNRejectsPartialStreamEntry(t *testing.T) {
	// fixed 4-byte field plus 2 extra bytes: not a whole number of 4-byte
	// stream entries.
	raw := []byte{byte(ctForwardTSN), 0, 0, 10, 0, 0, 3, 9, 0, 1}
	got := &chunkForwardTSN{}
	assert.Error(t, got.unmarshal(raw))
}

func TestChunkCookieEchoMarshalUnmarshal(t *testing.T) {
	c := &chunkCookieEcho{cookie: []byte("state-cookie-bytes")}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkCookieEcho{}
	require.NoError(t, got.unmarshal(raw))
	assert.Equal(t, c.cookie, got.cookie)
}

func TestChunkCookieAckMarshalUnmarshal(t *testing.T) {
	c := &chunkCookieAck{}
	raw, err := c.marshal()
	require.NoError(t, err)

	got := &chunkCookieAck{}
	require.NoError(t, got.unmarshal(raw))
}

func TestPacketMarshalUnmarshalRoundTrip(t *testing.T) {
	p := &packet{
		verificationTag: 0xdeadbeef,
		chunks: []chunk{
			&chunkCookieAck{},
			&chunkShutdown{cumulativeTSNAck: 5},
		},
	}

	raw, err := p.marshal()
	require.NoError(t, err)

	got := &packet{}
	require.NoError(t, got.unmarshal(raw))

	assert.Equal(t, p.verificationTag, got.verificationTag)
	require.Len(t, got.chunks, 2)

	_, ok := got.chunks[0].(*chunkCookieAck)
	assert.True(t, ok)

	shutdown, ok := got.chunks[1].(*chunkShutdown)
	require.True(t, ok)
	assert.Equal(t, uint32(5), shutdown.cumulativeTSNAck)
}

func TestPacketUnmarshalRejectsBadChecksum(t *testing.T) {
	p := &packet{verificationTag: 1, chunks: []chunk{&chunkCookieAck{}}}
	raw, err := p.marshal()
	require.NoError(t, err)

	raw[len(raw)-1] ^= 0xff

	got := &packet{}
	assert.Error(t, got.unmarshal(raw))
}
