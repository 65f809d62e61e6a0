package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadQueuePushAndGapAckBlocks(t *testing.T) {
	q := &payloadQueue{}
	cumulativeTSN := uint32(4)

	q.push(&chunkPayloadData{tsn: 5}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 6}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 8}, cumulativeTSN)

	blocks := q.gapAckBlocks(cumulativeTSN)
	assert.Equal(t, []gapAckBlock{{start: 1, end: 2}, {start: 4, end: 4}}, blocks)
}

func TestPayloadQueuePushOutOfOrderIsSorted(t *testing.T) {
	q := &payloadQueue{}
	cumulativeTSN := uint32(0)

	q.push(&chunkPayloadData{tsn: 9}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 3}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 6}, cumulativeTSN)

	require.Len(t, q.orderedChunks, 3)
	assert.Equal(t, uint32(3), q.orderedChunks[0].tsn)
	assert.Equal(t, uint32(6), q.orderedChunks[1].tsn)
	assert.Equal(t, uint32(9), q.orderedChunks[2].tsn)
}

func TestPayloadQueuePushMarksDuplicates(t *testing.T) {
	q := &payloadQueue{}
	cumulativeTSN := uint32(4)

	q.push(&chunkPayloadData{tsn: 5}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 5}, cumulativeTSN) // already queued
	q.push(&chunkPayloadData{tsn: 2}, cumulativeTSN) // at/behind the ack point

	dups := q.popDuplicates()
	assert.ElementsMatch(t, []uint32{5, 2}, dups)
	assert.Empty(t, q.popDuplicates(), "popDuplicates must drain")
}

func TestPayloadQueuePopOnlyLowestTSN(t *testing.T) {
	q := &payloadQueue{}
	cumulativeTSN := uint32(0)

	q.push(&chunkPayloadData{tsn: 5}, cumulativeTSN)
	q.push(&chunkPayloadData{tsn: 6}, cumulativeTSN)

	_, ok := q.pop(6)
	assert.False(t, ok, "6 is not the lowest queued TSN yet")

	p, ok := q.pop(5)
	require.True(t, ok)
	assert.Equal(t, uint32(5), p.tsn)

	p, ok = q.pop(6)
	require.True(t, ok)
	assert.Equal(t, uint32(6), p.tsn)

	_, ok = q.pop(6)
	assert.False(t, ok, "6 was already popped")
}

func TestPayloadQueueSearch(t *testing.T) {
	q := &payloadQueue{}
	q.push(&chunkPayloadData{tsn: 10}, 0)

	found, ok := q.search(10)
	require.True(t, ok)
	assert.Equal(t, uint32(10), found.tsn)

	_, ok = q.search(11)
	assert.False(t, ok)
}
