package sctp

import "sort"

// payloadQueue holds DATA chunks the receiver has accepted out of order,
// ahead of the cumulative TSN ack point, so it can report them as gap-ack
// blocks in the next SACK (RFC 4960 section 6.2).
type payloadQueue struct {
	orderedChunks []*chunkPayloadData
	dupTSN        []uint32
}

func (q *payloadQueue) search(tsn uint32) (*chunkPayloadData, bool) {
	i := sort.Search(len(q.orderedChunks), func(i int) bool {
		return q.orderedChunks[i].tsn >= tsn
	})
	if i < len(q.orderedChunks) && q.orderedChunks[i].tsn == tsn {
		return q.orderedChunks[i], true
	}
	return nil, false
}

// push records p as selectively received. It is a no-op (besides noting a
// duplicate) if p is already queued or at/behind the cumulative ack point.
func (q *payloadQueue) push(p *chunkPayloadData, cumulativeTSN uint32) {
	if _, ok := q.search(p.tsn); ok || sna32LTE(p.tsn, cumulativeTSN) {
		q.dupTSN = append(q.dupTSN, p.tsn)
		return
	}

	q.orderedChunks = append(q.orderedChunks, p)
	sort.Slice(q.orderedChunks, func(i, j int) bool {
		return sna32LT(q.orderedChunks[i].tsn, q.orderedChunks[j].tsn)
	})
}

// pop removes and returns the chunk at tsn if it is the lowest queued TSN,
// i.e. the next one the cumulative ack point can advance over.
func (q *payloadQueue) pop(tsn uint32) (*chunkPayloadData, bool) {
	if len(q.orderedChunks) > 0 && q.orderedChunks[0].tsn == tsn {
		p := q.orderedChunks[0]
		q.orderedChunks = q.orderedChunks[1:]
		return p, true
	}
	return nil, false
}

// popDuplicates drains and returns the TSNs seen more than once since the
// last call, for inclusion in the next outgoing SACK.
func (q *payloadQueue) popDuplicates() []uint32 {
	dups := q.dupTSN
	q.dupTSN = nil
	return dups
}

// gapAckBlocks returns the selectively-received runs of TSNs ahead of
// cumulativeTSN, expressed as offsets from it.
func (q *payloadQueue) gapAckBlocks(cumulativeTSN uint32) []gapAckBlock {
	if len(q.orderedChunks) == 0 {
		return nil
	}

	var blocks []gapAckBlock
	var cur gapAckBlock
	for i, p := range q.orderedChunks {
		offset := uint16(p.tsn - cumulativeTSN)
		if i == 0 {
			cur = gapAckBlock{start: offset, end: offset}
			continue
		}
		if cur.end+1 == offset {
			cur.end = offset
			continue
		}
		blocks = append(blocks, cur)
		cur = gapAckBlock{start: offset, end: offset}
	}
	blocks = append(blocks, cur)
	return blocks
}
