package sctp

import "sort"

// reassembledMessage collects the fragments of one ordered or unordered
// user message until it is complete enough to deliver.
type reassembledMessage struct {
	streamSequenceNumber uint16
	payloadType          PayloadProtocolIdentifier
	fragments            []*chunkPayloadData
	length               int
}

func (m *reassembledMessage) complete() bool {
	if len(m.fragments) == 0 {
		return false
	}
	first, last := m.fragments[0], m.fragments[len(m.fragments)-1]
	return first.beginningFragment && last.endingFragment
}

func (m *reassembledMessage) assemble() ([]byte, bool) {
	if !m.complete() {
		return nil, false
	}
	out := make([]byte, m.length)
	offset := 0
	for _, f := range m.fragments {
		offset += copy(out[offset:], f.userData)
	}
	return out, true
}

// reassemblyQueue reorders DATA chunk fragments into whole messages per
// stream. Ordered messages deliver in stream-sequence-number order; an
// unordered message delivers as soon as its own fragments are complete,
// independent of anything else on the stream.
type reassemblyQueue struct {
	ordered          []*reassembledMessage
	unordered        []*reassembledMessage
	nextExpectedSSN  uint16
	haveExpectedSSN  bool
}

func (r *reassemblyQueue) push(p *chunkPayloadData) {
	if p.unordered {
		r.pushInto(&r.unordered, p, false)
		return
	}
	r.pushInto(&r.ordered, p, true)
}

func (r *reassemblyQueue) pushInto(bucket *[]*reassembledMessage, p *chunkPayloadData, keyed bool) {
	var m *reassembledMessage
	if keyed {
		for _, candidate := range *bucket {
			if candidate.streamSequenceNumber == p.streamSequenceNumber {
				m = candidate
				break
			}
		}
	} else if len(*bucket) > 0 {
		// Unordered fragments of the same message always arrive
		// back-to-back from one sender packetization call; reuse the
		// most recent incomplete message.
		last := (*bucket)[len(*bucket)-1]
		if !last.complete() {
			m = last
		}
	}

	if m == nil {
		m = &reassembledMessage{streamSequenceNumber: p.streamSequenceNumber, payloadType: p.payloadType}
		*bucket = append(*bucket, m)
		if keyed {
			sort.Slice(*bucket, func(i, j int) bool {
				return sna16LT((*bucket)[i].streamSequenceNumber, (*bucket)[j].streamSequenceNumber)
			})
		}
	}

	m.fragments = append(m.fragments, p)
	m.length += len(p.userData)
}

// pop returns the next deliverable message, if any: an unordered message
// that has completed, or the ordered message whose SSN is the next expected
// one on this stream.
func (r *reassemblyQueue) pop() ([]byte, PayloadProtocolIdentifier, bool) {
	for i, m := range r.unordered {
		if b, ok := m.assemble(); ok {
			r.unordered = append(r.unordered[:i], r.unordered[i+1:]...)
			return b, m.payloadType, true
		}
	}

	if len(r.ordered) == 0 {
		return nil, 0, false
	}
	m := r.ordered[0]
	if r.haveExpectedSSN && m.streamSequenceNumber != r.nextExpectedSSN {
		return nil, 0, false
	}
	b, ok := m.assemble()
	if !ok {
		return nil, 0, false
	}
	r.ordered = r.ordered[1:]
	r.nextExpectedSSN = m.streamSequenceNumber + 1
	r.haveExpectedSSN = true
	return b, m.payloadType, true
}
