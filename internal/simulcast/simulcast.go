// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package simulcast holds the bookkeeping the RTP transceiver engine needs
// to demultiplex an inbound RTP packet whose SSRC it has never seen: the
// bounded probe table of spec.md §4.5.4, and the RTP header extension
// parsing (MID, RID, RSID) that table keys off.
package simulcast

import (
	"sync"

	"github.com/pion/rtp"
)

// Extensions is the set of SDES header extension values relevant to
// simulcast demux, extracted from a single RTP packet.
type Extensions struct {
	MID  string
	RID  string
	RSID string
}

// ParseExtensions reads the MID/RID/RSID SDES header extensions off pkt
// using the negotiated extension ids (0 means "not negotiated, don't
// look"). A packet carrying none of them returns a zero Extensions.
func ParseExtensions(pkt *rtp.Packet, midID, ridID, rsidID uint8) Extensions {
	var ext Extensions

	if midID != 0 {
		if payload := pkt.GetExtension(midID); payload != nil {
			ext.MID = string(payload)
		}
	}

	if ridID != 0 {
		if payload := pkt.GetExtension(ridID); payload != nil {
			ext.RID = string(payload)
		}
	}

	if rsidID != 0 {
		if payload := pkt.GetExtension(rsidID); payload != nil {
			ext.RSID = string(payload)
		}
	}

	return ext
}

// ProbeTable bounds the number of SSRCs concurrently being probed for a
// MID/RID pairing. Each unrecognized SSRC occupies one slot until it is
// resolved (bound to a track) or explicitly released; a probe that would
// exceed the configured limit is rejected so a flood of bogus SSRCs can't
// grow this table without bound.
type ProbeTable struct {
	mu      sync.Mutex
	limit   int
	probing map[uint32]int
}

// NewProbeTable creates a ProbeTable that allows at most limit concurrent
// in-flight probes.
func NewProbeTable(limit int) *ProbeTable {
	return &ProbeTable{
		limit:   limit,
		probing: map[uint32]int{},
	}
}

// Attempt registers one probe attempt for ssrc, up to attemptsAllowed tries
// per spec.md's "peek N packets" loop. It returns ok=false once the SSRC has
// exhausted its attempts, and overflow=true (with ok=false) if admitting a
// brand-new SSRC would exceed the table's overall limit.
func (p *ProbeTable) Attempt(ssrc uint32, attemptsAllowed int) (ok bool, overflow bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, tracked := p.probing[ssrc]
	if !tracked {
		if len(p.probing) >= p.limit {
			return false, true
		}
	}

	if n >= attemptsAllowed {
		return false, false
	}

	p.probing[ssrc] = n + 1

	return true, false
}

// Resolve removes ssrc from the probe table, whether because it was bound
// to a track or because its attempts were exhausted and it is being
// dropped.
func (p *ProbeTable) Resolve(ssrc uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.probing, ssrc)
}

// Len reports how many SSRCs are currently being probed, for diagnostics.
func (p *ProbeTable) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.probing)
}
