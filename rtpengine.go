// +build !js

package webrtc

import (
	"fmt"
	"sync"

	"github.com/pion/rtp"

	"github.com/webrtc-core/rtcstack/internal/simulcast"
)

// RTPEngine is the collaborator spec.md §4.5.4 describes as owning
// "simulcast layer identification by RID": it holds the set of
// transceivers negotiated for one connection and resolves an inbound RTP
// packet whose SSRC no receiver recognizes yet to the right TrackRemote by
// probing its MID/RID/RSID header extensions. It does not read the network
// itself; the caller (the mux-driven read loop, out of this spec's scope)
// hands it packets that fell through every known SSRC.
type RTPEngine struct {
	mu           sync.RWMutex
	transceivers []*RTPTransceiver

	mediaEngine *MediaEngine
	probes      *simulcast.ProbeTable

	midID, ridID, rsidID uint8
}

// NewRTPEngine creates an RTPEngine bound to mediaEngine, used to resolve
// the MID/RID/RSID header extension ids it negotiated.
func NewRTPEngine(mediaEngine *MediaEngine) *RTPEngine {
	return &RTPEngine{
		mediaEngine: mediaEngine,
		probes:      simulcast.NewProbeTable(simulcastMaxProbeRoutines),
	}
}

// NewRTPEngine creates an RTPEngine that resolves undeclared SSRCs against
// api's MediaEngine.
func (api *API) NewRTPEngine() *RTPEngine {
	return NewRTPEngine(api.mediaEngine)
}

// AddTransceiver registers t so HandleUndeclaredSSRC can find it by mid.
func (e *RTPEngine) AddTransceiver(t *RTPTransceiver) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.transceivers = append(e.transceivers, t)
}

// Transceivers returns a snapshot of the registered transceivers.
func (e *RTPEngine) Transceivers() []*RTPTransceiver {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*RTPTransceiver, len(e.transceivers))
	copy(out, e.transceivers)

	return out
}

func (e *RTPEngine) findByMID(mid string) *RTPTransceiver {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, t := range e.transceivers {
		if t.Mid() == mid {
			return t
		}
	}

	return nil
}

func (e *RTPEngine) refreshExtensionIDs() {
	midID, _, _ := e.mediaEngine.GetHeaderExtensionID(RTPHeaderExtensionCapability{sdesMidURI})
	ridID, _, _ := e.mediaEngine.GetHeaderExtensionID(RTPHeaderExtensionCapability{sdesRTPStreamIDURI})
	rsidID, _, _ := e.mediaEngine.GetHeaderExtensionID(RTPHeaderExtensionCapability{sdesRepairRTPStreamIDURI})

	e.midID, e.ridID, e.rsidID = uint8(midID), uint8(ridID), uint8(rsidID) //nolint:gosec
}

// HandleUndeclaredSSRC implements spec.md §4.5.4's simulcast probe: buf is
// the plaintext RTP packet for an SSRC no receiver owns yet. It peeks the
// packet's MID/RID/RSID extensions, locates the receiver by MID, binds
// ssrc to the RID's TrackRemote (or, for an RSID, to that layer's RTX
// repair stream), and replays buf so the first Read sees it. Returns
// ErrSimulcastProbeOverflow once the in-flight probe table is full, and
// nil/nil when ssrc resolved to an RTX binding rather than a new track.
func (e *RTPEngine) HandleUndeclaredSSRC(buf []byte, ssrc SSRC) (*TrackRemote, error) {
	ok, overflow := e.probes.Attempt(uint32(ssrc), simulcastProbeCount)
	if overflow {
		return nil, ErrSimulcastProbeOverflow
	}
	if !ok {
		e.probes.Resolve(uint32(ssrc))

		return nil, fmt.Errorf("%w: SSRC(%d) exhausted its simulcast probe attempts", ErrRTPReceiverUnknownTrack, ssrc)
	}

	e.refreshExtensionIDs()

	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(buf); err != nil {
		return nil, err
	}

	ext := simulcast.ParseExtensions(pkt, e.midID, e.ridID, e.rsidID)
	if ext.MID == "" {
		return nil, fmt.Errorf("%w: SSRC(%d) carried no MID extension", ErrRTPReceiverUnknownTrack, ssrc)
	}

	transceiver := e.findByMID(ext.MID)
	if transceiver == nil {
		return nil, fmt.Errorf("%w: unknown MID %q", ErrRTPReceiverUnknownTrack, ext.MID)
	}

	receiver := transceiver.Receiver()
	if receiver == nil {
		return nil, fmt.Errorf("%w: mid %q has no receiver", ErrRTPReceiverUnknownTrack, ext.MID)
	}

	if ext.RSID != "" {
		if err := receiver.bindRTXForRid(ext.RSID, ssrc); err != nil {
			return nil, err
		}

		e.probes.Resolve(uint32(ssrc))

		return nil, nil
	}

	if ext.RID == "" {
		return nil, fmt.Errorf("%w: SSRC(%d) carried no RID extension", ErrRTPReceiverUnknownTrack, ssrc)
	}

	codec, _, err := e.mediaEngine.getCodecByPayload(PayloadType(pkt.PayloadType))
	if err != nil {
		return nil, err
	}

	track, err := receiver.receiveForRid(ext.RID, codec, ssrc)
	if err != nil {
		return nil, err
	}

	track.mu.Lock()
	peeked := make([]byte, len(buf))
	copy(peeked, buf)
	track.peeked = peeked
	track.mu.Unlock()

	e.probes.Resolve(uint32(ssrc))

	return track, nil
}
