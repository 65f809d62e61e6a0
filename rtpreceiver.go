// +build !js

package webrtc

import (
	"fmt"
	"io"
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/rtcp"
	"github.com/pion/srtp/v3"
)

// trackStreams binds one TrackRemote to the SRTP/SRTCP read streams carrying
// it and the RTCP interceptor reader layered on top of the SRTCP stream. A
// receiver keeps one of these per simulcast layer.
type trackStreams struct {
	track *TrackRemote

	rtpReadStream  *srtp.ReadStreamSRTP
	rtcpReadStream *srtp.ReadStreamSRTCP

	rtcpInterceptor interceptor.RTCPReader

	// rtxSSRC/rtxReadStream are set when a simulcast probe maps an RSID
	// extension to this layer's RTX repair stream (spec.md §4.5.4 step 4).
	// The repair stream is kept open so RTCP/NACK bookkeeping on it
	// doesn't stall; repaired payloads are not merged into the track's
	// own read path.
	rtxSSRC       SSRC
	rtxReadStream *srtp.ReadStreamSRTP
}

// RTPReceiver allows an application to inspect the receipt of a TrackRemote
type RTPReceiver struct {
	kind      RTPCodecType
	transport *DTLSTransport

	tracks []trackStreams

	closed, received chan struct{}
	mu               sync.RWMutex
	paused           bool

	// A reference to the associated api object
	api *API
}

// pause silences this receiver: inbound packets keep draining off the SRTP
// read stream but readRTP stops handing them to the TrackRemote consumer.
// Called by the owning RTPTransceiver when its current direction loses recv.
func (r *RTPReceiver) pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// resume re-enables delivery after a pause. No renegotiation is required.
func (r *RTPReceiver) resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

func (r *RTPReceiver) isPaused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// NewRTPReceiver constructs a new RTPReceiver
func (api *API) NewRTPReceiver(kind RTPCodecType, transport *DTLSTransport) (*RTPReceiver, error) {
	if transport == nil {
		return nil, ErrRTPReceiverDTLSTransportNil
	}

	return &RTPReceiver{
		kind:      kind,
		transport: transport,
		api:       api,
		closed:    make(chan struct{}),
		received:  make(chan struct{}),
	}, nil
}

// Transport returns the currently-configured *DTLSTransport or nil
// if one has not yet been configured
func (r *RTPReceiver) Transport() *DTLSTransport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transport
}

// Track returns the RTPTransceiver track, or nil if this receiver carries
// more than one TrackRemote (simulcast).
func (r *RTPReceiver) Track() *TrackRemote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tracks) != 1 {
		return nil
	}
	return r.tracks[0].track
}

// Tracks returns the RTPTransceiver tracks. A receiver negotiated for
// simulcast carries one TrackRemote per RID.
func (r *RTPReceiver) Tracks() []*TrackRemote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]*TrackRemote, 0, len(r.tracks))
	for i := range r.tracks {
		tracks = append(tracks, r.tracks[i].track)
	}
	return tracks
}

// Receive initializes the TrackRemote(s) for this receiver. An encoding
// whose SSRC is already known opens its SRTP/SRTCP read streams immediately;
// an encoding known only by RID (simulcast, SSRC resolved later by packet
// probing) is registered bare and populated by receiveForRid.
func (r *RTPReceiver) Receive(parameters RTPReceiveParameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.received:
		return ErrRTPReceiverReceiveAlreadyCalled
	default:
	}
	defer close(r.received)

	for _, encoding := range parameters.Encodings {
		t := trackStreams{
			track: newTrackRemote(r.kind, encoding.SSRC, encoding.RID, r),
		}

		if encoding.SSRC != 0 {
			var err error
			t.rtpReadStream, t.rtcpReadStream, err = r.streamsForSSRC(uint32(encoding.SSRC))
			if err != nil {
				return err
			}
			t.rtcpInterceptor = r.bindRTCPReader(t.rtcpReadStream)
		}

		r.tracks = append(r.tracks, t)
	}

	return nil
}

func (r *RTPReceiver) bindRTCPReader(rtcpReadStream *srtp.ReadStreamSRTCP) interceptor.RTCPReader {
	return r.api.interceptor.BindRTCPReader(
		interceptor.RTCPReaderFunc(func(in []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
			n, err := rtcpReadStream.Read(in)

			return n, a, err
		}),
	)
}

// Read reads incoming RTCP for this RTPReceiver
func (r *RTPReceiver) Read(b []byte) (n int, err error) {
	select {
	case <-r.received:
		return r.tracks[0].rtcpInterceptor.Read(b, interceptor.Attributes{})
	case <-r.closed:
		return 0, io.ErrClosedPipe
	}
}

// ReadRTCP is a convenience method that wraps Read and unmarshals for you
func (r *RTPReceiver) ReadRTCP() ([]rtcp.Packet, error) {
	b := make([]byte, receiveMTU)
	i, err := r.Read(b)
	if err != nil {
		return nil, err
	}

	return rtcp.Unmarshal(b[:i])
}

func (r *RTPReceiver) haveReceived() bool {
	select {
	case <-r.received:
		return true
	default:
		return false
	}
}

// Stop irreversibly stops the RTPReceiver
func (r *RTPReceiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.closed:
		return nil
	default:
	}

	select {
	case <-r.received:
		for i := range r.tracks {
			if r.tracks[i].rtxReadStream != nil {
				if err := r.tracks[i].rtxReadStream.Close(); err != nil {
					return err
				}
			}

			if r.tracks[i].rtcpReadStream == nil {
				continue
			}
			if err := r.tracks[i].rtcpReadStream.Close(); err != nil {
				return err
			}
			if err := r.tracks[i].rtpReadStream.Close(); err != nil {
				return err
			}
		}
	default:
	}

	close(r.closed)
	return nil
}

func (r *RTPReceiver) streamsForTrack(t *TrackRemote) *trackStreams {
	for i := range r.tracks {
		if r.tracks[i].track == t {
			return &r.tracks[i]
		}
	}
	return nil
}

// readRTP should only be called by a TrackRemote, this exists so receiver
// state lives in one place.
func (r *RTPReceiver) readRTP(b []byte, reader *TrackRemote) (n int, err error) {
	<-r.received

	t := r.streamsForTrack(reader)
	if t == nil || t.rtpReadStream == nil {
		return 0, fmt.Errorf("%w: SSRC(%d)", ErrRTPReceiverUnknownTrack, reader.SSRC())
	}

	for {
		n, err = t.rtpReadStream.Read(b)
		if err != nil || !r.isPaused() {
			return n, err
		}
		// Direction currently lacks recv: drain the packet off the wire
		// so the SRTP reassembly buffer doesn't back up, but don't hand
		// it to the consumer.
	}
}

// receiveForRid is the sibling of Receive for RIDs instead of SSRCs. The
// simulcast probe demuxer calls this once it has paired an inbound RID with
// its SSRC and negotiated codec.
func (r *RTPReceiver) receiveForRid(rid string, codec RTPCodecParameters, ssrc SSRC) (*TrackRemote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tracks {
		if r.tracks[i].track.RID() != rid {
			continue
		}

		r.tracks[i].track.mu.Lock()
		r.tracks[i].track.ssrc = ssrc
		r.tracks[i].track.mu.Unlock()
		r.tracks[i].track.setCodec(codec)

		var err error
		r.tracks[i].rtpReadStream, r.tracks[i].rtcpReadStream, err = r.streamsForSSRC(uint32(ssrc))
		if err != nil {
			return nil, err
		}
		r.tracks[i].rtcpInterceptor = r.bindRTCPReader(r.tracks[i].rtcpReadStream)

		return r.tracks[i].track, nil
	}

	return nil, fmt.Errorf("%w: RID(%s)", ErrRTPReceiverUnknownTrack, rid)
}

// bindRTXForRid maps ssrc as the RTX repair stream for the layer identified
// by rid (spec.md §4.5.4 step 4: "the packet is RTX for that layer — map
// the SSRC to the layer's repair stream"). It is a no-op if ssrc is already
// bound as this layer's repair stream.
func (r *RTPReceiver) bindRTXForRid(rid string, ssrc SSRC) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tracks {
		if r.tracks[i].track.RID() != rid {
			continue
		}

		if r.tracks[i].rtxSSRC == ssrc {
			return nil
		}

		<-r.transport.srtpReady

		srtpSession, err := r.transport.getSRTPSession()
		if err != nil {
			return err
		}

		rtxReadStream, err := srtpSession.OpenReadStream(uint32(ssrc))
		if err != nil {
			return err
		}

		r.tracks[i].rtxSSRC = ssrc
		r.tracks[i].rtxReadStream = rtxReadStream

		return nil
	}

	return fmt.Errorf("%w: RID(%s)", ErrRTPReceiverUnknownTrack, rid)
}

func (r *RTPReceiver) streamsForSSRC(ssrc uint32) (*srtp.ReadStreamSRTP, *srtp.ReadStreamSRTCP, error) {
	<-r.transport.srtpReady

	srtpSession, err := r.transport.getSRTPSession()
	if err != nil {
		return nil, nil, err
	}

	rtpReadStream, err := srtpSession.OpenReadStream(ssrc)
	if err != nil {
		return nil, nil, err
	}

	srtcpSession, err := r.transport.getSRTCPSession()
	if err != nil {
		return nil, nil, err
	}

	rtcpReadStream, err := srtcpSession.OpenReadStream(ssrc)
	if err != nil {
		return nil, nil, err
	}

	return rtpReadStream, rtcpReadStream, nil
}
