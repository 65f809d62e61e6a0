// +build !js

package webrtc

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/randutil"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// trackEncoding is the per-simulcast-layer state an RTPSender keeps: the
// primary media stream plus, when negotiated, its RTX retransmission
// stream and the interceptor-facing RTCP readers for each.
type trackEncoding struct {
	track   TrackLocal
	context *baseTrackLocalContext

	ssrc            SSRC
	srtpStream      *srtpWriterFuture
	rtcpInterceptor interceptor.RTCPReader
	streamInfo      interceptor.StreamInfo
	seqTransformer  sequenceTransformer

	rtxSsrc            SSRC
	rtxSrtpStream      *srtpWriterFuture
	rtxRtcpInterceptor interceptor.RTCPReader
	rtxStreamInfo      interceptor.StreamInfo
}

// RTPSender allows an application to control how a given Track is encoded and transmitted to a remote peer
type RTPSender struct {
	trackEncodings []*trackEncoding

	transport *DTLSTransport

	payloadType PayloadType
	kind        RTPCodecType

	negotiated bool
	paused     bool

	api *API
	id  string

	mu                     sync.RWMutex
	sendCalled, stopCalled chan struct{}
}

// pause silences this sender: WriteRTP becomes a no-op. Called by the owning
// RTPTransceiver when its current direction loses the send capability.
func (r *RTPSender) pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// resume re-enables writes after a pause. No renegotiation is required.
func (r *RTPSender) resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

func (r *RTPSender) isPaused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// NewRTPSender constructs a new RTPSender
func (api *API) NewRTPSender(track TrackLocal, transport *DTLSTransport) (*RTPSender, error) {
	if track == nil {
		return nil, ErrRTPSenderTrackNil
	} else if transport == nil {
		return nil, ErrRTPSenderDTLSTransportNil
	}

	id, err := randutil.GenerateCryptoRandomString(32, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	if err != nil {
		return nil, err
	}

	r := &RTPSender{
		transport:  transport,
		api:        api,
		sendCalled: make(chan struct{}),
		stopCalled: make(chan struct{}),
		id:         id,
		kind:       track.Kind(),
	}

	r.addEncoding(track)

	return r, nil
}

func (r *RTPSender) isNegotiated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.negotiated
}

func (r *RTPSender) setNegotiated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.negotiated = true
}

// Transport returns the currently-configured *DTLSTransport or nil
// if one has not yet been configured
func (r *RTPSender) Transport() *DTLSTransport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.transport
}

// AddEncoding adds a simulcast layer to this RTPSender. track must share the
// id, streamID and kind of the first encoding and must carry a non-empty RID.
func (r *RTPSender) AddEncoding(track TrackLocal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if track == nil {
		return ErrRTPSenderTrackNil
	}

	if track.RID() == "" {
		return ErrRTPSenderRidNil
	}

	if r.hasStopped() {
		return ErrRTPSenderStopped
	}

	if r.hasSent() {
		return ErrRTPSenderSendAlreadyCalled
	}

	var refTrack TrackLocal
	if len(r.trackEncodings) != 0 {
		refTrack = r.trackEncodings[0].track
	}
	if refTrack == nil || refTrack.RID() == "" {
		return ErrRTPSenderNoBaseEncoding
	}

	if refTrack.ID() != track.ID() || refTrack.StreamID() != track.StreamID() || refTrack.Kind() != track.Kind() {
		return ErrRTPSenderBaseEncodingMismatch
	}

	for _, encoding := range r.trackEncodings {
		if encoding.track != nil && encoding.track.RID() == track.RID() {
			return ErrRTPSenderRIDCollision
		}
	}

	r.addEncoding(track)

	return nil
}

func (r *RTPSender) addEncoding(track TrackLocal) {
	ssrc := SSRC(randutil.NewMathRandomGenerator().Uint32())
	enc := &trackEncoding{
		track:      track,
		ssrc:       ssrc,
		srtpStream: &srtpWriterFuture{ssrc: ssrc, rtpSender: r},
	}
	enc.rtcpInterceptor = r.api.interceptor.BindRTCPReader(
		interceptor.RTCPReaderFunc(func(in []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
			n, err := enc.srtpStream.Read(in)

			return n, a, err
		}),
	)

	if r.api.settingEngine.trackLocalRtx {
		codecs := r.api.mediaEngine.getCodecsByKind(track.Kind())
		for _, c := range codecs {
			if _, matchType := codecParametersAssociatedSearch(c, codecs); matchType != codecMatchNone {
				enc.rtxSsrc = SSRC(randutil.NewMathRandomGenerator().Uint32())

				break
			}
		}
	}

	r.trackEncodings = append(r.trackEncodings, enc)
}

// Track returns the RTCRtpTransceiver track, or nil
func (r *RTPSender) Track() TrackLocal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.trackEncodings) == 0 {
		return nil
	}

	return r.trackEncodings[0].track
}

// ReplaceTrack replaces the track currently being used as the sender's source with a new TrackLocal.
// The new track must be of the same media kind (audio, video, etc) and switching the track should not
// require negotiation.
func (r *RTPSender) ReplaceTrack(track TrackLocal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if track != nil && r.kind != track.Kind() {
		return ErrRTPSenderNewTrackHasIncorrectKind
	}

	if track != nil && len(r.trackEncodings) > 1 {
		return ErrRTPSenderNewTrackHasIncorrectEnvelope
	}

	enc := r.trackEncodings[0]
	replacedTrack := enc.track

	if r.hasSent() && replacedTrack != nil {
		if err := replacedTrack.Unbind(enc.context); err != nil {
			return err
		}
	}

	if !r.hasSent() || track == nil {
		enc.track = track

		return nil
	}

	codec, err := track.Bind(&baseTrackLocalContext{
		id:              enc.context.ID(),
		params:          r.api.mediaEngine.getRTPParametersByKind(track.Kind()),
		ssrc:            enc.context.SSRC(),
		ssrcRTX:         enc.context.SSRCRetransmission(),
		writeStream:     enc.context.WriteStream(),
		rtcpInterceptor: enc.context.RTCPReader(),
	})
	if err != nil {
		if _, reBindErr := replacedTrack.Bind(enc.context); reBindErr != nil {
			return reBindErr
		}

		return err
	}

	if r.payloadType != codec.PayloadType {
		enc.context.params.Codecs = []RTPCodecParameters{codec}
	}

	enc.seqTransformer.requestReset()
	enc.track = track

	return nil
}

func createStreamInfo(
	id string,
	ssrc SSRC,
	payloadType PayloadType,
	codec RTPCodecCapability,
	headerExtensions []RTPHeaderExtensionParameter,
) *interceptor.StreamInfo {
	extensions := make([]interceptor.RTPHeaderExtension, 0, len(headerExtensions))
	for _, h := range headerExtensions {
		extensions = append(extensions, interceptor.RTPHeaderExtension{ID: h.ID, URI: h.URI})
	}

	feedbacks := make([]interceptor.RTCPFeedback, 0, len(codec.RTCPFeedback))
	for _, f := range codec.RTCPFeedback {
		feedbacks = append(feedbacks, interceptor.RTCPFeedback{Type: f.Type, Parameter: f.Parameter})
	}

	return &interceptor.StreamInfo{
		ID:                  id,
		Attributes:          interceptor.Attributes{},
		SSRC:                uint32(ssrc),
		PayloadType:         uint8(payloadType),
		RTPHeaderExtensions: extensions,
		MimeType:            codec.MimeType,
		ClockRate:           codec.ClockRate,
		Channels:            codec.Channels,
		SDPFmtpLine:         codec.SDPFmtpLine,
		RTCPFeedback:        feedbacks,
	}
}

// Send Attempts to set the parameters controlling the sending of media.
func (r *RTPSender) Send(parameters RTPSendParameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.hasSent():
		return ErrRTPSenderSendAlreadyCalled
	case r.trackEncodings[0].track == nil:
		return ErrRTPSenderTrackRemoved
	}

	for idx, enc := range r.trackEncodings {
		encoding := parameters.Encodings[idx]

		srtpStream := &srtpWriterFuture{ssrc: encoding.SSRC, rtpSender: r}
		writeStream := &interceptorTrackLocalWriter{TrackLocalWriter: srtpStream}

		enc.srtpStream = srtpStream
		enc.ssrc = encoding.SSRC
		enc.context = &baseTrackLocalContext{
			id:              r.id,
			params:          r.api.mediaEngine.getRTPParametersByKind(enc.track.Kind()),
			ssrc:            encoding.SSRC,
			ssrcRTX:         encoding.RTX.SSRC,
			writeStream:     writeStream,
			rtcpInterceptor: enc.rtcpInterceptor,
		}

		codec, err := enc.track.Bind(enc.context)
		if err != nil {
			return err
		}
		enc.context.params.Codecs = []RTPCodecParameters{codec}

		enc.streamInfo = *createStreamInfo(r.id, encoding.SSRC, codec.PayloadType, codec.RTPCodecCapability, parameters.HeaderExtensions)

		enc.rtcpInterceptor = r.api.interceptor.BindRTCPReader(
			interceptor.RTCPReaderFunc(func(in []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
				n, err := enc.srtpStream.Read(in)

				return n, a, err
			}),
		)

		rtpWriter := r.api.interceptor.BindLocalStream(
			&enc.streamInfo,
			interceptor.RTPWriterFunc(func(header *rtp.Header, payload []byte, _ interceptor.Attributes) (int, error) {
				if r.isPaused() {
					return len(payload), nil
				}

				header.SequenceNumber = enc.seqTransformer.transform(header.SequenceNumber)

				return srtpStream.WriteRTP(header, payload)
			}),
		)
		writeStream.setRTPWriter(rtpWriter)

		if rtxCodec, matchType := codecParametersAssociatedSearch(codec, r.api.mediaEngine.getCodecsByKind(r.kind)); matchType == codecMatchExact &&
			encoding.RTX.SSRC != 0 {
			rtxSrtpStream := &srtpWriterFuture{ssrc: encoding.RTX.SSRC, rtpSender: r}

			enc.rtxSrtpStream = rtxSrtpStream
			enc.rtxSsrc = encoding.RTX.SSRC

			enc.rtxStreamInfo = *createStreamInfo(r.id+"_rtx", encoding.RTX.SSRC, rtxCodec.PayloadType, rtxCodec.RTPCodecCapability, parameters.HeaderExtensions)
			enc.rtxStreamInfo.Attributes.Set("apt_ssrc", uint32(encoding.SSRC))

			enc.rtxRtcpInterceptor = r.api.interceptor.BindRTCPReader(
				interceptor.RTCPReaderFunc(func(in []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
					n, err := enc.rtxSrtpStream.Read(in)

					return n, a, err
				}),
			)

			r.api.interceptor.BindLocalStream(
				&enc.rtxStreamInfo,
				interceptor.RTPWriterFunc(func(header *rtp.Header, payload []byte, _ interceptor.Attributes) (int, error) {
					return rtxSrtpStream.WriteRTP(header, payload)
				}),
			)
		}
	}

	close(r.sendCalled)

	return nil
}

// EnableSequenceNumberTransform turns on sequence number rewriting for the
// primary encoding. Must be called before the first packet is sent.
func (r *RTPSender) EnableSequenceNumberTransform() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.trackEncodings[0].seqTransformer.enable()
}

// Stop irreversibly stops the RTPSender
func (r *RTPSender) Stop() error {
	r.mu.Lock()

	if r.hasStopped() {
		r.mu.Unlock()

		return nil
	}

	close(r.stopCalled)
	r.mu.Unlock()

	if !r.hasSent() {
		return nil
	}

	if err := r.ReplaceTrack(nil); err != nil {
		return err
	}

	var errs []error
	for _, enc := range r.trackEncodings {
		r.api.interceptor.UnbindLocalStream(&enc.streamInfo)
		errs = append(errs, enc.srtpStream.Close())

		if enc.rtxSrtpStream != nil {
			r.api.interceptor.UnbindLocalStream(&enc.rtxStreamInfo)
			errs = append(errs, enc.rtxSrtpStream.Close())
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

// Read reads incoming RTCP for this RTPSender
func (r *RTPSender) Read(b []byte) (n int, err error) {
	select {
	case <-r.sendCalled:
		return r.trackEncodings[0].rtcpInterceptor.Read(b, interceptor.Attributes{})
	case <-r.stopCalled:
		return 0, io.ErrClosedPipe
	}
}

// ReadRTCP is a convenience method that wraps Read and unmarshals for you.
func (r *RTPSender) ReadRTCP() ([]rtcp.Packet, error) {
	b := make([]byte, receiveMTU)

	i, err := r.Read(b)
	if err != nil {
		return nil, err
	}

	return rtcp.Unmarshal(b[:i])
}

// ReadSimulcast reads incoming RTCP for the encoding identified by rid.
func (r *RTPSender) ReadSimulcast(b []byte, rid string) (n int, err error) {
	select {
	case <-r.sendCalled:
		for _, enc := range r.trackEncodings {
			if enc.track != nil && enc.track.RID() == rid {
				n, _, err = enc.rtcpInterceptor.Read(b, interceptor.Attributes{})

				return n, err
			}
		}

		return 0, fmt.Errorf("%w: %s", ErrRTPSenderNoTrackForRID, rid)
	case <-r.stopCalled:
		return 0, io.ErrClosedPipe
	}
}

// SetReadDeadline sets the deadline for the Read operation on the primary encoding.
func (r *RTPSender) SetReadDeadline(t time.Time) error {
	return r.trackEncodings[0].srtpStream.SetReadDeadline(t)
}

// hasSent tells if data has been ever sent for this instance
func (r *RTPSender) hasSent() bool {
	select {
	case <-r.sendCalled:
		return true
	default:
		return false
	}
}

// hasStopped tells if stop has been called
func (r *RTPSender) hasStopped() bool {
	select {
	case <-r.stopCalled:
		return true
	default:
		return false
	}
}
