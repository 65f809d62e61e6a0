// +build !js

package webrtc

import (
	"sync/atomic"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
)

// interceptorTrackLocalWriter sits between a TrackLocal and its underlying
// SRTP writer, running every outbound packet through the interceptor chain
// (e.g. NACK retransmission bookkeeping) before it reaches the wire.
type interceptorTrackLocalWriter struct {
	TrackLocalWriter
	rtpWriter atomic.Value
}

func (i *interceptorTrackLocalWriter) setRTPWriter(writer interceptor.RTPWriter) {
	i.rtpWriter.Store(writer)
}

func (i *interceptorTrackLocalWriter) WriteRTP(header *rtp.Header, payload []byte) (int, error) {
	writer, ok := i.rtpWriter.Load().(interceptor.RTPWriter)
	if !ok || writer == nil {
		return 0, nil
	}

	return writer.Write(header, payload, interceptor.Attributes{})
}
