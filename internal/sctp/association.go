package sctp

import (
	"io"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/randutil"
	"github.com/pkg/errors"

	"github.com/webrtc-core/rtcstack/internal/transport"
)

// AssociationState is the state of the 4-way handshake and graceful
// shutdown state machine, RFC 4960 section 13.2.
type AssociationState uint8

const (
	// CookieWait is entered immediately after an active association sends
	// its INIT.
	CookieWait AssociationState = iota
	// CookieEchoed is entered once the peer's INIT-ACK has been received
	// and COOKIE-ECHO sent.
	CookieEchoed
	// Established means the 4-way handshake has completed.
	Established
	ShutdownPending
	ShutdownSent
	ShutdownReceived
	ShutdownAckSent
	// Closed is not an RFC 4960 state (a closed association's TCB is simply
	// removed); it exists so Go code can observe a torn-down Association.
	Closed
)

func (s AssociationState) String() string {
	switch s {
	case CookieWait:
		return "COOKIE-WAIT"
	case CookieEchoed:
		return "COOKIE-ECHOED"
	case Established:
		return "ESTABLISHED"
	case ShutdownPending:
		return "SHUTDOWN-PENDING"
	case ShutdownSent:
		return "SHUTDOWN-SENT"
	case ShutdownReceived:
		return "SHUTDOWN-RECEIVED"
	case ShutdownAckSent:
		return "SHUTDOWN-ACK-SENT"
	case Closed:
		return "CLOSED"
	default:
		return "INVALID"
	}
}

const (
	defaultMTU                  = 1200
	initialMaxNumOutboundStreams = 65535
	initialMaxNumInboundStreams  = 65535
	acceptChSize                 = 16

	maxInitRetrans  = 8
	rtoInitial      = 3 * time.Second
	rtoMin          = 1 * time.Second
	rtoMax          = 60 * time.Second
	cookieLifespan  = 60 * time.Second
	ackInterval     = 200 * time.Millisecond
	pathMaxRetrans  = 5
)

// Config carries everything an Association needs to run over an
// already-established DTLS channel; there is no IP/UDP addressing here, so
// unlike a standalone SCTP stack it never multi-homes.
type Config struct {
	NetConn              transport.Conn
	MaxReceiveBufferSize uint32
	MaxMessageSize       uint32
	LoggerFactory        logging.LoggerFactory
}

// Association is one SCTP association carried inside a DTLS connection; it
// owns the stream map, the handshake and shutdown state machine, and the
// reliability/congestion-control engine backing every Stream's Read/Write.
type Association struct {
	netConn transport.Conn
	log     logging.LeveledLogger

	lock sync.Mutex

	peerVerificationTag uint32
	myVerificationTag   uint32

	myNextTSN       uint32
	peerLastTSN     uint32
	havePeerLastTSN bool

	myMaxNumInboundStreams  uint16
	myMaxNumOutboundStreams uint16
	myMaxMTU                uint32
	maxMessageSize          uint32

	state AssociationState

	streams map[uint16]*Stream
	acceptCh chan *Stream

	pendingQueue  []*chunkPayloadData
	inflightQueue *payloadQueue
	recvQueue     *payloadQueue

	cwnd     uint32
	ssthresh uint32
	srtt     time.Duration
	rttvar   time.Duration
	rto      time.Duration

	ackTimer    *time.Timer
	ackPending  bool
	t3RtxTimer  *time.Timer

	myNextRSN      uint32
	pendingResets  map[uint32]chan reconfigResult

	handshake *handshakeWaiter

	closeOnce sync.Once
	closeCh   chan struct{}
}

func createAssociation(config Config) *Association {
	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	maxMessageSize := config.MaxMessageSize
	if maxMessageSize == 0 {
		maxMessageSize = 65536
	}

	return &Association{
		netConn:                 config.NetConn,
		log:                     loggerFactory.NewLogger("sctp"),
		myMaxNumInboundStreams:  initialMaxNumInboundStreams,
		myMaxNumOutboundStreams: initialMaxNumOutboundStreams,
		myMaxMTU:                defaultMTU,
		maxMessageSize:          maxMessageSize,
		streams:                 make(map[uint16]*Stream),
		acceptCh:                make(chan *Stream, acceptChSize),
		inflightQueue:           &payloadQueue{},
		recvQueue:               &payloadQueue{},
		cwnd:                    4 * defaultMTU,
		ssthresh:                1 << 30,
		rto:                     rtoInitial,
		pendingResets:           make(map[uint32]chan reconfigResult),
		handshake: &handshakeWaiter{
			initAck:    make(chan *chunkInitAck, 1),
			cookieAck:  make(chan struct{}, 1),
			cookieEcho: make(chan *chunkCookieEcho, 1),
		},
		closeCh: make(chan struct{}),
	}
}

func generateTag() (uint32, error) {
	v, err := randutil.CryptoUint64()
	return uint32(v), err
}

// Client runs the active side of the 4-way handshake: INIT -> INIT-ACK ->
// COOKIE-ECHO -> COOKIE-ACK.
func Client(config Config) (*Association, error) {
	a := createAssociation(config)
	a.state = CookieWait

	tag, err := generateTag()
	if err != nil {
		return nil, err
	}
	a.myVerificationTag = tag
	initialTSN, err := generateTag()
	if err != nil {
		return nil, err
	}
	a.myNextTSN = initialTSN

	go a.readLoop()

	init := &chunkInit{initCommon: initCommon{
		initiateTag:                    a.myVerificationTag,
		advertisedReceiverWindowCredit: config.MaxReceiveBufferSize,
		numOutboundStreams:             a.myMaxNumOutboundStreams,
		numInboundStreams:              a.myMaxNumInboundStreams,
		initialTSN:                     a.myNextTSN,
	}}

	var ack *chunkInitAck
	for attempt := 0; attempt < maxInitRetrans; attempt++ {
		if err := a.sendChunk(init); err != nil {
			return nil, err
		}

		ack, err = a.awaitInitAck(a.rtoBackoff(attempt))
		if err == nil {
			break
		}
	}
	if ack == nil {
		return nil, errors.New("no INIT-ACK received, peer unreachable")
	}

	a.lock.Lock()
	a.peerVerificationTag = ack.initiateTag
	a.myMaxNumInboundStreams = minUint16(a.myMaxNumInboundStreams, ack.numOutboundStreams)
	a.myMaxNumOutboundStreams = minUint16(a.myMaxNumOutboundStreams, ack.numInboundStreams)
	cookie, _ := ack.stateCookie()
	a.state = CookieEchoed
	a.lock.Unlock()

	echo := &chunkCookieEcho{cookie: cookie}
	var gotAck bool
	for attempt := 0; attempt < maxInitRetrans; attempt++ {
		if err := a.sendChunk(echo); err != nil {
			return nil, err
		}
		if a.awaitCookieAck(a.rtoBackoff(attempt)) {
			gotAck = true
			break
		}
	}
	if !gotAck {
		return nil, errors.New("no COOKIE-ACK received, peer unreachable")
	}

	a.lock.Lock()
	a.state = Established
	a.lock.Unlock()
	a.log.Info("SCTP association established (active)")
	return a, nil
}

// Server runs the passive side: it waits for an INIT, answers with an
// INIT-ACK carrying a state cookie, then waits for a matching COOKIE-ECHO.
func Server(config Config) (*Association, error) {
	a := createAssociation(config)
	a.state = CookieWait

	tag, err := generateTag()
	if err != nil {
		return nil, err
	}
	a.myVerificationTag = tag
	initialTSN, err := generateTag()
	if err != nil {
		return nil, err
	}
	a.myNextTSN = initialTSN

	buf := make([]byte, 65536)
	var init *chunkInit
	for {
		n, err := a.netConn.Read(buf)
		if err != nil {
			return nil, errors.Wrap(err, "waiting for INIT")
		}
		pkt := &packet{}
		if err := pkt.unmarshal(buf[:n]); err != nil {
			a.log.Warnf("dropping malformed packet while awaiting INIT: %v", err)
			continue
		}
		if len(pkt.chunks) == 1 {
			if c, ok := pkt.chunks[0].(*chunkInit); ok {
				init = c
				break
			}
		}
	}

	a.peerVerificationTag = init.initiateTag
	a.myMaxNumInboundStreams = minUint16(a.myMaxNumInboundStreams, init.numOutboundStreams)
	a.myMaxNumOutboundStreams = minUint16(a.myMaxNumOutboundStreams, init.numInboundStreams)

	cookie := newStateCookie(a.myVerificationTag, a.peerVerificationTag)
	ack := &chunkInitAck{initCommon: initCommon{
		initiateTag:                    a.myVerificationTag,
		advertisedReceiverWindowCredit: config.MaxReceiveBufferSize,
		numOutboundStreams:             a.myMaxNumOutboundStreams,
		numInboundStreams:              a.myMaxNumInboundStreams,
		initialTSN:                     a.myNextTSN,
		params:                         []param{&paramStateCookie{raw: cookie.marshal()}},
	}}
	if err := a.sendChunk(ack); err != nil {
		return nil, err
	}

	go a.readLoop()

	for {
		select {
		case <-time.After(rtoMax):
			return nil, errors.New("no COOKIE-ECHO received, peer unreachable")
		case echo := <-a.awaitCookieEcho():
			if !validateStateCookie(echo.cookie, a.myVerificationTag, a.peerVerificationTag) {
				return nil, errors.New("COOKIE-ECHO carried an invalid or stale state cookie")
			}
			if err := a.sendChunk(&chunkCookieAck{}); err != nil {
				return nil, err
			}
			a.lock.Lock()
			a.state = Established
			a.lock.Unlock()
			a.log.Info("SCTP association established (passive)")
			return a, nil
		}
	}
}

func (a *Association) rtoBackoff(attempt int) time.Duration {
	d := rtoInitial << uint(attempt)
	if d > rtoMax {
		return rtoMax
	}
	return d
}

// handshakeWaiter holds the narrow channels the readLoop forwards
// handshake-only chunk types to while Client/Server are still blocking on
// them. The channels are never closed; a chunk that arrives while its
// channel's one-slot buffer is full is dropped.
type handshakeWaiter struct {
	initAck   chan *chunkInitAck
	cookieAck chan struct{}
	cookieEcho chan *chunkCookieEcho
}

func (a *Association) awaitInitAck(timeout time.Duration) (*chunkInitAck, error) {
	select {
	case ack := <-a.handshake.initAck:
		return ack, nil
	case <-time.After(timeout):
		return nil, errors.New("timed out waiting for INIT-ACK")
	}
}

func (a *Association) awaitCookieAck(timeout time.Duration) bool {
	select {
	case <-a.handshake.cookieAck:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (a *Association) awaitCookieEcho() chan *chunkCookieEcho {
	return a.handshake.cookieEcho
}

// readLoop owns the netConn's read side for the association's lifetime: it
// unmarshals inbound packets and dispatches each chunk, retransmission
// timers aside, from a single goroutine so no chunk handler needs its own
// locking discipline beyond a.lock.
func (a *Association) readLoop() {
	defer close(a.closeCh)
	buf := make([]byte, 65536)
	for {
		n, err := a.netConn.Read(buf)
		if err != nil {
			if err != io.EOF {
				a.log.Warnf("SCTP read loop exiting: %v", err)
			}
			return
		}

		pkt := &packet{}
		if err := pkt.unmarshal(buf[:n]); err != nil {
			a.log.Warnf("dropping malformed SCTP packet: %v", err)
			continue
		}

		for _, c := range pkt.chunks {
			a.handleChunk(c)
		}
	}
}

func (a *Association) handleChunk(c chunk) {
	abort, err := c.check()
	if err != nil {
		a.log.Warnf("chunk failed validation: %v", err)
		return
	}
	if abort {
		a.log.Warnf("peer sent %v, tearing down association", c)
		a.lock.Lock()
		a.state = Closed
		a.lock.Unlock()
		return
	}

	switch v := c.(type) {
	case *chunkInitAck:
		select {
		case a.handshake.initAck <- v:
		default:
		}
	case *chunkCookieAck:
		select {
		case a.handshake.cookieAck <- struct{}{}:
		default:
		}
	case *chunkCookieEcho:
		select {
		case a.handshake.cookieEcho <- v:
		default:
		}
	case *chunkPayloadData:
		a.handleData(v)
	case *chunkSelectiveAck:
		a.handleSack(v)
	case *chunkHeartbeat:
		_ = a.sendChunk(&chunkHeartbeatAck{info: v.info})
	case *chunkReconfig:
		a.handleReconfig(v)
	case *chunkForwardTSN:
		a.handleForwardTSN(v)
	case *chunkShutdown:
		a.handleShutdown(v)
	case *chunkShutdownAck:
		_ = a.sendChunk(&chunkShutdownComplete{})
		a.lock.Lock()
		a.state = Closed
		a.lock.Unlock()
	case *chunkShutdownComplete:
		a.lock.Lock()
		a.state = Closed
		a.lock.Unlock()
	case *chunkAbort:
		a.log.Warnf("peer sent ABORT, closing association")
		a.lock.Lock()
		a.state = Closed
		a.lock.Unlock()
	case *chunkError:
		a.log.Warnf("peer sent ERROR: %+v", v.causes)
	}
}

// sendChunk marshals and writes a single chunk as its own packet. Bundling
// multiple chunks per packet is only done by flushPending for DATA chunks.
func (a *Association) sendChunk(c chunk) error {
	return a.sendChunks([]chunk{c})
}

func (a *Association) sendChunks(chunks []chunk) error {
	a.lock.Lock()
	tag := a.peerVerificationTag
	a.lock.Unlock()

	pkt := &packet{verificationTag: tag, chunks: chunks}
	raw, err := pkt.marshal()
	if err != nil {
		return errors.Wrap(err, "marshal outbound SCTP packet")
	}
	_, err = a.netConn.Write(raw)
	return err
}

// OpenStream creates (or returns the existing) application stream with the
// given identifier; WebRTC data channels call this once per DCEP exchange.
func (a *Association) OpenStream(streamIdentifier uint16, defaultPayloadType PayloadProtocolIdentifier) (*Stream, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if s, ok := a.streams[streamIdentifier]; ok {
		return s, nil
	}

	s := newStream(a, streamIdentifier)
	s.defaultPayloadType = defaultPayloadType
	a.streams[streamIdentifier] = s
	return s, nil
}

// AcceptStream blocks until the peer opens a new stream (observed as the
// first DATA chunk carrying a previously unseen stream identifier).
func (a *Association) AcceptStream() (*Stream, error) {
	select {
	case s := <-a.acceptCh:
		return s, nil
	case <-a.closeCh:
		return nil, io.EOF
	}
}

func (a *Association) getOrCreateStream(streamIdentifier uint16) *Stream {
	a.lock.Lock()
	defer a.lock.Unlock()

	s, ok := a.streams[streamIdentifier]
	if ok {
		return s
	}

	s = newStream(a, streamIdentifier)
	a.streams[streamIdentifier] = s
	select {
	case a.acceptCh <- s:
	default:
		a.log.Warn("AcceptStream backlog full, dropping notification")
	}
	return s
}

// handleData processes one inbound DATA chunk: it is handed to the owning
// stream's reassembly queue, the SACK bookkeeping queue is updated, and a
// SACK is scheduled (RFC 4960 section 6.2: delayed up to 200ms, unless the
// chunk arrived out of order in which case one is sent immediately).
func (a *Association) handleData(pd *chunkPayloadData) {
	s := a.getOrCreateStream(pd.streamIdentifier)
	s.handleData(pd)

	a.lock.Lock()
	inOrder := !a.havePeerLastTSN || pd.tsn == a.peerLastTSN+1
	a.recvQueue.push(pd, a.peerLastTSN)
	if inOrder {
		a.peerLastTSN = pd.tsn
		a.havePeerLastTSN = true
		for {
			if _, ok := a.recvQueue.pop(a.peerLastTSN + 1); !ok {
				break
			}
			a.peerLastTSN++
		}
	}
	immediate := pd.immediateSack || !inOrder
	a.scheduleSack(immediate)
	a.lock.Unlock()
}

func (a *Association) scheduleSack(immediate bool) {
	if immediate {
		if a.ackTimer != nil {
			a.ackTimer.Stop()
		}
		a.ackPending = false
		go a.sendSack()
		return
	}

	if a.ackPending {
		return
	}
	a.ackPending = true
	a.ackTimer = time.AfterFunc(ackInterval, func() {
		a.lock.Lock()
		a.ackPending = false
		a.lock.Unlock()
		a.sendSack()
	})
}

func (a *Association) sendSack() {
	a.lock.Lock()
	sack := &chunkSelectiveAck{
		cumulativeTSNAck:               a.peerLastTSN,
		advertisedReceiverWindowCredit: 1 << 20,
		gapAckBlocks:                   a.recvQueue.gapAckBlocks(a.peerLastTSN),
		duplicateTSN:                   a.recvQueue.popDuplicates(),
	}
	a.lock.Unlock()

	if err := a.sendChunk(sack); err != nil {
		a.log.Warnf("failed to send SACK: %v", err)
	}
}

// handleSack advances the cumulative send-side ack point, retires acked
// chunks from the inflight queue, and runs the RFC 4960 section 7.2
// congestion control update before topping the pipe back up from pending.
// Gap-ack blocks and duplicate TSNs in the SACK are ignored and there is no
// fast retransmit: lost chunks are resent only when the T3 timer expires.
func (a *Association) handleSack(sack *chunkSelectiveAck) {
	a.lock.Lock()
	defer a.lock.Unlock()

	var ackedBytes uint32
	for len(a.inflightQueue.orderedChunks) > 0 {
		front := a.inflightQueue.orderedChunks[0]
		if sna32GT(front.tsn, sack.cumulativeTSNAck) {
			break
		}
		c, ok := a.inflightQueue.pop(front.tsn)
		if !ok {
			break
		}
		ackedBytes += uint32(len(c.userData))
	}

	if ackedBytes > 0 {
		if a.cwnd <= a.ssthresh {
			a.cwnd += minUint32(ackedBytes, a.myMaxMTU)
		} else {
			a.cwnd += a.myMaxMTU * a.myMaxMTU / a.cwnd
		}
	}

	if a.t3RtxTimer != nil {
		a.t3RtxTimer.Stop()
	}
	a.flushPendingLocked()
}

// flushPendingLocked moves chunks from pendingQueue into the inflight queue
// and onto the wire while the congestion window allows it. Caller holds
// a.lock.
func (a *Association) flushPendingLocked() {
	var toSend []chunk
	var inflightBytes uint32
	for _, c := range a.inflightQueue.orderedChunks {
		inflightBytes += uint32(len(c.userData))
	}

	for len(a.pendingQueue) > 0 {
		c := a.pendingQueue[0]
		if inflightBytes+uint32(len(c.userData)) > a.cwnd {
			break
		}
		c.tsn = a.myNextTSN
		a.myNextTSN++
		a.inflightQueue.push(c, 0)
		inflightBytes += uint32(len(c.userData))
		toSend = append(toSend, c)
		a.pendingQueue = a.pendingQueue[1:]
	}

	if len(toSend) == 0 {
		return
	}
	if err := a.sendChunks(toSend); err != nil {
		a.log.Warnf("failed to send DATA: %v", err)
	}

	if a.t3RtxTimer == nil || !a.t3RtxTimer.Stop() {
		a.t3RtxTimer = time.AfterFunc(a.rto, a.onT3Rtx)
	} else {
		a.t3RtxTimer.Reset(a.rto)
	}
}

// onT3Rtx is RFC 4960 section 6.3.3: the retransmission timer expiring means
// every outstanding chunk is presumed lost, cwnd collapses to one MTU, and
// everything inflight is requeued for another attempt.
func (a *Association) onT3Rtx() {
	a.lock.Lock()
	defer a.lock.Unlock()

	if len(a.inflightQueue.orderedChunks) == 0 {
		return
	}

	a.ssthresh = maxUint32(a.cwnd/2, 2*a.myMaxMTU)
	a.cwnd = a.myMaxMTU
	if a.rto < rtoMax {
		a.rto *= 2
		if a.rto > rtoMax {
			a.rto = rtoMax
		}
	}

	requeued := a.inflightQueue.orderedChunks
	a.inflightQueue.orderedChunks = nil
	for _, c := range requeued {
		c.retransmissions++
	}
	a.pendingQueue = append(requeued, a.pendingQueue...)
	a.flushPendingLocked()
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// sendPayloadData is the Stream -> Association path: it queues the given
// fragments for transmission and kicks the sender in case the pipe is idle.
func (a *Association) sendPayloadData(chunks []*chunkPayloadData) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.state != Established {
		return errors.Errorf("cannot send on association in state %v", a.state)
	}

	a.pendingQueue = append(a.pendingQueue, chunks...)
	a.flushPendingLocked()
	return nil
}

// requestStreamReset sends an Outgoing SSN Reset Request (RFC 6525 section
// 5.1) asking the peer to stop expecting further data on streamIdentifier,
// then tears the local Stream down once the response (or a timeout) arrives.
func (a *Association) requestStreamReset(streamIdentifier uint16) {
	a.lock.Lock()
	a.myNextRSN++
	rsn := a.myNextRSN
	resp := make(chan reconfigResult, 1)
	a.pendingResets[rsn] = resp
	lastTSN := a.myNextTSN - 1
	a.lock.Unlock()

	req := &chunkReconfig{params: []param{&paramOutgoingResetRequest{
		reconfigRequestSequenceNumber: rsn,
		senderLastTSN:                 lastTSN,
		streamIdentifiers:             []uint16{streamIdentifier},
	}}}

	if err := a.sendChunk(req); err != nil {
		a.log.Warnf("failed to send RE-CONFIG: %v", err)
	}

	select {
	case <-resp:
	case <-time.After(rtoMax):
		a.log.Warnf("RE-CONFIG response for stream %d timed out", streamIdentifier)
	}

	a.lock.Lock()
	delete(a.pendingResets, rsn)
	s, ok := a.streams[streamIdentifier]
	a.lock.Unlock()
	if ok {
		s.onReset()
	}
}

// handleReconfig answers incoming Outgoing Reset Requests and routes
// responses back to requestStreamReset's waiter.
func (a *Association) handleReconfig(rc *chunkReconfig) {
	for _, req := range rc.outgoingResetRequests() {
		for _, sid := range req.streamIdentifiers {
			a.lock.Lock()
			s, ok := a.streams[sid]
			a.lock.Unlock()
			if ok {
				s.onReset()
			}
		}

		resp := &chunkReconfig{params: []param{&paramReconfigResponse{
			reconfigResponseSequenceNumber: req.reconfigRequestSequenceNumber,
			result:                         reconfigResultSuccessPerformed,
		}}}
		if err := a.sendChunk(resp); err != nil {
			a.log.Warnf("failed to send RE-CONFIG response: %v", err)
		}
	}

	for _, resp := range rc.responses() {
		a.lock.Lock()
		waiter, ok := a.pendingResets[resp.reconfigResponseSequenceNumber]
		a.lock.Unlock()
		if ok {
			select {
			case waiter <- resp.result:
			default:
			}
		}
	}
}

// handleForwardTSN consumes a FORWARD-TSN by advancing the cumulative TSN
// ack point past the abandoned messages it names, skipping each affected
// stream's sequence number so reassembly does not stall (RFC 3758 section 3.2).
func (a *Association) handleForwardTSN(f *chunkForwardTSN) {
	a.lock.Lock()
	if sna32GT(f.newCumulativeTSN, a.peerLastTSN) {
		a.peerLastTSN = f.newCumulativeTSN
	}
	streams := map[uint16]*Stream{}
	for _, s := range f.streams {
		if stream, ok := a.streams[s.identifier]; ok {
			streams[s.identifier] = stream
		}
	}
	a.lock.Unlock()

	for sid, stream := range streams {
		for _, s := range f.streams {
			if s.identifier == sid {
				stream.lock.Lock()
				stream.reassemblyQueue.nextExpectedSSN = s.sequence + 1
				stream.reassemblyQueue.haveExpectedSSN = true
				stream.lock.Unlock()
			}
		}
	}

	a.scheduleSack(true)
}

// abandonStaleChunks walks the inflight queue and marks as abandoned every
// chunk that already is, or that has been retransmitted more than
// maxRetransmits times (a negative maxRetransmits disables the limit). It
// returns a FORWARD-TSN advancing to the highest abandoned TSN (RFC 3758
// section 3.1), or nil if nothing was abandoned; the chunks stay queued.
// Nothing in this package calls it, so no FORWARD-TSN is ever sent.
func (a *Association) abandonStaleChunks(maxRetransmits int) *chunkForwardTSN {
	a.lock.Lock()
	defer a.lock.Unlock()

	var newCumulative uint32
	streamSeen := map[uint16]uint16{}
	advanced := false

	for _, c := range a.inflightQueue.orderedChunks {
		if c.abandoned || (maxRetransmits >= 0 && c.retransmissions > maxRetransmits) {
			c.abandoned = true
			if !advanced || sna32GT(c.tsn, newCumulative) {
				newCumulative = c.tsn
				advanced = true
			}
			if c.endingFragment {
				streamSeen[c.streamIdentifier] = c.streamSequenceNumber
			}
		}
	}

	if !advanced {
		return nil
	}

	f := &chunkForwardTSN{newCumulativeTSN: newCumulative}
	for sid, ssn := range streamSeen {
		f.streams = append(f.streams, forwardTSNStream{identifier: sid, sequence: ssn})
	}
	return f
}

// handleShutdown answers a graceful-shutdown request (RFC 4960 section 9.2)
// with SHUTDOWN-ACK when this side has no DATA chunk in flight or pending.
// Otherwise it only records the ShutdownReceived state; SHUTDOWN-ACK is not
// sent later when those chunks drain.
func (a *Association) handleShutdown(s *chunkShutdown) {
	a.lock.Lock()
	a.state = ShutdownReceived
	outstanding := len(a.inflightQueue.orderedChunks) + len(a.pendingQueue)
	a.lock.Unlock()

	if outstanding > 0 {
		return
	}

	if err := a.sendChunk(&chunkShutdownAck{}); err != nil {
		a.log.Warnf("failed to send SHUTDOWN-ACK: %v", err)
		return
	}
	a.lock.Lock()
	a.state = ShutdownAckSent
	a.lock.Unlock()
}

// Shutdown begins the graceful teardown handshake (RFC 4960 section 9.2):
// ESTABLISHED -> SHUTDOWN-SENT, waiting for the peer's SHUTDOWN-ACK before
// the association is fully CLOSED.
func (a *Association) Shutdown() error {
	a.lock.Lock()
	cumAck := a.peerLastTSN
	a.state = ShutdownSent
	a.lock.Unlock()

	return a.sendChunk(&chunkShutdown{cumulativeTSNAck: cumAck})
}

// Close tears the association down immediately without the graceful
// handshake; the underlying net.Conn is not owned by the Association and is
// left to the caller.
func (a *Association) Close() error {
	a.closeOnce.Do(func() {
		a.lock.Lock()
		a.state = Closed
		a.lock.Unlock()
	})
	return nil
}

