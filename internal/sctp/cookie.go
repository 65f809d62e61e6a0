package sctp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 only authenticates our own cookie, it is not used as a security boundary
	"encoding/binary"
	"sync"
	"time"
)

// cookieSecret is generated once per process and used to HMAC every state
// cookie this passive-side association ever issues, so a cookie can be
// validated without retaining any per-handshake server-side state.
var (
	cookieSecret     [20]byte
	cookieSecretOnce sync.Once
)

func ensureCookieSecret() {
	cookieSecretOnce.Do(func() {
		tag, err := generateTag()
		if err != nil {
			return
		}
		binary.BigEndian.PutUint32(cookieSecret[0:], tag)
		tag2, _ := generateTag()
		binary.BigEndian.PutUint32(cookieSecret[4:], tag2)
	})
}

const stateCookieBodyLength = 16

// stateCookie is the opaque value exchanged in INIT-ACK and echoed back in
// COOKIE-ECHO (RFC 4960 section 5.1.3). It lets the passive side avoid
// keeping any per-handshake state until the 4-way handshake is nearly done,
// at the cost of trusting nothing but its own HMAC about the request.
type stateCookie struct {
	createdAt     int64
	myTag         uint32
	peerTag       uint32
}

func newStateCookie(myTag, peerTag uint32) *stateCookie {
	ensureCookieSecret()
	return &stateCookie{createdAt: time.Now().Unix(), myTag: myTag, peerTag: peerTag}
}

func (c *stateCookie) marshal() []byte {
	body := make([]byte, stateCookieBodyLength)
	binary.BigEndian.PutUint64(body[0:], uint64(c.createdAt))
	binary.BigEndian.PutUint32(body[8:], c.myTag)
	binary.BigEndian.PutUint32(body[12:], c.peerTag)

	mac := hmac.New(sha1.New, cookieSecret[:])
	mac.Write(body)
	return append(body, mac.Sum(nil)...)
}

// validateStateCookie re-derives the HMAC over raw's body and checks it
// against the trailing signature, the verification tags the association
// actually negotiated, and the RFC 4960 section 5.1.3 freshness window.
func validateStateCookie(raw []byte, myTag, peerTag uint32) bool {
	ensureCookieSecret()
	if len(raw) < stateCookieBodyLength+sha1.Size {
		return false
	}
	body := raw[:stateCookieBodyLength]
	sig := raw[stateCookieBodyLength:]

	mac := hmac.New(sha1.New, cookieSecret[:])
	mac.Write(body)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return false
	}

	createdAt := int64(binary.BigEndian.Uint64(body[0:]))
	if time.Since(time.Unix(createdAt, 0)) > cookieLifespan {
		return false
	}

	gotMyTag := binary.BigEndian.Uint32(body[8:])
	gotPeerTag := binary.BigEndian.Uint32(body[12:])
	return gotMyTag == myTag && gotPeerTag == peerTag
}
