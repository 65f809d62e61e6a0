package sctp

// paramStateCookie carries the opaque state cookie a passive-side association
// hands back in INIT-ACK and expects echoed verbatim in COOKIE-ECHO. The
// cookie is produced and validated by stateCookie in cookie.go; this
// type only knows how to move the bytes.
type paramStateCookie struct {
	raw []byte
}

func (s *paramStateCookie) marshal() ([]byte, error) {
	h := paramHeader{typ: ptStateCookie, raw: s.raw}
	return h.marshal(), nil
}
