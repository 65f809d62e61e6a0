package sctp

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// hmacAlgorithm identifies the HMAC used to authenticate the state cookie,
// RFC 4895 section 4.2.
type hmacAlgorithm uint16

const (
	hmacSHA1   hmacAlgorithm = 1
	hmacSHA256 hmacAlgorithm = 3
)

func (h hmacAlgorithm) String() string {
	switch h {
	case hmacSHA1:
		return "HMAC-SHA1"
	case hmacSHA256:
		return "HMAC-SHA256"
	default:
		return fmt.Sprintf("unknown HMAC algorithm %d", uint16(h))
	}
}

// paramRequestedHMACAlgorithm advertises which HMACs the sender can use to
// authenticate a state cookie.
type paramRequestedHMACAlgorithm struct {
	availableAlgorithms []hmacAlgorithm
}

func (r *paramRequestedHMACAlgorithm) unmarshalValue(raw []byte) error {
	if len(raw)%2 != 0 {
		return errors.Errorf("requested HMAC algorithm value has odd length %d", len(raw))
	}
	for i := 0; i < len(raw); i += 2 {
		r.availableAlgorithms = append(r.availableAlgorithms, hmacAlgorithm(binary.BigEndian.Uint16(raw[i:])))
	}
	return nil
}

func (r *paramRequestedHMACAlgorithm) marshal() ([]byte, error) {
	raw := make([]byte, len(r.availableAlgorithms)*2)
	for i, a := range r.availableAlgorithms {
		binary.BigEndian.PutUint16(raw[i*2:], uint16(a))
	}
	h := paramHeader{typ: ptRequestedHMACAlgo, raw: raw}
	return h.marshal(), nil
}
