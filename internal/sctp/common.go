// Package sctp implements the subset of RFC 4960 (Stream Control Transmission
// Protocol) that a WebRTC data channel needs: the association handshake, DATA
// chunk reliability and ordering, acceptance of FORWARD-TSN from a peer that
// uses partial reliability (this side never sends one), and the RE-CONFIG
// stream reset extension (RFC 6525). It is carried entirely inside
// DTLS application data records; there is no IP/UDP framing here.
package sctp

// paddingMultiple is the alignment every chunk and parameter is padded to.
const paddingMultiple = 4

// getPadding returns the number of zero bytes needed to round length up to
// the next multiple of paddingMultiple.
func getPadding(length int) int {
	return (paddingMultiple - (length % paddingMultiple)) % paddingMultiple
}

func minUint16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// sna32LT returns true if i1 < i2 using serial number arithmetic (RFC 1982),
// as used for TSN comparisons which wrap at 2^32.
func sna32LT(i1, i2 uint32) bool {
	return (i1 < i2 && i2-i1 < 1<<31) || (i1 > i2 && i1-i2 > 1<<31)
}

func sna32LTE(i1, i2 uint32) bool {
	return i1 == i2 || sna32LT(i1, i2)
}

func sna32GT(i1, i2 uint32) bool {
	return sna32LT(i2, i1)
}

func sna32GTE(i1, i2 uint32) bool {
	return i1 == i2 || sna32GT(i1, i2)
}

// sna16LT is the 16-bit analogue of sna32LT, used for stream sequence numbers.
func sna16LT(i1, i2 uint16) bool {
	return (i1 < i2 && i2-i1 < 1<<15) || (i1 > i2 && i1-i2 > 1<<15)
}
