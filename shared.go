// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package webrtc

import "strconv"

// SSRC represents a synchronization source
// https://datatracker.ietf.org/doc/html/rfc3550#section-3
type SSRC uint32

func (s SSRC) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// PayloadType identifies the format of the RTP payload and determines
// its interpretation by the application
// https://datatracker.ietf.org/doc/html/rfc3550#section-3
type PayloadType uint8

func (p PayloadType) String() string {
	return strconv.FormatUint(uint64(p), 10)
}
