// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package webrtc

// RTPHeaderExtensionParameter represents a negotiated RTP header extension:
// the URI registered by both peers together with the id they agreed to use
// on the wire. Per RFC 8285 the id is in [1,14] (0 and 15 are reserved).
type RTPHeaderExtensionParameter struct {
	URI string
	ID  int
}
