// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package simulcast

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
)

func TestParseExtensions(t *testing.T) {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:          2,
			Extension:        true,
			ExtensionProfile: 0xBEDE,
		},
	}

	require := assert.New(t)
	require.NoError(pkt.SetExtension(1, []byte("video")))
	require.NoError(pkt.SetExtension(2, []byte("h")))

	ext := ParseExtensions(pkt, 1, 2, 3)
	require.Equal("video", ext.MID)
	require.Equal("h", ext.RID)
	require.Equal("", ext.RSID)
}

func TestParseExtensions_IDsNotNegotiated(t *testing.T) {
	pkt := &rtp.Packet{}
	ext := ParseExtensions(pkt, 0, 0, 0)
	assert.Equal(t, Extensions{}, ext)
}

func TestProbeTable_AttemptsExhausted(t *testing.T) {
	table := NewProbeTable(10)

	for i := 0; i < 3; i++ {
		ok, overflow := table.Attempt(1, 3)
		assert.True(t, ok)
		assert.False(t, overflow)
	}

	ok, overflow := table.Attempt(1, 3)
	assert.False(t, ok)
	assert.False(t, overflow)
}

func TestProbeTable_Overflow(t *testing.T) {
	table := NewProbeTable(2)

	ok, overflow := table.Attempt(1, 5)
	assert.True(t, ok)
	assert.False(t, overflow)

	ok, overflow = table.Attempt(2, 5)
	assert.True(t, ok)
	assert.False(t, overflow)

	ok, overflow = table.Attempt(3, 5)
	assert.False(t, ok)
	assert.True(t, overflow)

	assert.Equal(t, 2, table.Len())

	table.Resolve(1)
	ok, overflow = table.Attempt(3, 5)
	assert.True(t, ok)
	assert.False(t, overflow)
}
