package dcep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelOpenMarshal(t *testing.T) {
	msg := ChannelOpen{
		ChannelType:          ChannelTypeReliable,
		Priority:             0,
		ReliabilityParameter: 0,

		Label:    []byte("foo"),
		Protocol: []byte("bar"),
	}

	rawMsg, err := msg.Marshal()
	require.NoError(t, err)

	expected := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x66, 0x6f, 0x6f, 0x62, 0x61, 0x72}
	assert.Equal(t, expected, rawMsg)
}

func TestChannelAckMarshal(t *testing.T) {
	msg := ChannelAck{}
	rawMsg, err := msg.Marshal()
	require.NoError(t, err)

	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00}, rawMsg)
}

func TestChannelOpenUnmarshal(t *testing.T) {
	rawMsg := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x66, 0x6f, 0x6f, 0x62, 0x61, 0x72}
	msgUncast, err := Parse(rawMsg)
	require.NoError(t, err)

	msg, ok := msgUncast.(*ChannelOpen)
	require.True(t, ok, "expected *ChannelOpen")

	assert.Equal(t, ChannelTypeReliable, msg.ChannelType)
	assert.EqualValues(t, 0, msg.Priority)
	assert.EqualValues(t, 0, msg.ReliabilityParameter)
	assert.Equal(t, "foo", string(msg.Label))
	assert.Equal(t, "bar", string(msg.Protocol))
}

func TestChannelOpenUnmarshalShort(t *testing.T) {
	_, err := Parse([]byte{0x03, 0x00})
	assert.Error(t, err)
}

func TestChannelOpenUnmarshalLengthMismatch(t *testing.T) {
	rawMsg := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x66, 0x6f, 0x6f}
	_, err := Parse(rawMsg)
	assert.Error(t, err)
}

func TestChannelAckUnmarshal(t *testing.T) {
	rawMsg := []byte{0x02, 0x00, 0x00, 0x00}
	msgUncast, err := Parse(rawMsg)
	require.NoError(t, err)

	_, ok := msgUncast.(*ChannelAck)
	require.True(t, ok, "expected *ChannelAck")
}

func TestParseExpectDataChannelOpen(t *testing.T) {
	rawMsg := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x66, 0x6f, 0x6f, 0x62, 0x61, 0x72}
	open, err := ParseExpectDataChannelOpen(rawMsg)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(open.Label))

	_, err = ParseExpectDataChannelOpen([]byte{0x02, 0x00, 0x00, 0x00})
	assert.Error(t, err)
}

func TestParseExpectDataChannelAck(t *testing.T) {
	ack, err := ParseExpectDataChannelAck([]byte{0x02, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	require.NotNil(t, ack)

	rawMsg := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x66, 0x6f, 0x6f, 0x62, 0x61, 0x72}
	_, err = ParseExpectDataChannelAck(rawMsg)
	assert.Error(t, err)
}
