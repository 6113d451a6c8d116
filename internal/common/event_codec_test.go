package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeChatMessageEvent(t *testing.T) {
	event := &Event{
		Type: ChatMessageEventType,
		InnerEvent: &ChatMessageEvent{
			TraceID:    "trace-1",
			Source:     "telegram",
			ChatID:     42,
			SenderID:   7,
			SenderName: "alice",
			Text:       "bought $500 of 0x6982508145454ce325ddbe47a25d4ec3d2311933",
			ReceivedAt: time.Now().UTC().Truncate(time.Second),
		},
	}

	data, err := EncodeEvent(event)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	require.Equal(t, ChatMessageEventType, decoded.Type)

	message, ok := decoded.InnerEvent.(*ChatMessageEvent)
	require.True(t, ok)
	assert.Equal(t, event.InnerEvent.(*ChatMessageEvent).Text, message.Text)
	assert.Equal(t, "trace-1", message.GetKey())
}

func TestDecodeEventTooShort(t *testing.T) {
	_, err := DecodeEvent([]byte{1, 2})
	assert.Error(t, err)
}

func TestDecodeEventUnknownType(t *testing.T) {
	_, err := DecodeEvent([]byte{99, 0, 0, 0, 1, 2, 3})
	assert.Error(t, err)
}
