package common

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

func EncodeEvent(event *Event) ([]byte, error) {
	var buf bytes.Buffer

	// 使用小端字节序写入 Type（4字节）
	typeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(typeBytes, uint32(event.Type))
	buf.Write(typeBytes)

	enc := gob.NewEncoder(&buf)

	// 根据 Type 编码对应的 InnerEvent
	switch event.Type {
	case ChatMessageEventType:
		message := event.InnerEvent.(*ChatMessageEvent)
		if err := enc.Encode(message); err != nil {
			return nil, err
		}
	case ReplyEventType:
		reply := event.InnerEvent.(*ReplyEvent)
		if err := enc.Encode(reply); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown event type: %d", event.Type)
	}
	return buf.Bytes(), nil
}

func DecodeEvent(data []byte) (*Event, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("data too short")
	}

	// 使用小端字节序读取 Type（4字节）
	eventType := EventType(binary.LittleEndian.Uint32(data[:4]))

	// 创建 gob 解码器，跳过前4个字节
	dec := gob.NewDecoder(bytes.NewReader(data[4:]))

	switch eventType {
	case ChatMessageEventType:
		var innerMessage *ChatMessageEvent
		if err := dec.Decode(&innerMessage); err != nil {
			return nil, fmt.Errorf("failed to decode chat message event: %w", err)
		}
		return &Event{Type: eventType, InnerEvent: innerMessage}, nil
	case ReplyEventType:
		var innerReply *ReplyEvent
		if err := dec.Decode(&innerReply); err != nil {
			return nil, fmt.Errorf("failed to decode reply event: %w", err)
		}
		return &Event{Type: eventType, InnerEvent: innerReply}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %d", eventType)
	}
}

func init() {
	gob.Register(ChatMessageEvent{})
	gob.Register(ReplyEvent{})
}
