package common

import (
	"time"
)

type EventType int32

const (
	ChatMessageEventType EventType = iota + 1
	ReplyEventType
)

func (e EventType) Enum() int32 {
	return int32(e)
}

type Event struct {
	Type       EventType  `json:"type"`
	InnerEvent InnerEvent `json:"inner_event"`
}

type InnerEvent interface {
	GetKey() string
}

// ChatMessageEvent 入站聊天消息
type ChatMessageEvent struct {
	TraceID    string    `json:"trace_id"`
	Source     string    `json:"source"` // telegram / kafka
	ChatID     int64     `json:"chat_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

func (m *ChatMessageEvent) GetKey() string {
	return m.TraceID
}

// ReplyEvent 出站回复
type ReplyEvent struct {
	TraceID   string    `json:"trace_id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *ReplyEvent) GetKey() string {
	return r.TraceID
}
