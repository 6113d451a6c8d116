package utils

import (
	"github.com/google/uuid"
)

// GenerateTraceID 生成消息处理链路的trace id
func GenerateTraceID() string {
	return uuid.NewString()
}
