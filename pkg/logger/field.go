package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FieldErr ...
func FieldErr(err error) Field {
	return zap.Error(err)
}

// FieldKey ...
func FieldKey(value string) Field {
	return String("key", value)
}

// FieldEvent ...
func FieldEvent(value string) Field {
	return String("event", value)
}

func FieldTraceId(tid string) Field {
	return String("trace_id", tid)
}

func FieldCost(value time.Duration) Field {
	return String("cost", fmt.Sprintf("%.3f", float64(value.Round(time.Microsecond))/float64(time.Millisecond)))
}

// FieldStack ...
func FieldStack(value []byte) Field {
	return ByteString("stack", value)
}
