package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggersAreSafeBeforeInit(t *testing.T) {
	assert.NotNil(t, Default())
	assert.NotNil(t, DefaultL1())

	// nop logger不应panic
	Info("boot message before init")
}

func TestSetDefaultL1(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	instance := zap.New(core)

	prev := DefaultL1()
	SetDefaultL1(instance)
	defer SetDefaultL1(prev)

	DefaultL1().Info("wrapped call", String("key", "value"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "wrapped call", entries[0].Message)
	assert.Equal(t, "value", entries[0].ContextMap()["key"])
}

func TestSetDefault(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	instance := zap.New(core)

	prev := Default()
	SetDefault(instance)
	defer SetDefault(prev)

	Warn("degraded", String("reason", "test"))
	Info("filtered out")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "degraded", entries[0].Message)
}
