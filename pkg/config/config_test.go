package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/trade-journal/pkg/config/source"
	"github.com/ninja0404/trade-journal/pkg/config/source/file"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileSource(t *testing.T) {
	path := writeConfigFile(t, "logger:\n  level: debug\n  add_caller: true\npipeline:\n  workers: 4\n")

	conf := New()
	defer conf.Close()
	require.NoError(t, conf.Load(file.NewSource(file.WithPath(path), source.WithFormat("yaml"))))

	assert.Equal(t, "debug", conf.Get("logger", "level").String(""))
	assert.True(t, conf.Get("logger", "add_caller").Bool(false))
	assert.Equal(t, 4, conf.Get("pipeline", "workers").Int(0))
}

func TestScanIntoStruct(t *testing.T) {
	path := writeConfigFile(t, "telegram:\n  token: abc123\n  chat_id: 42\n")

	conf := New()
	defer conf.Close()
	require.NoError(t, conf.Load(file.NewSource(file.WithPath(path), source.WithFormat("yaml"))))

	var out struct {
		Token  string `json:"token"`
		ChatID int64  `json:"chat_id"`
	}
	require.NoError(t, conf.Get("telegram").Scan(&out))
	assert.Equal(t, "abc123", out.Token)
	assert.Equal(t, int64(42), out.ChatID)
}

func TestGetMissingKeyReturnsDefault(t *testing.T) {
	path := writeConfigFile(t, "logger:\n  level: info\n")

	conf := New()
	defer conf.Close()
	require.NoError(t, conf.Load(file.NewSource(file.WithPath(path), source.WithFormat("yaml"))))

	assert.Equal(t, "fallback", conf.Get("nope", "missing").String("fallback"))
}
