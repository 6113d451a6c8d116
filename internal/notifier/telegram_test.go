package notifier

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTelegramServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	prev := telegramAPIBase
	telegramAPIBase = server.URL
	t.Cleanup(func() { telegramAPIBase = prev })
}

func TestSendToTelegramOk(t *testing.T) {
	withTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken123/sendMessage", r.URL.Path)
		w.Write([]byte(`{"ok":true}`))
	})

	err := SendToTelegram("token123", 42, "position opened")
	assert.NoError(t, err)
}

func TestSendToTelegramAPIError(t *testing.T) {
	withTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"bot was blocked by the user"}`))
	})

	err := SendToTelegram("token123", 42, "position opened")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bot was blocked by the user")
}

func TestSendToTelegramEmptyToken(t *testing.T) {
	err := SendToTelegram("", 42, "hi")
	assert.Error(t, err)
}

func TestSendToTelegramEmptyMessageSkipped(t *testing.T) {
	called := false
	withTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := SendToTelegram("token123", 42, "")
	assert.NoError(t, err)
	assert.False(t, called)
}
