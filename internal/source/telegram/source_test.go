package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 固定返回一条更新，之后一直返回空结果
func newUpdatesServer(t *testing.T, firstBatch string) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	var lastOffset atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var parsed int64
		fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &parsed)
		lastOffset.Store(parsed)

		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			fmt.Fprint(w, firstBatch)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	}))

	return server, &lastOffset
}

func singleUpdate(senderID int64, text string) string {
	return fmt.Sprintf(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"from":{"id":%d,"username":"trader"},"chat":{"id":5},"date":1700000000,"text":%q}}]}`, senderID, text)
}

func TestSourceDeliversMessages(t *testing.T) {
	server, lastOffset := newUpdatesServer(t, singleUpdate(7, "bought $500 of $PEPE"))
	defer server.Close()

	src := NewSource(SourceConfig{
		BotToken:       "test-token",
		PollTimeoutSec: 1,
		BaseURL:        server.URL,
	})
	require.NoError(t, src.Start(context.Background()))
	defer src.Stop()

	select {
	case msg := <-src.Subscribe():
		assert.Equal(t, "telegram", msg.Source)
		assert.Equal(t, int64(5), msg.ChatID)
		assert.Equal(t, int64(7), msg.SenderID)
		assert.Equal(t, "trader", msg.SenderName)
		assert.Equal(t, "bought $500 of $PEPE", msg.Text)
		assert.NotEmpty(t, msg.TraceID)
	case <-time.After(3 * time.Second):
		t.Fatal("未收到消息")
	}

	// offset前移到update_id+1，不会重复拉取
	assert.Eventually(t, func() bool {
		return lastOffset.Load() == 11
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSourceDropsUnlistedSenders(t *testing.T) {
	server, lastOffset := newUpdatesServer(t, singleUpdate(99, "sold everything"))
	defer server.Close()

	src := NewSource(SourceConfig{
		BotToken:       "test-token",
		AllowedSenders: []int64{7},
		PollTimeoutSec: 1,
		BaseURL:        server.URL,
	})
	require.NoError(t, src.Start(context.Background()))
	defer src.Stop()

	select {
	case msg := <-src.Subscribe():
		t.Fatalf("白名单外的消息不应投递: %+v", msg)
	case <-time.After(300 * time.Millisecond):
	}

	// 丢弃的消息offset照样前移
	assert.Eventually(t, func() bool {
		return lastOffset.Load() == 11
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSourceStopWaitsForPollLoop(t *testing.T) {
	server, _ := newUpdatesServer(t, singleUpdate(7, "aped $100 into something"))
	defer server.Close()

	src := NewSource(SourceConfig{
		BotToken:       "test-token",
		PollTimeoutSec: 1,
		BaseURL:        server.URL,
	})
	require.NoError(t, src.Start(context.Background()))

	// 等首条消息进入缓冲，确保轮询协程已经活跃
	select {
	case <-src.Subscribe():
	case <-time.After(3 * time.Second):
		t.Fatal("未收到消息")
	}

	require.NoError(t, src.Stop())

	// 通道已关闭且没有panic
	_, ok := <-src.Subscribe()
	assert.False(t, ok)
}

func TestSourceStartRequiresToken(t *testing.T) {
	src := NewSource(SourceConfig{})
	assert.Error(t, src.Start(context.Background()))
}
