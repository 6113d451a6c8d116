package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

const telegramAPIBase = "https://api.telegram.org"

// Source Telegram长轮询数据源实现
type Source struct {
	msgChan chan *common.ChatMessageEvent
	errChan chan error
	ctx     context.Context
	cancel  context.CancelFunc
	config  SourceConfig
	client  *http.Client
	allowed map[int64]bool
	offset  int64
	done    chan struct{}
	started bool
}

// SourceConfig Telegram数据源配置
type SourceConfig struct {
	BotToken       string
	AllowedSenders []int64 // 发送者白名单，空表示不限制
	PollTimeoutSec int     // 长轮询超时（秒）
	BaseURL        string  // 空则使用官方API地址
}

// telegramUpdate getUpdates返回的单条更新
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      *struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Date int64  `json:"date"`
		Text string `json:"text"`
	} `json:"message"`
}

type getUpdatesResponse struct {
	Ok          bool             `json:"ok"`
	Description string           `json:"description"`
	Result      []telegramUpdate `json:"result"`
}

// NewSource 创建Telegram数据源
func NewSource(config SourceConfig) *Source {
	ctx, cancel := context.WithCancel(context.Background())

	if config.PollTimeoutSec <= 0 {
		config.PollTimeoutSec = 30
	}
	if config.BaseURL == "" {
		config.BaseURL = telegramAPIBase
	}

	allowed := make(map[int64]bool, len(config.AllowedSenders))
	for _, id := range config.AllowedSenders {
		allowed[id] = true
	}

	return &Source{
		msgChan: make(chan *common.ChatMessageEvent, 1000),
		errChan: make(chan error, 100),
		ctx:     ctx,
		cancel:  cancel,
		config:  config,
		// 客户端超时需覆盖长轮询等待时间
		client:  &http.Client{Timeout: time.Duration(config.PollTimeoutSec+10) * time.Second},
		allowed: allowed,
		done:    make(chan struct{}),
	}
}

// Start 启动Telegram数据源
func (s *Source) Start(ctx context.Context) error {
	if s.config.BotToken == "" {
		return fmt.Errorf("telegram bot token 为空")
	}

	s.started = true
	go s.pollLoop()

	logger.Info("✅ Telegram数据源已启动",
		logger.Int("poll_timeout_sec", s.config.PollTimeoutSec),
		logger.Int("allowed_senders", len(s.allowed)))

	return nil
}

// Stop 停止Telegram数据源
func (s *Source) Stop() error {
	logger.Info("🛑 停止Telegram数据源")
	s.cancel()

	// 等轮询协程退出后再关通道，避免向已关闭通道发送
	if s.started {
		<-s.done
	}

	close(s.msgChan)
	close(s.errChan)

	return nil
}

// Subscribe 获取消息数据通道
func (s *Source) Subscribe() <-chan *common.ChatMessageEvent {
	return s.msgChan
}

// Errors 获取错误通道
func (s *Source) Errors() <-chan error {
	return s.errChan
}

// String 数据源名称
func (s *Source) String() string {
	return "telegram(long-poll)"
}

// pollLoop 长轮询循环，失败后退避重试
func (s *Source) pollLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		updates, err := s.fetchUpdates()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			logger.Warn("拉取Telegram更新失败", logger.FieldErr(err))
			select {
			case s.errChan <- err:
			default:
			}
			select {
			case <-time.After(3 * time.Second):
			case <-s.ctx.Done():
				return
			}
			continue
		}

		for _, update := range updates {
			// 无论是否处理，offset都要前移，否则会重复拉取
			if update.UpdateID >= s.offset {
				s.offset = update.UpdateID + 1
			}
			s.handleUpdate(update)
		}
	}
}

// fetchUpdates 调用getUpdates接口拉取增量更新
func (s *Source) fetchUpdates() ([]telegramUpdate, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(s.offset, 10))
	params.Set("timeout", strconv.Itoa(s.config.PollTimeoutSec))
	params.Set("allowed_updates", `["message"]`)

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", s.config.BaseURL, s.config.BotToken, params.Encode())
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("创建getUpdates请求失败: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求getUpdates失败: %w", err)
	}
	defer resp.Body.Close()

	var body getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("解析getUpdates响应失败: %w", err)
	}
	if !body.Ok {
		return nil, fmt.Errorf("getUpdates返回错误: %s", body.Description)
	}

	return body.Result, nil
}

// handleUpdate 转换单条更新并投递，白名单外的发送者直接丢弃
func (s *Source) handleUpdate(update telegramUpdate) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	msg := update.Message
	var senderID int64
	var senderName string
	if msg.From != nil {
		senderID = msg.From.ID
		senderName = msg.From.Username
		if senderName == "" {
			senderName = msg.From.FirstName
		}
	}

	if len(s.allowed) > 0 && !s.allowed[senderID] {
		logger.Warn("⚠️ 丢弃白名单外发送者的消息",
			logger.Int64("sender_id", senderID),
			logger.Int64("chat_id", msg.Chat.ID))
		return
	}

	event := &common.ChatMessageEvent{
		TraceID:    utils.GenerateTraceID(),
		Source:     "telegram",
		ChatID:     msg.Chat.ID,
		SenderID:   senderID,
		SenderName: senderName,
		Text:       msg.Text,
		ReceivedAt: time.Unix(msg.Date, 0),
	}

	select {
	case s.msgChan <- event:
		logger.Debug("📨 收到Telegram消息",
			logger.String("trace_id", event.TraceID),
			logger.Int64("chat_id", event.ChatID),
			logger.Int64("sender_id", senderID))
	case <-s.ctx.Done():
	}
}
