package reply

import (
	"context"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/pkg/logger"
)

// Publisher 回复发布器接口
type Publisher interface {
	// Publish 发布回复
	Publish(reply *common.ReplyEvent) error

	// GetType 获取发布器类型
	GetType() string

	// Close 关闭发布器
	Close() error
}

// Manager 回复发布管理器
type Manager struct {
	publishers []Publisher
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewManager 创建发布管理器
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		publishers: make([]Publisher, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// AddPublisher 添加发布器
func (m *Manager) AddPublisher(publisher Publisher) {
	m.publishers = append(m.publishers, publisher)
}

// Start 启动发布管理器
func (m *Manager) Start() error {
	for _, publisher := range m.publishers {
		logger.Info("✅ 已加载回复发布器", logger.String("type", publisher.GetType()))
	}

	logger.Info("📡 回复发布管理器已启动")
	return nil
}

// Stop 停止发布管理器
func (m *Manager) Stop() error {
	m.cancel()

	// 关闭所有发布器
	for _, publisher := range m.publishers {
		if err := publisher.Close(); err != nil {
			logger.Error("关闭发布器失败",
				logger.String("type", publisher.GetType()),
				logger.FieldErr(err))
		}
	}

	logger.Info("回复发布管理器已停止")
	return nil
}

// PublishReply 发布回复到所有发布器，单个失败不阻断其余
func (m *Manager) PublishReply(reply *common.ReplyEvent) {
	if reply == nil || reply.Text == "" {
		return
	}

	for _, publisher := range m.publishers {
		if err := publisher.Publish(reply); err != nil {
			logger.Error("发布回复失败",
				logger.String("publisher", publisher.GetType()),
				logger.FieldTraceId(reply.TraceID),
				logger.FieldErr(err))
		} else {
			logger.Debug("✅ 回复发布成功",
				logger.String("publisher", publisher.GetType()),
				logger.FieldTraceId(reply.TraceID),
				logger.Int64("chat_id", reply.ChatID))
		}
	}
}

// LogPublisher 日志发布器 - 将回复输出到日志
type LogPublisher struct{}

func (p *LogPublisher) GetType() string {
	return "log"
}

func (p *LogPublisher) Publish(reply *common.ReplyEvent) error {
	logger.Info("💬 生成回复",
		logger.FieldTraceId(reply.TraceID),
		logger.Int64("chat_id", reply.ChatID),
		logger.String("text", reply.Text))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
