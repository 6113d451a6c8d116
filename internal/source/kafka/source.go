package kafka

import (
	"context"
	"fmt"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/mq/kafka"
)

// Source Kafka数据源实现
type Source struct {
	msgChan      chan *common.ChatMessageEvent
	errChan      chan error
	ctx          context.Context
	cancel       context.CancelFunc
	config       SourceConfig
	consumerName string
}

// SourceConfig Kafka数据源配置
type SourceConfig struct {
	Topic       string
	Brokers     []string
	KafkaConfig kafka.KafkaConsumerConfig // 直接使用完整配置
}

// NewSource 创建Kafka数据源
func NewSource(config SourceConfig) *Source {
	ctx, cancel := context.WithCancel(context.Background())

	return &Source{
		msgChan:      make(chan *common.ChatMessageEvent, 1000),
		errChan:      make(chan error, 100),
		ctx:          ctx,
		cancel:       cancel,
		config:       config,
		consumerName: fmt.Sprintf("trade-journal-%s", config.KafkaConfig.GroupId),
	}
}

// Start 启动Kafka数据源
func (s *Source) Start(ctx context.Context) error {
	// 使用完整的Kafka配置，只覆盖Topic
	kafkaConfig := s.config.KafkaConfig
	kafkaConfig.Topics = []string{s.config.Topic}

	// 设置命名的Kafka消费者
	if err := kafka.SetupNamedKafkaConsumer(s.consumerName, s.config.Brokers, kafkaConfig); err != nil {
		return fmt.Errorf("设置Kafka消费者失败: %w", err)
	}

	// 注册消息处理器
	if err := kafka.RegisterTopicHandlerForConsumer(s.consumerName, s.config.Topic, s.handleMessage); err != nil {
		return fmt.Errorf("注册消息处理器失败: %w", err)
	}

	// 启动消费者
	if err := kafka.StartNamedConsumer(s.consumerName); err != nil {
		return fmt.Errorf("启动Kafka消费者失败: %w", err)
	}

	logger.Info("✅ Kafka数据源已启动",
		logger.String("topic", s.config.Topic),
		logger.String("group_id", s.config.KafkaConfig.GroupId),
		logger.String("consumer_name", s.consumerName))

	return nil
}

// Stop 停止Kafka数据源
func (s *Source) Stop() error {
	logger.Info("🛑 停止Kafka数据源")
	s.cancel()

	// 关闭命名的Kafka消费者
	if err := kafka.CloseNamedConsumer(s.consumerName); err != nil {
		logger.Error("关闭Kafka消费者失败", logger.FieldErr(err))
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

// handleMessage 处理Kafka消息 - 使用MessageHandler签名
func (s *Source) handleMessage(data []byte) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("上下文已取消")
	default:
	}

	// 使用DecodeEvent解析二进制消息
	event, err := common.DecodeEvent(data)
	if err != nil {
		err = fmt.Errorf("解析事件数据失败: %w", err)
		select {
		case s.errChan <- err:
		case <-s.ctx.Done():
		}
		return err
	}

	// 只处理聊天消息事件，忽略其他事件类型
	if event.Type == common.ChatMessageEventType {
		msg := event.InnerEvent.(*common.ChatMessageEvent)
		if msg.Text == "" {
			return nil
		}

		select {
		case s.msgChan <- msg:
			logger.Debug("📨 处理聊天消息事件",
				logger.String("trace_id", msg.TraceID),
				logger.String("source", msg.Source),
				logger.Int64("chat_id", msg.ChatID))
		case <-s.ctx.Done():
			return fmt.Errorf("上下文已取消")
		}
	}
	// 其他事件类型直接忽略，不处理也不记录日志

	return nil
}

// String 数据源名称
func (s *Source) String() string {
	return fmt.Sprintf("kafka(%s)", s.config.Topic)
}

// GetStats 获取数据源统计信息
func (s *Source) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"topic":            s.config.Topic,
		"group_id":         s.config.KafkaConfig.GroupId,
		"consumer_name":    s.consumerName,
		"msg_channel_size": len(s.msgChan),
		"err_channel_size": len(s.errChan),
	}
}
