package reply

import (
	"fmt"
	"strconv"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/pkg/mq/kafka"
)

// KafkaPublisher Kafka发布器，把回复事件投递到下游topic
type KafkaPublisher struct {
	topic string
}

// NewKafkaPublisher 创建Kafka发布器，依赖已初始化的默认生产者
func NewKafkaPublisher(topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic}
}

func (p *KafkaPublisher) GetType() string {
	return "kafka"
}

func (p *KafkaPublisher) Publish(reply *common.ReplyEvent) error {
	data, err := common.EncodeEvent(&common.Event{
		Type:       common.ReplyEventType,
		InnerEvent: reply,
	})
	if err != nil {
		return fmt.Errorf("编码回复事件失败: %w", err)
	}

	// 按会话ID分区，保证同一会话的回复有序
	return kafka.SendMessageWithKey(p.topic, strconv.FormatInt(reply.ChatID, 10), data)
}

func (p *KafkaPublisher) Close() error {
	return nil
}
