package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

type MessageHandler func(message []byte) error
type wrapperMessageHandler func(message *sarama.ConsumerMessage) error

type KafkaConsumer struct {
	group     sarama.ConsumerGroup
	srcConfig *KafkaConsumerConfig
	brokers   []string
	topics    []string
	groupId   string

	handlers map[string]wrapperMessageHandler

	done   chan struct{}
	closed chan struct{}

	cancelCtx  context.Context
	cancelFunc context.CancelFunc
}

func NewKafkaConsumer(brokers []string, cfg KafkaConsumerConfig) (*KafkaConsumer, error) {
	config, err := newConsumerConfig(cfg)
	if err != nil {
		return nil, err
	}
	group, err := sarama.NewConsumerGroup(brokers, cfg.GroupId, config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	instance := &KafkaConsumer{
		group:      group,
		srcConfig:  &cfg,
		brokers:    brokers,
		topics:     cfg.Topics,
		groupId:    cfg.GroupId,
		done:       make(chan struct{}),
		closed:     make(chan struct{}),
		handlers:   make(map[string]wrapperMessageHandler, 0),
		cancelCtx:  ctx,
		cancelFunc: cancel,
	}
	return instance, nil
}

func (kc *KafkaConsumer) RegisterTopicHandler(t string, h MessageHandler) error {
	wrapperHandler := func(msg *sarama.ConsumerMessage) error {
		var err error
		defer func() {
			if r := recover(); r != nil {
				logger.Error("recovery from kafka message handler",
					logger.String("topic", msg.Topic),
					logger.Int32("partition", msg.Partition),
					logger.Int64("offset", msg.Offset),
					logger.String("stack", string(utils.GetStack())),
				)

				err = fmt.Errorf("panic in message handler: %v", r)
			}
		}()

		err = h(msg.Value)
		if err != nil {
			logger.Error("kafka message handler error",
				logger.FieldErr(err),
				logger.String("topic", msg.Topic))
			return err
		}
		return nil
	}
	for _, topic := range kc.topics {
		if topic == t {
			kc.handlers[t] = wrapperHandler
			logger.Info("注册Kafka消息处理器",
				logger.String("topic", t),
				logger.String("handler", utils.FunctionName(h)))
			return nil
		}
	}
	return errors.New("topic not in consumer list")
}

func (kc *KafkaConsumer) Start() error {
	go func() {
		for err := range kc.group.Errors() {
			logger.Error("kafka consumer group error", logger.FieldErr(err), logger.String("group", kc.groupId))
		}
	}()

	go func() {
		defer close(kc.closed)
		for {
			// rebalance后Consume返回，需要重新进入
			if err := kc.group.Consume(kc.cancelCtx, kc.topics, kc); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				logger.Error("kafka consumer consume error", logger.FieldErr(err))
			}
			if kc.cancelCtx.Err() != nil {
				return
			}
		}
	}()
	return nil
}

func (kc *KafkaConsumer) Close() error {
	kc.cancelFunc()
	if err := kc.group.Close(); err != nil {
		return fmt.Errorf("close consumer error: %w", err)
	}
	<-kc.closed
	close(kc.done)

	logger.Info("consumer closed successfully")
	return nil
}

// Setup implements sarama.ConsumerGroupHandler.
func (kc *KafkaConsumer) Setup(session sarama.ConsumerGroupSession) error {
	logger.Info("kafka consumer session setup",
		logger.String("group", kc.groupId),
		logger.String("member", session.MemberID()))
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler.
func (kc *KafkaConsumer) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (kc *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	h, ok := kc.handlers[claim.Topic()]
	if !ok {
		logger.Warn("kafka consumer no handler for topic", logger.String("topic", claim.Topic()))
		h = func(msg *sarama.ConsumerMessage) error { return nil }
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// 处理失败只记录，不阻塞位点推进
			if err := h(msg); err != nil {
				logger.Error("kafka message dropped after handler error",
					logger.FieldErr(err),
					logger.String("topic", msg.Topic),
					logger.Int64("offset", msg.Offset))
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

var _ sarama.ConsumerGroupHandler = (*KafkaConsumer)(nil)
