package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

type KafkaProducer struct {
	producer sarama.SyncProducer
}

func NewKafkaProducer(brokers []string, cfg KafkaProducerConfig) (*KafkaProducer, error) {
	config, err := newProducerConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{producer: producer}, nil
}

func (p *KafkaProducer) SendMessage(topic string, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(value),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Error("kafka_error: send message failed",
			logger.FieldErr(err),
			logger.String("topic", topic),
		)
		return err
	}
	logger.Debug("kafka message sent",
		logger.String("topic", topic),
		logger.Int32("partition", partition),
		logger.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaProducer) SendMessageWithKey(topic string, key string, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	_, _, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Error("kafka_error: send message failed",
			logger.FieldErr(err),
			logger.String("topic", topic),
			logger.String("key", key),
		)
	}
	return err
}

// Close 函数只负责关闭处理
func (p *KafkaProducer) Close() error {
	logger.Info("closing producer...")
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	logger.Info("producer closed successfully")
	return nil
}

func CloseProducer() error {
	return defaultProducer.Close()
}

func SendMessage(topic string, value []byte) error {
	return defaultProducer.SendMessage(topic, value)
}

func SendMessageWithKey(topic string, key string, value []byte) error {
	return defaultProducer.SendMessageWithKey(topic, key, value)
}
