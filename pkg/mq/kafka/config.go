package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

type KafkaConsumerConfig struct {
	Topics       []string `json:"topics" yaml:"topics" toml:"topics"`
	Version      string   `json:"version" yaml:"version" toml:"version"`
	Assignor     string   `json:"assignor" yaml:"assignor" toml:"assignor"`
	OffsetIntial string   `json:"offset_initial" yaml:"offset_initial" toml:"offset_initial"`
	GroupId      string   `json:"group_id" yaml:"group_id" toml:"group_id"`
	ClientID     string   `json:"client_id" yaml:"client_id" toml:"client_id"`

	EnableAutoCommit   bool `json:"enable_auto_commit" yaml:"enable_auto_commit" toml:"enable_auto_commit"`
	AutoCommitInterval int  `json:"auto_commit_interval" yaml:"auto_commit_interval" toml:"auto_commit_interval"`
	SessionTimeout     int  `json:"session_timeout" yaml:"session_timeout" toml:"session_timeout"`
	HeartbeatInterval  int  `json:"heartbeat_interval" yaml:"heartbeat_interval" toml:"heartbeat_interval"`

	SecurityProtocol string `json:"security_protocol" yaml:"security_protocol" toml:"security_protocol"`
	SaslUsername     string `json:"sasl_username" yaml:"sasl_username" toml:"sasl_username"`
	SaslPassword     string `json:"sasl_password" yaml:"sasl_password" toml:"sasl_password"`
	SaslMechanism    string `json:"sasl_mechanism" yaml:"sasl_mechanism" toml:"sasl_mechanism"`
}

type KafkaProducerConfig struct {
	Version         string `json:"version" yaml:"version" toml:"version"`
	MessageMaxBytes int    `json:"message_max_bytes" yaml:"message_max_bytes" toml:"message_max_bytes"`
	LingerMs        int    `json:"linger_ms" yaml:"linger_ms" toml:"linger_ms"`
	RetryMax        int    `json:"retry_max" yaml:"retry_max" toml:"retry_max"`
	RetryBackoffMs  int    `json:"retry_backoff_ms" yaml:"retry_backoff_ms" toml:"retry_backoff_ms"`
	RequiredAcks    int    `json:"required_acks" yaml:"required_acks" toml:"required_acks"`
	ClientID        string `json:"client_id" yaml:"client_id" toml:"client_id"`

	SecurityProtocol string `json:"security_protocol" yaml:"security_protocol" toml:"security_protocol"`
	SaslUsername     string `json:"sasl_username" yaml:"sasl_username" toml:"sasl_username"`
	SaslPassword     string `json:"sasl_password" yaml:"sasl_password" toml:"sasl_password"`
	SaslMechanism    string `json:"sasl_mechanism" yaml:"sasl_mechanism" toml:"sasl_mechanism"`
}

func newConsumerConfig(cfg KafkaConsumerConfig) (*sarama.Config, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	if cfg.Version != "" {
		version, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("parse kafka version error: %w", err)
		}
		config.Version = version
	}

	if cfg.ClientID != "" {
		config.ClientID = cfg.ClientID + "_" + getClientID()
	}

	switch cfg.Assignor {
	case "sticky":
		config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	case "roundrobin", "":
		config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	case "range":
		config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	default:
		return nil, fmt.Errorf("unknown group assignor: %s", cfg.Assignor)
	}

	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	if cfg.OffsetIntial == "earliest" {
		config.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	config.Consumer.Offsets.AutoCommit.Enable = cfg.EnableAutoCommit
	if cfg.AutoCommitInterval > 0 {
		config.Consumer.Offsets.AutoCommit.Interval = time.Duration(cfg.AutoCommitInterval) * time.Millisecond
	}
	if cfg.SessionTimeout > 0 {
		config.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeout) * time.Millisecond
	}
	if cfg.HeartbeatInterval > 0 {
		config.Consumer.Group.Heartbeat.Interval = time.Duration(cfg.HeartbeatInterval) * time.Millisecond
	}
	config.Consumer.Return.Errors = true

	if err := applySecurity(config, cfg.SecurityProtocol, cfg.SaslMechanism, cfg.SaslUsername, cfg.SaslPassword); err != nil {
		return nil, err
	}

	return config, nil
}

func newProducerConfig(cfg KafkaProducerConfig) (*sarama.Config, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	if cfg.Version != "" {
		version, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("parse kafka version error: %w", err)
		}
		config.Version = version
	}

	if cfg.ClientID != "" {
		config.ClientID = cfg.ClientID + "_" + getClientID()
	}

	config.Producer.MaxMessageBytes = 10 * MB
	if cfg.MessageMaxBytes > 0 {
		config.Producer.MaxMessageBytes = cfg.MessageMaxBytes
	}
	config.Producer.Flush.Frequency = 5 * time.Millisecond
	if cfg.LingerMs > 0 {
		config.Producer.Flush.Frequency = time.Duration(cfg.LingerMs) * time.Millisecond
	}
	config.Producer.Retry.Max = 3
	if cfg.RetryMax > 0 {
		config.Producer.Retry.Max = cfg.RetryMax
	}
	config.Producer.Retry.Backoff = time.Second
	if cfg.RetryBackoffMs > 0 {
		config.Producer.Retry.Backoff = time.Duration(cfg.RetryBackoffMs) * time.Millisecond
	}
	config.Producer.RequiredAcks = sarama.WaitForLocal
	if cfg.RequiredAcks != 0 {
		config.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	}
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	if err := applySecurity(config, cfg.SecurityProtocol, cfg.SaslMechanism, cfg.SaslUsername, cfg.SaslPassword); err != nil {
		return nil, err
	}

	return config, nil
}

func applySecurity(config *sarama.Config, protocol, mechanism, username, password string) error {
	switch protocol {
	case "PLAINTEXT", "":
		// 默认明文
	case "SASL_PLAINTEXT":
		config.Net.SASL.Enable = true
		config.Net.SASL.User = username
		config.Net.SASL.Password = password
		switch mechanism {
		case "SCRAM-SHA-256":
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		case "SCRAM-SHA-512":
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		default:
			config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		}
	case "SASL_SSL":
		config.Net.SASL.Enable = true
		config.Net.SASL.User = username
		config.Net.SASL.Password = password
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		config.Net.TLS.Enable = true
	case "SSL":
		config.Net.TLS.Enable = true
	default:
		return fmt.Errorf("unknown protocol: %s", protocol)
	}
	return nil
}
