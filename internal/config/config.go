package config

import (
	"github.com/ninja0404/trade-journal/internal/pricing"
	"github.com/ninja0404/trade-journal/pkg/config"
	"github.com/ninja0404/trade-journal/pkg/config/source"
	"github.com/ninja0404/trade-journal/pkg/config/source/file"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/mq/kafka"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

// AppConfig 应用配置结构
type AppConfig struct {
	Logger   LoggerConfig   `yaml:"logger" json:"logger"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`
	Kafka    KafkaConfig    `yaml:"kafka" json:"kafka"`
	Pricing  PricingConfig  `yaml:"pricing" json:"pricing"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Output     string `yaml:"output" json:"output"`
	Debug      bool   `yaml:"debug" json:"debug"`
	Level      string `yaml:"level" json:"level"`
	AddCaller  bool   `yaml:"add_caller" json:"add_caller"`
	CallerSkip int    `yaml:"caller_skip" json:"caller_skip"`
}

// TelegramConfig Telegram数据源与回复配置
type TelegramConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	BotToken       string  `yaml:"bot_token" json:"bot_token"`
	AllowedSenders []int64 `yaml:"allowed_senders" json:"allowed_senders"` // 发送者白名单，空表示不限制
	PollTimeoutSec int     `yaml:"poll_timeout_sec" json:"poll_timeout_sec"`
}

// KafkaConfig Kafka数据源与回复topic配置
type KafkaConfig struct {
	Enabled    bool                      `yaml:"enabled" json:"enabled"`
	Brokers    []string                  `yaml:"brokers" json:"brokers"`
	Topic      string                    `yaml:"topic" json:"topic"` // 入站消息topic
	Consumer   kafka.KafkaConsumerConfig `yaml:"consumer" json:"consumer"`
	ReplyTopic string                    `yaml:"reply_topic" json:"reply_topic"` // 出站回复topic，空表示不发布
	Producer   kafka.KafkaProducerConfig `yaml:"producer" json:"producer"`
}

// PricingConfig 价格查询配置
type PricingConfig struct {
	DexScreener pricing.Config      `yaml:"dexscreener" json:"dexscreener"`
	Cache       pricing.CacheConfig `yaml:"cache" json:"cache"`
}

// PipelineConfig 消息处理管道配置
type PipelineConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// Manager 配置管理器
type Manager struct {
	config *AppConfig
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	return &Manager{}
}

// Load 加载配置文件
func (m *Manager) Load(configPath string) error {
	// 使用默认config，它已经支持yaml格式了
	err := config.Load(file.NewSource(
		file.WithPath(configPath),
		source.WithFormat("yaml"),
	))
	if err != nil {
		return err
	}

	// 解析配置
	var appConfig AppConfig
	err = config.Scan(&appConfig)
	if err != nil {
		return err
	}

	m.config = &appConfig
	return nil
}

// GetAppConfig 获取应用配置
func (m *Manager) GetAppConfig() *AppConfig {
	return m.config
}

// GetLoggerConfig 获取日志配置
func (m *Manager) GetLoggerConfig() LoggerConfig {
	return m.config.Logger
}

// GetTelegramConfig 获取Telegram配置
func (m *Manager) GetTelegramConfig() TelegramConfig {
	return m.config.Telegram
}

// GetKafkaConfig 获取Kafka配置
func (m *Manager) GetKafkaConfig() KafkaConfig {
	return m.config.Kafka
}

// GetPricingConfig 获取价格查询配置
func (m *Manager) GetPricingConfig() PricingConfig {
	return m.config.Pricing
}

// GetPipelineConfig 获取管道配置
func (m *Manager) GetPipelineConfig() PipelineConfig {
	return m.config.Pipeline
}

// InitLogger 初始化日志系统
func (m *Manager) InitLogger() error {
	loggerConfig := logger.FromConfig("logger")
	if utils.IsLocalEnv() {
		// 本地调试直接输出debug日志
		loggerConfig.Debug = true
		loggerConfig.Level = "debug"
	}
	loggerInstance := loggerConfig.Build()
	logger.SetDefault(loggerInstance)
	logger.SetDefaultL1(loggerInstance)
	return nil
}
