package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/ninja0404/trade-journal/internal/config"
	"github.com/ninja0404/trade-journal/internal/journal"
	"github.com/ninja0404/trade-journal/internal/pipeline"
	"github.com/ninja0404/trade-journal/internal/pricing"
	"github.com/ninja0404/trade-journal/internal/reply"
	"github.com/ninja0404/trade-journal/internal/repo"
	sourcekafka "github.com/ninja0404/trade-journal/internal/source/kafka"
	sourcetelegram "github.com/ninja0404/trade-journal/internal/source/telegram"
	"github.com/ninja0404/trade-journal/pkg/database/mysql"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/mq/kafka"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

// Application 交易日志记账应用
type Application struct {
	configManager *config.Manager
	pipeline      *pipeline.Pipeline
	db            *gorm.DB
	store         repo.Store
	priceCache    *pricing.Cache
	kafkaProducer bool
}

// New 创建新的交易日志应用实例
func New() *Application {
	return &Application{
		configManager: config.NewManager(),
	}
}

// Initialize 初始化应用
func (app *Application) Initialize(configPath string) error {
	// 1. 加载配置，目前仅支持文件配置
	if !utils.IsFileConfig() {
		return fmt.Errorf("不支持的配置类型: %s", utils.GetConfigType())
	}
	if err := app.configManager.Load(configPath); err != nil {
		return err
	}

	// 2. 初始化日志系统
	if err := app.configManager.InitLogger(); err != nil {
		return err
	}
	logger.Info("🚀 交易日志记账服务初始化开始", logger.String("config_path", configPath))

	// 3. 初始化数据库
	if err := app.initDatabase(); err != nil {
		return err
	}

	// 4. 初始化价格查询与记账服务，组装管道
	journalService := app.buildJournalService()
	app.pipeline = pipeline.NewPipeline(journalService, app.configManager.GetPipelineConfig().Workers)

	// 5. 设置数据源与回复发布器
	if err := app.setupDataSources(); err != nil {
		return err
	}
	if err := app.setupReplyPublishers(); err != nil {
		return err
	}

	logger.Info("✅ 交易日志记账服务初始化完成")
	return nil
}

// initDatabase 初始化数据库连接
func (app *Application) initDatabase() error {
	// 从默认配置初始化数据库
	if err := mysql.SetupDatabaseFromDefaultConfig(); err != nil {
		return err
	}

	// 获取数据库连接
	db, err := mysql.GetDb()
	if err != nil {
		return err
	}
	app.db = db
	app.store = repo.NewStore(db)

	logger.Info("📊 数据库连接已建立")
	return nil
}

// buildJournalService 组装价格查询与记账服务
func (app *Application) buildJournalService() *journal.Service {
	pricingConfig := app.configManager.GetPricingConfig()

	app.priceCache = pricing.NewCache(pricingConfig.Cache)
	priceClient := pricing.NewClient(pricingConfig.DexScreener, app.priceCache)

	return journal.NewService(app.store, priceClient)
}

// setupDataSources 设置数据源
func (app *Application) setupDataSources() error {
	sourceManager := app.pipeline.GetSourceManager()

	telegramConfig := app.configManager.GetTelegramConfig()
	if telegramConfig.Enabled {
		tgSource := sourcetelegram.NewSource(sourcetelegram.SourceConfig{
			BotToken:       telegramConfig.BotToken,
			AllowedSenders: telegramConfig.AllowedSenders,
			PollTimeoutSec: telegramConfig.PollTimeoutSec,
		})
		sourceManager.AddSource(tgSource)
		logger.Info("📱 已配置Telegram数据源",
			logger.Int("allowed_senders", len(telegramConfig.AllowedSenders)))
	}

	kafkaConfig := app.configManager.GetKafkaConfig()
	if kafkaConfig.Enabled {
		kafkaSource := sourcekafka.NewSource(sourcekafka.SourceConfig{
			Topic:       kafkaConfig.Topic,
			Brokers:     kafkaConfig.Brokers,
			KafkaConfig: kafkaConfig.Consumer,
		})
		sourceManager.AddSource(kafkaSource)
		logger.Info("📨 已配置Kafka数据源",
			logger.String("topic", kafkaConfig.Topic),
			logger.Any("brokers", kafkaConfig.Brokers))
	}

	if !telegramConfig.Enabled && !kafkaConfig.Enabled {
		logger.Warn("⚠️ 未启用任何数据源，服务将不会收到消息")
	}

	return nil
}

// setupReplyPublishers 设置回复发布器
func (app *Application) setupReplyPublishers() error {
	replyManager := app.pipeline.GetReplyManager()

	// 日志发布器始终启用
	replyManager.AddPublisher(&reply.LogPublisher{})

	telegramConfig := app.configManager.GetTelegramConfig()
	if telegramConfig.Enabled && telegramConfig.BotToken != "" {
		replyManager.AddPublisher(reply.NewTelegramPublisher(telegramConfig.BotToken))
	}

	kafkaConfig := app.configManager.GetKafkaConfig()
	if kafkaConfig.Enabled && kafkaConfig.ReplyTopic != "" {
		if err := kafka.SetupKafkaProducer(kafkaConfig.Brokers, kafkaConfig.Producer); err != nil {
			return err
		}
		app.kafkaProducer = true
		replyManager.AddPublisher(reply.NewKafkaPublisher(kafkaConfig.ReplyTopic))
	}

	return nil
}

// Run 运行应用
func (app *Application) Run() error {
	logger.Info("🎯 启动消息记账管道")

	// 启动消息处理管道
	if err := app.pipeline.Start(); err != nil {
		return err
	}

	logger.Info("🔥 交易日志记账服务已启动，等待聊天消息...")

	// 等待终止信号
	app.waitForShutdown()

	return nil
}

// waitForShutdown 等待关闭信号
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 阻塞等待信号
	sig := <-quit
	logger.Info("📤 收到终止信号，开始优雅关闭应用...", logger.String("signal", sig.String()))

	// 优雅关闭
	app.Shutdown()
}

// Shutdown 优雅关闭应用
func (app *Application) Shutdown() {
	logger.Info("🛑 开始关闭交易日志记账服务...")

	// 停止消息处理管道
	if err := app.pipeline.Stop(); err != nil {
		logger.Error("停止消息处理管道失败", logger.FieldErr(err))
	}

	// 关闭Kafka生产者
	if app.kafkaProducer {
		if err := kafka.CloseProducer(); err != nil {
			logger.Error("关闭Kafka生产者失败", logger.FieldErr(err))
		}
	}

	// 关闭价格缓存
	if err := app.priceCache.Close(); err != nil {
		logger.Error("关闭价格缓存失败", logger.FieldErr(err))
	}

	// 关闭数据库连接
	if err := mysql.Stop(); err != nil {
		logger.Error("关闭数据库连接失败", logger.FieldErr(err))
	}

	// 获取统计信息
	stats := app.pipeline.GetStats()
	logger.Info("📈 服务运行统计",
		logger.Int64("messages_processed", stats.MessagesProcessed),
		logger.Int64("replies_published", stats.RepliesPublished),
		logger.Int64("errors_count", stats.ErrorsCount))

	logger.Info("✨ 交易日志记账服务已成功关闭")
}

// Start 启动应用的便捷方法
func (app *Application) Start(configPath string) error {
	// 初始化
	if err := app.Initialize(configPath); err != nil {
		logger.Error("❌ 交易日志记账服务初始化失败", logger.FieldErr(err))
		return err
	}

	// 运行
	if err := app.Run(); err != nil {
		logger.Error("❌ 交易日志记账服务运行失败", logger.FieldErr(err))
		return err
	}

	return nil
}

// GetPipeline 获取消息处理管道（用于调试和监控）
func (app *Application) GetPipeline() *pipeline.Pipeline {
	return app.pipeline
}

// GetConfigManager 获取配置管理器
func (app *Application) GetConfigManager() *config.Manager {
	return app.configManager
}

// GetDatabase 获取数据库连接
func (app *Application) GetDatabase() *gorm.DB {
	return app.db
}

// GetStore 获取仓储入口
func (app *Application) GetStore() repo.Store {
	return app.store
}
