package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/internal/journal"
	"github.com/ninja0404/trade-journal/internal/reply"
	"github.com/ninja0404/trade-journal/internal/source"
	"github.com/ninja0404/trade-journal/pkg/logger"
)

const defaultWorkerCount = 4

// Pipeline 消息处理管道：数据源 → 记账服务 → 回复发布
type Pipeline struct {
	sourceManager  *source.Manager
	journalService *journal.Service
	replyManager   *reply.Manager
	workerCount    int
	ctx            context.Context
	cancel         context.CancelFunc
	group          *errgroup.Group

	messagesProcessed atomic.Int64
	repliesPublished  atomic.Int64
	errorsCount       atomic.Int64
}

// NewPipeline 创建消息处理管道
func NewPipeline(journalService *journal.Service, workerCount int) *Pipeline {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	return &Pipeline{
		sourceManager:  source.NewManager(),
		journalService: journalService,
		replyManager:   reply.NewManager(),
		workerCount:    workerCount,
		ctx:            ctx,
		cancel:         cancel,
		group:          group,
	}
}

// GetSourceManager 获取数据源管理器
func (p *Pipeline) GetSourceManager() *source.Manager {
	return p.sourceManager
}

// GetReplyManager 获取回复发布管理器
func (p *Pipeline) GetReplyManager() *reply.Manager {
	return p.replyManager
}

// Start 启动消息处理管道
func (p *Pipeline) Start() error {
	logger.Info("启动消息处理管道", logger.Int("workers", p.workerCount))

	// 启动回复发布管理器
	if err := p.replyManager.Start(); err != nil {
		return err
	}

	// 启动数据源管理器
	if err := p.sourceManager.Start(); err != nil {
		return err
	}

	// 启动消息处理工作池
	for i := 0; i < p.workerCount; i++ {
		p.group.Go(p.processMessages)
	}
	p.group.Go(p.processErrors)

	logger.Info("消息处理管道已启动")
	return nil
}

// Stop 停止消息处理管道
func (p *Pipeline) Stop() error {
	logger.Info("停止消息处理管道")

	// 取消上下文
	p.cancel()

	// 停止各个组件
	if err := p.sourceManager.Stop(); err != nil {
		logger.Error("停止数据源管理器失败", logger.FieldErr(err))
	}

	// 等待工作池退出
	if err := p.group.Wait(); err != nil {
		logger.Error("消息处理工作池退出异常", logger.FieldErr(err))
	}

	if err := p.replyManager.Stop(); err != nil {
		logger.Error("停止回复发布管理器失败", logger.FieldErr(err))
	}

	logger.Info("消息处理管道已停止")
	return nil
}

// processMessages 工作协程：消费消息并发布回复
func (p *Pipeline) processMessages() error {
	msgChan := p.sourceManager.Messages()

	for {
		select {
		case <-p.ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			p.handleMessage(msg)
		}
	}
}

// processErrors 处理数据源错误
func (p *Pipeline) processErrors() error {
	errorChan := p.sourceManager.Errors()

	for {
		select {
		case <-p.ctx.Done():
			return nil
		case err, ok := <-errorChan:
			if !ok {
				return nil
			}

			p.errorsCount.Add(1)
			logger.Error("数据源错误", logger.FieldErr(err))
		}
	}
}

// handleMessage 处理单条消息
func (p *Pipeline) handleMessage(msg *common.ChatMessageEvent) {
	start := time.Now()
	replyText := p.journalService.HandleMessage(p.ctx, msg)
	p.messagesProcessed.Add(1)

	logger.Debug("消息处理完成",
		logger.FieldTraceId(msg.TraceID),
		logger.FieldCost(time.Since(start)))

	if replyText == "" {
		return
	}

	p.replyManager.PublishReply(&common.ReplyEvent{
		TraceID:   msg.TraceID,
		ChatID:    msg.ChatID,
		Text:      replyText,
		CreatedAt: time.Now(),
	})
	p.repliesPublished.Add(1)
}

// Stats 管道统计信息
type Stats struct {
	MessagesProcessed int64 `json:"messages_processed"`
	RepliesPublished  int64 `json:"replies_published"`
	ErrorsCount       int64 `json:"errors_count"`
}

// GetStats 获取管道统计信息
func (p *Pipeline) GetStats() *Stats {
	return &Stats{
		MessagesProcessed: p.messagesProcessed.Load(),
		RepliesPublished:  p.repliesPublished.Load(),
		ErrorsCount:       p.errorsCount.Load(),
	}
}
