package journal

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/internal/model"
	"github.com/ninja0404/trade-journal/internal/parser"
	"github.com/ninja0404/trade-journal/internal/pricing"
	"github.com/ninja0404/trade-journal/internal/repo"
	"github.com/ninja0404/trade-journal/internal/tracker"
	"github.com/ninja0404/trade-journal/pkg/logger"
)

const recentTradeLimit = 10

// 以美元计价的花费币种，可以直接用 spend/price 推导代币数量
var stableCurrencies = map[string]bool{
	"USD":  true,
	"USDC": true,
	"USDT": true,
	"DAI":  true,
}

// Service 消息编排服务：解析 → 价格补全 → 持仓折算 → 回复
type Service struct {
	store   repo.Store
	tracker *tracker.Tracker
	price   pricing.Source
}

func NewService(store repo.Store, price pricing.Source) *Service {
	return &Service{
		store:   store,
		tracker: tracker.NewTracker(store),
		price:   price,
	}
}

// HandleMessage 处理一条入站消息，返回回复文本
func (s *Service) HandleMessage(ctx context.Context, msg *common.ChatMessageEvent) string {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, text)
	}

	return s.handleTrade(ctx, msg, text)
}

func (s *Service) handleCommand(ctx context.Context, text string) string {
	command := strings.ToLower(strings.Fields(text)[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	switch command {
	case "/positions", "/balance":
		return s.positionsReply()
	case "/log":
		return s.tradeLogReply()
	case "/stats":
		return s.statsReply()
	case "/start", "/help":
		return helpReply()
	default:
		return "Unknown command. Try /positions, /log, /stats or /help."
	}
}

func (s *Service) handleTrade(ctx context.Context, msg *common.ChatMessageEvent, text string) string {
	intent, err := parser.Parse(text)
	if err != nil {
		// 解析失败属于用户可修正错误，不落任何数据
		return parseFailureReply(err)
	}

	priceInfo := s.enrich(ctx, msg.TraceID, intent)

	chain := s.resolveChain(intent, priceInfo)
	token, err := s.store.Tokens().GetOrCreate(intent.Address, chain)
	if err != nil {
		logger.Error("创建代币记录失败",
			logger.FieldTraceId(msg.TraceID),
			logger.FieldErr(err))
		return persistenceFailureReply()
	}

	if priceInfo != nil {
		if err := s.store.Tokens().UpdateMeta(token.ID, priceInfo.Symbol, priceInfo.Name); err != nil {
			logger.Warn("更新代币元数据失败", logger.FieldErr(err))
		} else {
			if priceInfo.Symbol != "" {
				token.Symbol = priceInfo.Symbol
			}
			if priceInfo.Name != "" {
				token.Name = priceInfo.Name
			}
		}
	}

	trade := s.buildTrade(msg, intent, token, priceInfo)

	// 钱包标注失败只降级为无钱包记账
	if intent.WalletAddress != "" {
		if wallet, werr := s.store.Wallets().GetOrCreate(intent.WalletAddress, chain); werr != nil {
			logger.Warn("创建钱包记录失败",
				logger.FieldTraceId(msg.TraceID),
				logger.String("wallet", intent.WalletAddress),
				logger.FieldErr(werr))
		} else {
			trade.WalletID = &wallet.ID
		}
	}

	result, err := s.tracker.Apply(ctx, trade)
	if err != nil {
		return trackerFailureReply(err, token, msg.TraceID)
	}

	logger.Info("交易已入账",
		logger.FieldTraceId(msg.TraceID),
		logger.String("token", token.Address),
		logger.String("chain", token.Chain),
		logger.String("direction", trade.Direction),
		logger.Bool("journal_only", result.JournalOnly))

	return confirmationReply(result, token, priceInfo)
}

// enrich 价格查询尽力而为，失败只降级不终止
func (s *Service) enrich(ctx context.Context, traceID string, intent *parser.TradeIntent) *pricing.PriceInfo {
	if s.price == nil {
		return nil
	}

	info, err := s.price.Lookup(ctx, intent.Address, intent.Chain)
	if err != nil {
		if errors.Is(err, pricing.ErrTokenNotFound) {
			logger.Warn("代币价格未找到",
				logger.FieldTraceId(traceID),
				logger.String("address", intent.Address),
				logger.String("chain", intent.Chain))
		} else {
			logger.Error("价格查询失败",
				logger.FieldTraceId(traceID),
				logger.String("address", intent.Address),
				logger.FieldErr(err))
		}
		return nil
	}
	return info
}

// resolveChain 链名优先级：URL/文本已解析 > 价格接口返回 > 地址家族兜底
func (s *Service) resolveChain(intent *parser.TradeIntent, priceInfo *pricing.PriceInfo) string {
	if intent.Chain != "" {
		return intent.Chain
	}
	if priceInfo != nil && priceInfo.Chain != "" {
		return priceInfo.Chain
	}
	// 裸EVM地址且价格接口也没给出链：用家族占位，避免凭空猜一条链
	return intent.Family.String()
}

func (s *Service) buildTrade(msg *common.ChatMessageEvent, intent *parser.TradeIntent, token *model.Token, priceInfo *pricing.PriceInfo) *model.Trade {
	timestamp := msg.ReceivedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	trade := &model.Trade{
		TokenID:          token.ID,
		Direction:        intent.Direction,
		AmountSpent:      intent.SpendAmount,
		SpendCurrency:    intent.SpendCurrency,
		MarketCapAtTrade: intent.MarketCap,
		SourceMessage:    intent.RawMessage,
		NotesURL:         intent.NotesURL,
		DexScreenerURL:   intent.DexScreenerURL,
		TradeTimestamp:   timestamp,
	}

	if priceInfo != nil {
		trade.PriceUsd = decimal.NewNullDecimal(priceInfo.PriceUsd)
		if !trade.MarketCapAtTrade.Valid && !priceInfo.MarketCap.IsZero() {
			trade.MarketCapAtTrade = decimal.NewNullDecimal(priceInfo.MarketCap)
		}
		if trade.DexScreenerURL == "" {
			trade.DexScreenerURL = priceInfo.URL
		}
	}

	// 美元计价花费 + 已知价格：代币数量 = 花费 / 单价
	if intent.SpendAmount.Valid && stableCurrencies[intent.SpendCurrency] {
		trade.TotalValueUsd = intent.SpendAmount
		if priceInfo != nil && priceInfo.PriceUsd.IsPositive() {
			trade.AmountTokens = decimal.NewNullDecimal(
				intent.SpendAmount.Decimal.Div(priceInfo.PriceUsd))
		}
	}

	return trade
}
