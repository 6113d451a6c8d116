package journal

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/trade-journal/internal/model"
	"github.com/ninja0404/trade-journal/internal/parser"
	"github.com/ninja0404/trade-journal/internal/pricing"
	"github.com/ninja0404/trade-journal/internal/tracker"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

func helpReply() string {
	return strings.Join([]string{
		"Send me a trade in plain words, e.g.:",
		"  bought $500 of 0x6982...1933 at $1.2B mcap",
		"  sold half https://dexscreener.com/solana/...",
		"",
		"Commands:",
		"  /positions (or /balance) — open positions",
		"  /log — recent trades",
		"  /stats — totals and realized PnL",
	}, "\n")
}

// parseFailureReply 解析失败转成可修正的提示语
func parseFailureReply(err error) string {
	switch {
	case errors.Is(err, parser.ErrEmptyMessage):
		return "Empty message. Send a trade description or /help."
	case errors.Is(err, parser.ErrNoAddressFound):
		return "I couldn't find a token address in that message. Include a contract address or a dexscreener link."
	case errors.Is(err, parser.ErrAmbiguousDirection):
		return "I couldn't tell if that was a buy or a sell. Add a word like \"bought\" or \"sold\"."
	default:
		return "I couldn't parse that message. Try /help for examples."
	}
}

func persistenceFailureReply() string {
	return "Something went wrong saving that trade. Nothing was recorded — please try again."
}

// trackerFailureReply 持仓错误按类型给出指明代币的诊断信息
func trackerFailureReply(err error, token *model.Token, traceID string) string {
	name := tokenLabel(token)

	switch {
	case errors.Is(err, tracker.ErrOrphanSell):
		return fmt.Sprintf("You have no open position in %s — recorded nothing. Log the buy first.", name)
	case errors.Is(err, tracker.ErrOversell):
		return fmt.Sprintf("That sell exceeds your remaining %s balance — recorded nothing. Check the amount and try again.", name)
	default:
		logger.Error("持仓更新失败",
			logger.FieldTraceId(traceID),
			logger.String("token", token.Address),
			logger.FieldErr(err))
		return persistenceFailureReply()
	}
}

// confirmationReply 入账确认：交易摘要 + 持仓快照
func confirmationReply(result *tracker.Result, token *model.Token, priceInfo *pricing.PriceInfo) string {
	var b strings.Builder

	verb := "Bought"
	if result.Trade.Direction == model.DirectionSell {
		verb = "Sold"
	}

	b.WriteString(fmt.Sprintf("✅ %s %s", verb, tokenLabel(token)))
	if result.Trade.TotalValueUsd.Valid {
		b.WriteString(fmt.Sprintf(" for %s", utils.FormatUsd(result.Trade.TotalValueUsd.Decimal)))
	}
	if result.Trade.AmountTokens.Valid {
		b.WriteString(fmt.Sprintf(" (%s tokens)", utils.FormatTokenAmount(result.Trade.AmountTokens.Decimal)))
	}
	b.WriteString("\n")

	if result.Trade.PriceUsd.Valid {
		b.WriteString(fmt.Sprintf("Price: %s", utils.FormatPrice(result.Trade.PriceUsd.Decimal.String())))
		if result.Trade.MarketCapAtTrade.Valid {
			b.WriteString(fmt.Sprintf(" | MCAP: %s", utils.FormatUsd(result.Trade.MarketCapAtTrade.Decimal)))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Price lookup failed — saved without price data.\n")
	}

	if result.JournalOnly {
		b.WriteString("Logged to journal only (token amount unknown, position untouched).")
		return b.String()
	}

	position := result.Position
	switch {
	case result.Opened:
		b.WriteString(fmt.Sprintf("Opened position: %s tokens, cost %s.",
			utils.FormatTokenAmount(position.RemainingTokens),
			utils.FormatUsd(position.TotalCostUsd)))
	case result.Closed:
		b.WriteString(fmt.Sprintf("Position closed. Realized PnL: %s.",
			utils.FormatUsd(position.RealizedPnlUsd)))
	default:
		b.WriteString(fmt.Sprintf("Position: %s tokens left, realized PnL %s.",
			utils.FormatTokenAmount(position.RemainingTokens),
			utils.FormatUsd(position.RealizedPnlUsd)))
	}
	if result.Clamped {
		b.WriteString(" (sell was trimmed to your remaining balance)")
	}

	return b.String()
}

func (s *Service) positionsReply() string {
	positions, err := s.store.Positions().ListActive()
	if err != nil {
		logger.Error("查询持仓列表失败", logger.FieldErr(err))
		return "Couldn't load positions right now."
	}
	if len(positions) == 0 {
		return "No open positions."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 Open positions (%d):\n", len(positions)))

	totalCost := decimal.Zero
	for _, position := range positions {
		label := fmt.Sprintf("token #%d", position.TokenID)
		if token, err := s.store.Tokens().GetByID(position.TokenID); err == nil && token != nil {
			label = tokenLabel(token)
		}

		b.WriteString(fmt.Sprintf("• %s [%s] %s tokens | cost %s | realized %s\n",
			label,
			position.Status,
			utils.FormatTokenAmount(position.RemainingTokens),
			utils.FormatUsd(position.TotalCostUsd),
			utils.FormatUsd(position.RealizedPnlUsd)))
		totalCost = totalCost.Add(position.TotalCostUsd)
	}

	b.WriteString(fmt.Sprintf("Total cost basis: %s", utils.FormatUsd(totalCost)))
	return b.String()
}

func (s *Service) tradeLogReply() string {
	trades, err := s.store.Trades().GetRecent(recentTradeLimit)
	if err != nil {
		logger.Error("查询交易流水失败", logger.FieldErr(err))
		return "Couldn't load the trade log right now."
	}
	if len(trades) == 0 {
		return "No trades recorded yet."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📒 Last %d trades:\n", len(trades)))
	for _, trade := range trades {
		label := fmt.Sprintf("token #%d", trade.TokenID)
		if token, err := s.store.Tokens().GetByID(trade.TokenID); err == nil && token != nil {
			label = tokenLabel(token)
		}

		line := fmt.Sprintf("• %s %s %s", trade.TradeTimestamp.Format("01-02 15:04"), trade.Direction, label)
		if trade.TotalValueUsd.Valid {
			line += " " + utils.FormatUsd(trade.TotalValueUsd.Decimal)
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) statsReply() string {
	stats, err := s.store.Trades().GetStats()
	if err != nil {
		logger.Error("查询交易统计失败", logger.FieldErr(err))
		return "Couldn't load stats right now."
	}

	realized, err := s.store.Positions().SumRealizedPnl()
	if err != nil {
		logger.Error("查询盈亏汇总失败", logger.FieldErr(err))
		return "Couldn't load stats right now."
	}
	openCount, _ := s.store.Positions().CountByStatus(model.PositionStatusOpen)
	partialCount, _ := s.store.Positions().CountByStatus(model.PositionStatusPartial)
	closedCount, _ := s.store.Positions().CountByStatus(model.PositionStatusClosed)

	return strings.Join([]string{
		"📈 Journal stats:",
		fmt.Sprintf("Trades: %d (%d buys / %d sells)", stats.TotalTrades, stats.BuyTrades, stats.SellTrades),
		fmt.Sprintf("Positions: %d open, %d partial, %d closed", openCount, partialCount, closedCount),
		fmt.Sprintf("Total invested: %s", utils.FormatUsd(stats.TotalInvestedUsd)),
		fmt.Sprintf("Total proceeds: %s", utils.FormatUsd(stats.TotalProceedsUsd)),
		fmt.Sprintf("Realized PnL: %s", utils.FormatUsd(realized)),
	}, "\n")
}

func tokenLabel(token *model.Token) string {
	if token.Symbol != "" {
		return "$" + token.Symbol
	}
	return utils.GetDisplayWalletAddress(token.Address)
}
