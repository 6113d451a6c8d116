package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/trade-journal/internal/model"
	"github.com/ninja0404/trade-journal/internal/repo"
	"github.com/ninja0404/trade-journal/pkg/logger"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

const (
	// 进程内按 (token, wallet) 分片串行化
	lockStripes = 64

	// 同一持仓跨进程并发时的乐观锁重试上限
	maxVersionRetries = 3
)

// 浮点累计误差容忍：超卖比例在该阈值内按清仓处理，超出则拒绝
var oversellEpsilon = decimal.New(1, -8) // 1e-8

// Result 持仓更新结果，携带更新后的持仓快照
type Result struct {
	Trade    *model.Trade
	Position *model.Position

	// JournalOnly 数量或金额未知，只记流水，不动持仓
	JournalOnly bool

	// Opened 本次交易新开仓
	Opened bool

	// Closed 本次交易清仓
	Closed bool

	// Clamped 卖出数量在误差容忍内被按剩余持仓截断
	Clamped bool

	// RealizedPnl 本次卖出实现的盈亏
	RealizedPnl decimal.Decimal
}

// Tracker 持仓跟踪引擎
// 读-改-写在单个数据库事务内完成，进程内分片锁 + 行级版本号双重保护
type Tracker struct {
	store repo.Store
	locks [lockStripes]sync.Mutex
}

func NewTracker(store repo.Store) *Tracker {
	return &Tracker{store: store}
}

// Apply 将一笔交易落库并折算进对应持仓
// trade 未持久化，由本方法在事务内写入
func (t *Tracker) Apply(ctx context.Context, trade *model.Trade) (*Result, error) {
	mu := &t.locks[utils.CalcFnvStripe(positionKey(trade.TokenID, trade.WalletID), lockStripes)]
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := t.applyOnce(trade)
		if err == errRetryConflict {
			logger.Warn("持仓版本冲突，重试",
				logger.Int64("token_id", trade.TokenID),
				logger.Int("attempt", attempt+1))
			continue
		}
		return result, err
	}

	return nil, ErrVersionConflict
}

// errRetryConflict 内部信号：版本冲突，回滚后重试
var errRetryConflict = errors.New("position version conflict")

func (t *Tracker) applyOnce(trade *model.Trade) (*Result, error) {
	result := &Result{Trade: trade}

	err := t.store.Transaction(func(tx repo.Store) error {
		position, err := tx.Positions().FindActive(trade.TokenID, trade.WalletID)
		if err != nil {
			return err
		}

		if position == nil && trade.Direction == model.DirectionSell {
			return errors.Wrapf(ErrOrphanSell, "token_id=%d", trade.TokenID)
		}

		// 数量或金额未知：只记流水，持仓不动
		if !trade.AmountTokens.Valid || !trade.TotalValueUsd.Valid {
			result.JournalOnly = true
			if position != nil {
				result.Position = position
				trade.PositionID = &position.ID
			}
			return tx.Trades().Create(trade)
		}

		if position == nil {
			position, err = t.openPosition(tx, trade)
			if err != nil {
				return err
			}
			result.Opened = true
		} else {
			err = t.updatePosition(tx, position, trade, result)
			if err != nil {
				return err
			}
		}

		result.Position = position
		result.Closed = position.IsClosed()
		trade.PositionID = &position.ID
		return tx.Trades().Create(trade)
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// openPosition 首次BUY开新仓
func (t *Tracker) openPosition(tx repo.Store, trade *model.Trade) (*model.Position, error) {
	amount := trade.AmountTokens.Decimal
	cost := trade.TotalValueUsd.Decimal

	position := &model.Position{
		TokenID:         trade.TokenID,
		WalletID:        trade.WalletID,
		Status:          model.PositionStatusOpen,
		TotalBought:     amount,
		TotalSold:       decimal.Zero,
		RemainingTokens: amount,
		TotalCostUsd:    cost,
		OpenedAt:        trade.TradeTimestamp,
	}

	if err := tx.Positions().Create(position); err != nil {
		return nil, err
	}
	return position, nil
}

// updatePosition 把交易折算进已有持仓，乐观锁版本号校验
func (t *Tracker) updatePosition(tx repo.Store, position *model.Position, trade *model.Trade, result *Result) error {
	amount := trade.AmountTokens.Decimal
	value := trade.TotalValueUsd.Decimal

	switch trade.Direction {
	case model.DirectionBuy:
		position.TotalBought = position.TotalBought.Add(amount)
		position.TotalCostUsd = position.TotalCostUsd.Add(value)
		position.RemainingTokens = position.RemainingTokens.Add(amount)

	case model.DirectionSell:
		remaining := position.RemainingTokens
		if amount.GreaterThan(remaining) {
			overshoot := amount.Sub(remaining)
			if remaining.IsPositive() && overshoot.Div(remaining).LessThanOrEqual(oversellEpsilon) {
				// 浮点累计误差，按清仓截断
				amount = remaining
				result.Clamped = true
			} else {
				return errors.Wrapf(ErrOversell,
					"position_id=%d remaining=%s sell=%s",
					position.ID, remaining, trade.AmountTokens.Decimal)
			}
		}

		// 加权平均成本：每次卖出时按累计值重新计算
		avgCost := position.AvgCostUsd()
		costBasis := avgCost.Mul(amount)
		pnl := value.Sub(costBasis)

		position.RealizedPnlUsd = position.RealizedPnlUsd.Add(pnl)
		position.TotalSold = position.TotalSold.Add(amount)
		position.TotalProceedsUsd = position.TotalProceedsUsd.Add(value)
		position.RemainingTokens = position.RemainingTokens.Sub(amount)
		result.RealizedPnl = pnl

	default:
		return errors.Errorf("unknown trade direction: %s", trade.Direction)
	}

	recomputeStatus(position)
	if position.IsClosed() && position.ClosedAt == nil {
		closedAt := trade.TradeTimestamp
		position.ClosedAt = &closedAt
	}

	ok, err := tx.Positions().UpdateWithVersion(position, position.Version)
	if err != nil {
		return err
	}
	if !ok {
		return errRetryConflict
	}
	return nil
}

// recomputeStatus 状态完全由累计字段推导，卖过的持仓不会回到OPEN
func recomputeStatus(position *model.Position) {
	switch {
	case position.RemainingTokens.IsZero() && position.TotalBought.IsPositive():
		position.Status = model.PositionStatusClosed
	case position.TotalSold.IsPositive():
		position.Status = model.PositionStatusPartial
	default:
		position.Status = model.PositionStatusOpen
	}
}

func positionKey(tokenID int64, walletID *int64) string {
	if walletID == nil {
		return fmt.Sprintf("%d:-", tokenID)
	}
	return fmt.Sprintf("%d:%d", tokenID, *walletID)
}
