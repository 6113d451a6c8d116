package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/trade-journal/internal/model"
	"github.com/ninja0404/trade-journal/internal/repo"
)

// ---------------------------------------------------------------------------
// 内存版Store，事务回滚用快照恢复模拟
// ---------------------------------------------------------------------------

type fakeStore struct {
	trades    []*model.Trade
	positions []*model.Position
	nextID    int64

	// 故意让UpdateWithVersion前N次失败，模拟跨进程版本冲突
	conflictTimes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) Tokens() repo.TokenRepo       { return nil }
func (s *fakeStore) Wallets() repo.WalletRepo     { return nil }
func (s *fakeStore) Trades() repo.TradeRepo       { return &fakeTradeRepo{s} }
func (s *fakeStore) Positions() repo.PositionRepo { return &fakePositionRepo{s} }

func (s *fakeStore) Transaction(fn func(tx repo.Store) error) error {
	tradesSnap := make([]*model.Trade, len(s.trades))
	copy(tradesSnap, s.trades)
	positionsSnap := make([]*model.Position, 0, len(s.positions))
	for _, p := range s.positions {
		cp := *p
		positionsSnap = append(positionsSnap, &cp)
	}
	idSnap := s.nextID

	if err := fn(s); err != nil {
		s.trades = tradesSnap
		s.positions = positionsSnap
		s.nextID = idSnap
		return err
	}
	return nil
}

type fakeTradeRepo struct{ s *fakeStore }

func (r *fakeTradeRepo) Create(trade *model.Trade) error {
	trade.ID = r.s.nextID
	r.s.nextID++
	r.s.trades = append(r.s.trades, trade)
	return nil
}

func (r *fakeTradeRepo) GetRecent(limit int) ([]*model.Trade, error) {
	if limit > len(r.s.trades) {
		limit = len(r.s.trades)
	}
	out := make([]*model.Trade, 0, limit)
	for i := len(r.s.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.trades[i])
	}
	return out, nil
}

func (r *fakeTradeRepo) GetByPositionID(positionID int64) ([]*model.Trade, error) {
	var out []*model.Trade
	for _, t := range r.s.trades {
		if t.PositionID != nil && *t.PositionID == positionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTradeRepo) GetStats() (*repo.TradeStats, error) {
	stats := &repo.TradeStats{TotalTrades: int64(len(r.s.trades))}
	for _, t := range r.s.trades {
		if t.IsBuy() {
			stats.BuyTrades++
			if t.TotalValueUsd.Valid {
				stats.TotalInvestedUsd = stats.TotalInvestedUsd.Add(t.TotalValueUsd.Decimal)
			}
		} else {
			stats.SellTrades++
			if t.TotalValueUsd.Valid {
				stats.TotalProceedsUsd = stats.TotalProceedsUsd.Add(t.TotalValueUsd.Decimal)
			}
		}
	}
	return stats, nil
}

type fakePositionRepo struct{ s *fakeStore }

func (r *fakePositionRepo) FindActive(tokenID int64, walletID *int64) (*model.Position, error) {
	for _, p := range r.s.positions {
		if p.TokenID != tokenID || p.Status == model.PositionStatusClosed {
			continue
		}
		if (p.WalletID == nil) != (walletID == nil) {
			continue
		}
		if walletID != nil && *p.WalletID != *walletID {
			continue
		}
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePositionRepo) Create(position *model.Position) error {
	position.ID = r.s.nextID
	r.s.nextID++
	cp := *position
	r.s.positions = append(r.s.positions, &cp)
	return nil
}

func (r *fakePositionRepo) UpdateWithVersion(position *model.Position, expectedVersion int64) (bool, error) {
	if r.s.conflictTimes > 0 {
		r.s.conflictTimes--
		return false, nil
	}
	for i, p := range r.s.positions {
		if p.ID != position.ID {
			continue
		}
		if p.Version != expectedVersion {
			return false, nil
		}
		cp := *position
		cp.Version = expectedVersion + 1
		r.s.positions[i] = &cp
		position.Version = cp.Version
		return true, nil
	}
	return false, nil
}

func (r *fakePositionRepo) GetByID(id int64) (*model.Position, error) {
	for _, p := range r.s.positions {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePositionRepo) ListActive() ([]*model.Position, error) {
	var out []*model.Position
	for _, p := range r.s.positions {
		if p.Status != model.PositionStatusClosed {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePositionRepo) SumRealizedPnl() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.positions {
		sum = sum.Add(p.RealizedPnlUsd)
	}
	return sum, nil
}

func (r *fakePositionRepo) CountByStatus(status string) (int64, error) {
	var count int64
	for _, p := range r.s.positions {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// 测试辅助
// ---------------------------------------------------------------------------

func newTrade(direction string, tokens, valueUsd string) *model.Trade {
	return &model.Trade{
		TokenID:        1,
		Direction:      direction,
		AmountTokens:   decimal.NewNullDecimal(decimal.RequireFromString(tokens)),
		TotalValueUsd:  decimal.NewNullDecimal(decimal.RequireFromString(valueUsd)),
		TradeTimestamp: time.Now(),
	}
}

func mustApply(t *testing.T, tr *Tracker, trade *model.Trade) *Result {
	t.Helper()
	result, err := tr.Apply(context.Background(), trade)
	require.NoError(t, err)
	return result
}

// ---------------------------------------------------------------------------
// 场景用例
// ---------------------------------------------------------------------------

// BUY 1000 tokens for $100 → 开仓
func TestApplyFirstBuyOpensPosition(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	result := mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))

	assert.True(t, result.Opened)
	pos := result.Position
	assert.Equal(t, model.PositionStatusOpen, pos.Status)
	assert.True(t, pos.TotalBought.Equal(decimal.NewFromInt(1000)))
	assert.True(t, pos.TotalCostUsd.Equal(decimal.NewFromInt(100)))
	assert.True(t, pos.RemainingTokens.Equal(decimal.NewFromInt(1000)))
	assert.True(t, pos.RealizedPnlUsd.IsZero())

	// 交易流水关联到持仓
	require.NotNil(t, result.Trade.PositionID)
	assert.Equal(t, pos.ID, *result.Trade.PositionID)
}

// 继续卖出500拿回$80：均价0.10，消耗成本50，盈利30
func TestApplyPartialSell(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	result := mustApply(t, tr, newTrade(model.DirectionSell, "500", "80"))

	pos := result.Position
	assert.Equal(t, model.PositionStatusPartial, pos.Status)
	assert.True(t, pos.RemainingTokens.Equal(decimal.NewFromInt(500)))
	assert.True(t, pos.RealizedPnlUsd.Equal(decimal.NewFromInt(30)), "got %s", pos.RealizedPnlUsd)
	assert.True(t, pos.TotalProceedsUsd.Equal(decimal.NewFromInt(80)), "got %s", pos.TotalProceedsUsd)
	assert.True(t, result.RealizedPnl.Equal(decimal.NewFromInt(30)))
	assert.Nil(t, pos.ClosedAt)
}

// 再卖出剩余500拿回$60：累计盈亏40，清仓
func TestApplyFullExit(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	mustApply(t, tr, newTrade(model.DirectionSell, "500", "80"))
	result := mustApply(t, tr, newTrade(model.DirectionSell, "500", "60"))

	pos := result.Position
	assert.True(t, result.Closed)
	assert.Equal(t, model.PositionStatusClosed, pos.Status)
	assert.True(t, pos.RemainingTokens.IsZero())
	assert.True(t, pos.RealizedPnlUsd.Equal(decimal.NewFromInt(40)), "got %s", pos.RealizedPnlUsd)
	assert.True(t, pos.TotalProceedsUsd.Equal(decimal.NewFromInt(140)), "got %s", pos.TotalProceedsUsd)
	assert.NotNil(t, pos.ClosedAt)
}

// 没有持仓直接卖 → OrphanSell，什么都不落库
func TestApplyOrphanSell(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	_, err := tr.Apply(context.Background(), newTrade(model.DirectionSell, "500", "80"))

	assert.ErrorIs(t, err, ErrOrphanSell)
	assert.Empty(t, store.trades)
	assert.Empty(t, store.positions)
}

// 超卖超出误差容忍 → Oversell，本次更新整体回滚
func TestApplyOversell(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	_, err := tr.Apply(context.Background(), newTrade(model.DirectionSell, "1500", "200"))

	assert.ErrorIs(t, err, ErrOversell)
	// 持仓保持原状
	pos, _ := store.Positions().GetByID(1)
	assert.True(t, pos.RemainingTokens.Equal(decimal.NewFromInt(1000)))
	assert.Len(t, store.trades, 1)
}

// 误差容忍内的超卖按清仓截断
func TestApplyOversellWithinEpsilonClamps(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	result := mustApply(t, tr, newTrade(model.DirectionSell, "1000.000001", "110"))

	assert.True(t, result.Clamped)
	assert.True(t, result.Closed)
	assert.True(t, result.Position.RemainingTokens.IsZero())
}

// 超出1e-8相对误差则拒绝
func TestApplyOversellBeyondEpsilonRejected(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	_, err := tr.Apply(context.Background(), newTrade(model.DirectionSell, "1000.1", "110"))

	assert.ErrorIs(t, err, ErrOversell)
}

// 清仓后再买 → 新开一张持仓，不复用旧的
func TestApplyBuyAfterCloseOpensFreshPosition(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	mustApply(t, tr, newTrade(model.DirectionSell, "1000", "150"))
	result := mustApply(t, tr, newTrade(model.DirectionBuy, "2000", "80"))

	assert.True(t, result.Opened)
	assert.Equal(t, model.PositionStatusOpen, result.Position.Status)
	assert.True(t, result.Position.TotalCostUsd.Equal(decimal.NewFromInt(80)))
	assert.Len(t, store.positions, 2)
}

// 卖过的持仓再买不会回到OPEN
func TestApplyBuyNeverReopensPartial(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	mustApply(t, tr, newTrade(model.DirectionSell, "200", "30"))
	result := mustApply(t, tr, newTrade(model.DirectionBuy, "500", "40"))

	assert.Equal(t, model.PositionStatusPartial, result.Position.Status)
}

// 数量未知的交易只记流水，持仓不动
func TestApplyJournalOnlyTrade(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))

	trade := &model.Trade{
		TokenID:        1,
		Direction:      model.DirectionSell,
		TradeTimestamp: time.Now(),
	}
	result := mustApply(t, tr, trade)

	assert.True(t, result.JournalOnly)
	pos, _ := store.Positions().GetByID(1)
	assert.True(t, pos.RemainingTokens.Equal(decimal.NewFromInt(1000)))
	assert.Len(t, store.trades, 2)
}

// 同一BUY重复应用会重复累计：无自然去重键，按既定行为记录
func TestApplyDuplicateBuyIsNotDeduplicated(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))
	result := mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))

	assert.True(t, result.Position.TotalBought.Equal(decimal.NewFromInt(2000)))
	assert.True(t, result.Position.TotalCostUsd.Equal(decimal.NewFromInt(200)))
}

// 任意BUY/SELL序列每一步都满足 remaining = bought - sold，且PnL只在SELL时变化
func TestApplySequenceInvariants(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	steps := []struct {
		direction string
		tokens    string
		value     string
	}{
		{model.DirectionBuy, "1000", "100"},
		{model.DirectionBuy, "500", "75"},
		{model.DirectionSell, "300", "60"},
		{model.DirectionBuy, "200", "10"},
		{model.DirectionSell, "900", "90"},
		{model.DirectionSell, "500", "200"},
	}

	lastPnl := decimal.Zero
	wantProceeds := decimal.Zero
	for i, step := range steps {
		result := mustApply(t, tr, newTrade(step.direction, step.tokens, step.value))
		pos := result.Position

		assert.True(t, pos.RemainingTokens.Equal(pos.TotalBought.Sub(pos.TotalSold)),
			"step %d: remaining=%s bought=%s sold=%s", i, pos.RemainingTokens, pos.TotalBought, pos.TotalSold)
		assert.False(t, pos.RemainingTokens.IsNegative(), "step %d", i)

		if step.direction == model.DirectionBuy {
			assert.True(t, pos.RealizedPnlUsd.Equal(lastPnl), "step %d: BUY不应改变PnL", i)
		} else {
			wantProceeds = wantProceeds.Add(decimal.RequireFromString(step.value))
		}
		assert.True(t, pos.TotalProceedsUsd.Equal(wantProceeds),
			"step %d: proceeds=%s want=%s", i, pos.TotalProceedsUsd, wantProceeds)
		lastPnl = pos.RealizedPnlUsd
	}
}

// 版本冲突触发重试，重试后成功
func TestApplyRetriesOnVersionConflict(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))

	store.conflictTimes = 2
	result := mustApply(t, tr, newTrade(model.DirectionSell, "500", "80"))
	assert.True(t, result.Position.RealizedPnlUsd.Equal(decimal.NewFromInt(30)))
}

// 重试耗尽返回版本冲突错误
func TestApplyVersionConflictExhausted(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store)

	mustApply(t, tr, newTrade(model.DirectionBuy, "1000", "100"))

	store.conflictTimes = 10
	_, err := tr.Apply(context.Background(), newTrade(model.DirectionSell, "500", "80"))
	assert.ErrorIs(t, err, ErrVersionConflict)
}
