package repo

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ninja0404/trade-journal/internal/model"
)

// TradeStats 交易汇总数据
type TradeStats struct {
	TotalTrades      int64
	BuyTrades        int64
	SellTrades       int64
	TotalInvestedUsd decimal.Decimal
	TotalProceedsUsd decimal.Decimal
}

type TradeRepo interface {
	// Create 写入一条交易流水
	Create(trade *model.Trade) error

	// GetRecent 获取最近的交易，按成交时间倒序
	GetRecent(limit int) ([]*model.Trade, error)

	// GetByPositionID 获取某个持仓关联的全部交易
	GetByPositionID(positionID int64) ([]*model.Trade, error)

	// GetStats 获取交易汇总数据
	GetStats() (*TradeStats, error)
}

type tradeRepoImpl struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) TradeRepo {
	return &tradeRepoImpl{
		db: db,
	}
}

// Create 写入一条交易流水
func (r *tradeRepoImpl) Create(trade *model.Trade) error {
	return r.db.Create(trade).Error
}

// GetRecent 获取最近的交易，按成交时间倒序
func (r *tradeRepoImpl) GetRecent(limit int) ([]*model.Trade, error) {
	var trades []*model.Trade

	err := r.db.
		Order("trade_timestamp DESC, id DESC").
		Limit(limit).
		Find(&trades).Error

	return trades, err
}

// GetByPositionID 获取某个持仓关联的全部交易
func (r *tradeRepoImpl) GetByPositionID(positionID int64) ([]*model.Trade, error) {
	var trades []*model.Trade

	err := r.db.
		Where("position_id = ?", positionID).
		Order("trade_timestamp ASC, id ASC").
		Find(&trades).Error

	return trades, err
}

// GetStats 获取交易汇总数据
func (r *tradeRepoImpl) GetStats() (*TradeStats, error) {
	stats := &TradeStats{}

	err := r.db.Model(&model.Trade{}).Count(&stats.TotalTrades).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&model.Trade{}).
		Where("direction = ?", model.DirectionBuy).
		Count(&stats.BuyTrades).Error
	if err != nil {
		return nil, err
	}
	stats.SellTrades = stats.TotalTrades - stats.BuyTrades

	var invested, proceeds decimal.NullDecimal
	err = r.db.Model(&model.Trade{}).
		Select("SUM(total_value_usd)").
		Where("direction = ?", model.DirectionBuy).
		Scan(&invested).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&model.Trade{}).
		Select("SUM(total_value_usd)").
		Where("direction = ?", model.DirectionSell).
		Scan(&proceeds).Error
	if err != nil {
		return nil, err
	}
	if invested.Valid {
		stats.TotalInvestedUsd = invested.Decimal
	}
	if proceeds.Valid {
		stats.TotalProceedsUsd = proceeds.Decimal
	}

	return stats, nil
}
