package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const TableNamePosition = "positions"

// 持仓状态
const (
	PositionStatusOpen    = "OPEN"
	PositionStatusPartial = "PARTIAL"
	PositionStatusClosed  = "CLOSED"
)

// Position 持仓表，按加权平均成本滚动更新
type Position struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	TokenID          int64           `gorm:"column:token_id;not null;index:idx_position_token_id;comment:代币ID" json:"token_id"`                            // 代币ID
	WalletID         *int64          `gorm:"column:wallet_id;index:idx_position_wallet_id;comment:钱包ID" json:"wallet_id"`                                  // 钱包ID
	Status           string          `gorm:"column:status;not null;default:OPEN;comment:持仓状态 OPEN/PARTIAL/CLOSED" json:"status"`                           // 持仓状态 OPEN/PARTIAL/CLOSED
	TotalBought      decimal.Decimal `gorm:"column:total_bought;type:decimal(38,18);not null;default:0;comment:累计买入数量" json:"total_bought"`                // 累计买入数量
	TotalSold        decimal.Decimal `gorm:"column:total_sold;type:decimal(38,18);not null;default:0;comment:累计卖出数量" json:"total_sold"`                    // 累计卖出数量
	RemainingTokens  decimal.Decimal `gorm:"column:remaining_tokens;type:decimal(38,18);not null;default:0;comment:剩余数量" json:"remaining_tokens"`          // 剩余数量
	TotalCostUsd     decimal.Decimal `gorm:"column:total_cost_usd;type:decimal(38,18);not null;default:0;comment:累计买入成本USD" json:"total_cost_usd"`         // 累计买入成本USD
	TotalProceedsUsd decimal.Decimal `gorm:"column:total_proceeds_usd;type:decimal(38,18);not null;default:0;comment:累计卖出所得USD" json:"total_proceeds_usd"` // 累计卖出所得USD
	RealizedPnlUsd   decimal.Decimal `gorm:"column:realized_pnl_usd;type:decimal(38,18);not null;default:0;comment:已实现盈亏USD" json:"realized_pnl_usd"`      // 已实现盈亏USD
	Version          int64           `gorm:"column:version;not null;default:0;comment:乐观锁版本号" json:"version"`                                              // 乐观锁版本号
	OpenedAt         time.Time       `gorm:"column:opened_at;not null;comment:开仓时间" json:"opened_at"`                                                      // 开仓时间
	ClosedAt         *time.Time      `gorm:"column:closed_at;comment:平仓时间" json:"closed_at"`                                                               // 平仓时间
	CreatedAt        *time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt        *time.Time      `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName Position's table name
func (*Position) TableName() string {
	return TableNamePosition
}

// AvgCostUsd 加权平均成本，按累计买入计算
func (p *Position) AvgCostUsd() decimal.Decimal {
	if p.TotalBought.IsZero() {
		return decimal.Zero
	}
	return p.TotalCostUsd.Div(p.TotalBought)
}

func (p *Position) IsClosed() bool {
	return p.Status == PositionStatusClosed
}
