package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const TableNameTrade = "trades"

// 交易方向
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// Trade 交易流水表，只追加不修改
type Trade struct {
	ID               int64               `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	TokenID          int64               `gorm:"column:token_id;not null;index:idx_token_id;comment:代币ID" json:"token_id"`                      // 代币ID
	WalletID         *int64              `gorm:"column:wallet_id;index:idx_wallet_id;comment:钱包ID" json:"wallet_id"`                            // 钱包ID
	PositionID       *int64              `gorm:"column:position_id;index:idx_position_id;comment:关联持仓ID" json:"position_id"`                    // 关联持仓ID
	Direction        string              `gorm:"column:direction;not null;comment:交易方向 BUY/SELL" json:"direction"`                              // 交易方向 BUY/SELL
	AmountSpent      decimal.NullDecimal `gorm:"column:amount_spent;type:decimal(32,18);comment:花费金额" json:"amount_spent"`                      // 花费金额
	SpendCurrency    string              `gorm:"column:spend_currency;comment:花费币种" json:"spend_currency"`                                      // 花费币种
	AmountTokens     decimal.NullDecimal `gorm:"column:amount_tokens;type:decimal(38,18);comment:代币数量" json:"amount_tokens"`                    // 代币数量
	PriceUsd         decimal.NullDecimal `gorm:"column:price_usd;type:decimal(32,18);comment:成交价格USD" json:"price_usd"`                         // 成交价格USD
	TotalValueUsd    decimal.NullDecimal `gorm:"column:total_value_usd;type:decimal(32,18);comment:成交总额USD" json:"total_value_usd"`             // 成交总额USD
	MarketCapAtTrade decimal.NullDecimal `gorm:"column:market_cap_at_trade;type:decimal(38,18);comment:成交时市值" json:"market_cap_at_trade"`       // 成交时市值
	SourceMessage    string              `gorm:"column:source_message;type:text;comment:原始消息" json:"source_message"`                            // 原始消息
	NotesURL         string              `gorm:"column:notes_url;comment:备注链接" json:"notes_url"`                                                // 备注链接
	DexScreenerURL   string              `gorm:"column:dex_screener_url;comment:DexScreener链接" json:"dex_screener_url"`                         // DexScreener链接
	TradeTimestamp   time.Time           `gorm:"column:trade_timestamp;not null;index:idx_trade_timestamp;comment:成交时间" json:"trade_timestamp"` // 成交时间
	CreatedAt        *time.Time          `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

// TableName Trade's table name
func (*Trade) TableName() string {
	return TableNameTrade
}

func (t *Trade) IsBuy() bool {
	return t.Direction == DirectionBuy
}
