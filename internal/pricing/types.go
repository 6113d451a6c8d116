package pricing

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrTokenNotFound DexScreener上没有该代币的交易对
var ErrTokenNotFound = errors.New("token not found on dex screener")

// PriceInfo 价格查询结果
type PriceInfo struct {
	Chain        string          `json:"chain"`
	TokenAddress string          `json:"token_address"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	PriceUsd     decimal.Decimal `json:"price_usd"`
	MarketCap    decimal.Decimal `json:"market_cap"`
	LiquidityUsd decimal.Decimal `json:"liquidity_usd"`
	Volume24h    decimal.Decimal `json:"volume_24h"`
	URL          string          `json:"url"`
}

// Source 价格查询能力，便于测试替换
type Source interface {
	// Lookup 查询代币当前价格，chain为空时按链优先级挑选交易对
	Lookup(ctx context.Context, address string, chain string) (*PriceInfo, error)
}
