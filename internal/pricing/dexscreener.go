package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

const defaultBaseURL = "https://api.dexscreener.com"

// Config DexScreener客户端配置
type Config struct {
	BaseURL  string `json:"base_url" yaml:"base_url" toml:"base_url"`
	Timeout  int    `json:"timeout" yaml:"timeout" toml:"timeout"`       // 单位秒
	MaxTries int    `json:"max_tries" yaml:"max_tries" toml:"max_tries"` // 请求重试上限
}

// 裸EVM地址多链都有交易对时的挑选优先级
var chainPriority = map[string]int{
	"solana":   4,
	"base":     3,
	"bsc":      2,
	"ethereum": 1,
}

// Client DexScreener价格查询客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   uint
	cache      *Cache
}

func NewClient(cfg Config, cache *Cache) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := 10 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	maxTries := uint(3)
	if cfg.MaxTries > 0 {
		maxTries = uint(cfg.MaxTries)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxTries:   maxTries,
		cache:      cache,
	}
}

// pairInfo DexScreener交易对返回结构
type pairInfo struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	URL       string `json:"url"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity struct {
		Usd decimal.Decimal `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 decimal.Decimal `json:"h24"`
	} `json:"volume"`
	Fdv       decimal.Decimal `json:"fdv"`
	MarketCap decimal.Decimal `json:"marketCap"`
}

type pairsResponse struct {
	Pairs []*pairInfo `json:"pairs"`
	Pair  *pairInfo   `json:"pair"`
}

// Lookup 查询代币价格，优先走缓存
func (c *Client) Lookup(ctx context.Context, address string, chain string) (*PriceInfo, error) {
	if info, ok := c.cache.Get(ctx, address, chain); ok {
		return info, nil
	}

	info, err := c.lookupToken(ctx, address, chain)
	if err == ErrTokenNotFound && chain != "" {
		// 代币接口查不到时，按pair地址再试一次
		info, err = c.lookupPair(ctx, chain, address)
	}
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, address, chain, info)
	return info, nil
}

func (c *Client) lookupToken(ctx context.Context, address string, chain string) (*PriceInfo, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, address)
	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	pair := pickPair(resp.Pairs, chain)
	if pair == nil {
		return nil, ErrTokenNotFound
	}

	return pairToPriceInfo(pair), nil
}

func (c *Client) lookupPair(ctx context.Context, chain string, pairAddress string) (*PriceInfo, error) {
	url := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", c.baseURL, chain, pairAddress)
	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	pairs := resp.Pairs
	if len(pairs) == 0 && resp.Pair != nil {
		pairs = []*pairInfo{resp.Pair}
	}
	pair := pickPair(pairs, chain)
	if pair == nil {
		return nil, ErrTokenNotFound
	}

	return pairToPriceInfo(pair), nil
}

// fetch 带重试的GET请求，429和5xx重试，404直接返回NotFound
func (c *Client) fetch(ctx context.Context, url string) (*pairsResponse, error) {
	operation := func() (*pairsResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(ErrTokenNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("dex screener rate limited")
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("dex screener server error: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(fmt.Errorf("dex screener unexpected status: %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var parsed pairsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode dex screener response: %w", err))
		}

		return &parsed, nil
	}

	notify := func(err error, duration time.Duration) {
		logger.Warn("价格查询重试",
			logger.String("url", url),
			logger.FieldErr(err),
			logger.Duration("backoff", duration))
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
}

// pickPair 选择交易对：指定链优先，其次按链优先级，再按流动性
func pickPair(pairs []*pairInfo, chain string) *pairInfo {
	var best *pairInfo
	for _, pair := range pairs {
		if pair == nil {
			continue
		}
		if chain != "" && pair.ChainID != chain {
			continue
		}
		if best == nil || pairBetter(pair, best) {
			best = pair
		}
	}
	if best == nil && chain != "" {
		// 指定链上没有，退回全部交易对
		return pickPair(pairs, "")
	}
	return best
}

func pairBetter(a, b *pairInfo) bool {
	pa, pb := chainPriority[a.ChainID], chainPriority[b.ChainID]
	if pa != pb {
		return pa > pb
	}
	return a.Liquidity.Usd.GreaterThan(b.Liquidity.Usd)
}

func pairToPriceInfo(pair *pairInfo) *PriceInfo {
	price, err := decimal.NewFromString(pair.PriceUsd)
	if err != nil {
		price = decimal.Zero
	}

	marketCap := pair.MarketCap
	if marketCap.IsZero() {
		// 部分交易对没有marketCap字段，用fdv兜底
		marketCap = pair.Fdv
	}

	return &PriceInfo{
		Chain:        pair.ChainID,
		TokenAddress: pair.BaseToken.Address,
		Symbol:       pair.BaseToken.Symbol,
		Name:         pair.BaseToken.Name,
		PriceUsd:     price,
		MarketCap:    marketCap,
		LiquidityUsd: pair.Liquidity.Usd,
		Volume24h:    pair.Volume.H24,
		URL:          pair.URL,
	}
}
