package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokensResponse = `{
	"schemaVersion": "1.0.0",
	"pairs": [
		{
			"chainId": "ethereum",
			"dexId": "uniswap",
			"url": "https://dexscreener.com/ethereum/0xpair1",
			"baseToken": {"address": "0xToken", "name": "Pepe", "symbol": "PEPE"},
			"priceUsd": "0.0000012",
			"liquidity": {"usd": 5000000},
			"volume": {"h24": 120000},
			"fdv": 500000000,
			"marketCap": 480000000
		},
		{
			"chainId": "base",
			"dexId": "uniswap",
			"url": "https://dexscreener.com/base/0xpair2",
			"baseToken": {"address": "0xToken", "name": "Pepe", "symbol": "PEPE"},
			"priceUsd": "0.0000011",
			"liquidity": {"usd": 800000},
			"volume": {"h24": 9000},
			"fdv": 100000000
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: 5, MaxTries: 3}, nil)
}

func TestLookupPicksRequestedChain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/0xToken", r.URL.Path)
		w.Write([]byte(tokensResponse))
	})

	info, err := client.Lookup(context.Background(), "0xToken", "ethereum")
	require.NoError(t, err)

	assert.Equal(t, "ethereum", info.Chain)
	assert.Equal(t, "PEPE", info.Symbol)
	assert.True(t, info.PriceUsd.Equal(decimal.RequireFromString("0.0000012")))
	assert.True(t, info.MarketCap.Equal(decimal.NewFromInt(480000000)))
}

func TestLookupChainPriorityWhenUnspecified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tokensResponse))
	})

	// 未指定链时base优先于ethereum
	info, err := client.Lookup(context.Background(), "0xToken", "")
	require.NoError(t, err)
	assert.Equal(t, "base", info.Chain)
	// marketCap缺失时回退fdv
	assert.True(t, info.MarketCap.Equal(decimal.NewFromInt(100000000)))
}

func TestLookupFallsBackToOtherChains(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tokensResponse))
	})

	// 请求的链没有交易对，退回其他链而不是报错
	info, err := client.Lookup(context.Background(), "0xToken", "arbitrum")
	require.NoError(t, err)
	assert.Equal(t, "base", info.Chain)
}

func TestLookupTokenNotFound(t *testing.T) {
	var pairCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/latest/dex/pairs/base/0xNothing" {
			pairCalls.Add(1)
		}
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": []}`))
	})

	_, err := client.Lookup(context.Background(), "0xNothing", "base")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	// token接口查不到后按pair地址兜底再查一次
	assert.Equal(t, int32(1), pairCalls.Load())
}

func TestLookupPairFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/latest/dex/tokens/0xPairAddr" {
			w.Write([]byte(`{"pairs": []}`))
			return
		}
		assert.Equal(t, "/latest/dex/pairs/solana/0xPairAddr", r.URL.Path)
		w.Write([]byte(`{
			"pair": {
				"chainId": "solana",
				"url": "https://dexscreener.com/solana/0xPairAddr",
				"baseToken": {"address": "TokenMint", "name": "Wif", "symbol": "WIF"},
				"priceUsd": "2.4",
				"liquidity": {"usd": 1000000},
				"volume": {"h24": 50000},
				"fdv": 2400000000
			}
		}`))
	})

	info, err := client.Lookup(context.Background(), "0xPairAddr", "solana")
	require.NoError(t, err)
	assert.Equal(t, "WIF", info.Symbol)
	assert.True(t, info.PriceUsd.Equal(decimal.RequireFromString("2.4")))
}

func TestLookupRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(tokensResponse))
	})

	info, err := client.Lookup(context.Background(), "0xToken", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "PEPE", info.Symbol)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLookupNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Lookup(context.Background(), "0xToken", "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Equal(t, int32(1), calls.Load())
}
