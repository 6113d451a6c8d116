package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAddress(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantFamily Family
		wantChain  string
	}{
		{
			name:       "evm地址",
			address:    "0x6982508145454Ce325dDbE47a25d4ec3d2311933",
			wantFamily: FamilyEVM,
			wantChain:  "",
		},
		{
			name:       "evm地址全小写",
			address:    "0xdac17f958d2ee523a2206206994597c13d831ec7",
			wantFamily: FamilyEVM,
			wantChain:  "",
		},
		{
			name:       "solana地址",
			address:    "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			wantFamily: FamilySolana,
			wantChain:  "solana",
		},
		{
			name:       "solana原生代币地址",
			address:    "So11111111111111111111111111111111111111112",
			wantFamily: FamilySolana,
			wantChain:  "solana",
		},
		{
			name:       "evm地址长度不足",
			address:    "0x6982508145454Ce325dDbE47a25d4ec3d23119",
			wantFamily: FamilyUnknown,
		},
		{
			name:       "base58非法字符",
			address:    "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTD0lv",
			wantFamily: FamilyUnknown,
		},
		{
			name:       "过短字符串",
			address:    "abc123",
			wantFamily: FamilyUnknown,
		},
		{
			name:       "空串",
			address:    "",
			wantFamily: FamilyUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guess := DetectAddress(tt.address)
			assert.Equal(t, tt.wantFamily, guess.Family)
			assert.Equal(t, tt.wantChain, guess.Chain)
		})
	}
}

func TestDetectAddressNeverGuessesEvmChain(t *testing.T) {
	// EVM地址在多条链上同形，检测器不得猜测具体链
	guess := DetectAddress("0x6982508145454Ce325dDbE47a25d4ec3d2311933")
	assert.Equal(t, FamilyEVM, guess.Family)
	assert.Empty(t, guess.Chain)
	assert.Equal(t, ConfidenceLow, guess.Confidence)
}

func TestNormalizeChain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"eth", "ethereum"},
		{"ETH", "ethereum"},
		{"mainnet", "ethereum"},
		{"bnb", "bsc"},
		{"arb", "arbitrum"},
		{"matic", "polygon"},
		{"avax", "avalanche"},
		{"sol", "solana"},
		{"base", "base"},
		{"hyperliquid", "hyperliquid"},
		{"somechain", "somechain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeChain(tt.input), "input: %s", tt.input)
	}
}

func TestChainFromText(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"aped this on base", "base"},
		{"bought on solana today", "solana"},
		{"eth mainnet play", "ethereum"},
		{"bsc gem", "bsc"},
		{"no chain mentioned here", ""},
		{"base58 is not a chain name", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ChainFromText(tt.text), "text: %s", tt.text)
	}
}
