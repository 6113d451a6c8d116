package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuyWithUsdSpendAndMcap(t *testing.T) {
	// 多行输入：金额+市值在一行，地址在另一行
	raw := "Bought $500 worth of PEPE at $1.2B MCAP\n0x6982508145454Ce325dDbE47a25d4ec3d2311933"

	intent, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, FamilyEVM, intent.Family)
	assert.Empty(t, intent.Chain) // 裸EVM地址不猜链
	assert.Equal(t, "0x6982508145454ce325ddbe47a25d4ec3d2311933", intent.Address)
	assert.Equal(t, "BUY", intent.Direction)
	require.True(t, intent.SpendAmount.Valid)
	assert.True(t, intent.SpendAmount.Decimal.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "USD", intent.SpendCurrency)
	require.True(t, intent.MarketCap.Valid)
	assert.True(t, intent.MarketCap.Decimal.Equal(decimal.NewFromInt(1_200_000_000)))
	assert.Equal(t, raw, intent.RawMessage)
}

func TestParseWalletTag(t *testing.T) {
	raw := "wallet: 0xAB5801a7D398351b8bE11C439e05C5B3259aeC9B " +
		"aped $500 into 0x6982508145454Ce325dDbE47a25d4ec3d2311933"

	intent, err := Parse(raw)
	require.NoError(t, err)

	// 钱包标注与代币地址互不串扰
	assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", intent.WalletAddress)
	assert.Equal(t, "0x6982508145454ce325ddbe47a25d4ec3d2311933", intent.Address)
	assert.Equal(t, "BUY", intent.Direction)
}

func TestParseURLOverridesBareAddress(t *testing.T) {
	raw := "sold 0x1111111111111111111111111111111111111111 " +
		"https://dexscreener.com/base/0x6982508145454Ce325dDbE47a25d4ec3d2311933"

	intent, err := Parse(raw)
	require.NoError(t, err)

	// 链接信息覆盖裸地址
	assert.Equal(t, "base", intent.Chain)
	assert.Equal(t, "0x6982508145454ce325ddbe47a25d4ec3d2311933", intent.Address)
	assert.Equal(t, ConfidenceHigh, intent.Confidence)
	assert.Equal(t, "SELL", intent.Direction)
}

func TestParseChainFromText(t *testing.T) {
	raw := "aped 0x6982508145454Ce325dDbE47a25d4ec3d2311933 on arbitrum"

	intent, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "arbitrum", intent.Chain)
	assert.Equal(t, ConfidenceMedium, intent.Confidence)
}

func TestParseSolanaAddress(t *testing.T) {
	raw := "bought 12 SOL of EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	intent, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, FamilySolana, intent.Family)
	assert.Equal(t, "solana", intent.Chain)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", intent.Address)
	require.True(t, intent.SpendAmount.Valid)
	assert.Equal(t, "SOL", intent.SpendCurrency)
}

func TestParseEmptyMessage(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = Parse("   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestParseNoAddress(t *testing.T) {
	_, err := Parse("bought $500 of something")
	assert.ErrorIs(t, err, ErrNoAddressFound)
}

func TestParseAmbiguousDirection(t *testing.T) {
	// 有地址但没有任何方向关键词，方向不做默认值
	_, err := Parse("0x6982508145454Ce325dDbE47a25d4ec3d2311933 looks interesting")
	assert.ErrorIs(t, err, ErrAmbiguousDirection)
}

func TestParseNotesURL(t *testing.T) {
	raw := "sold EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v https://example.com/notes/7"

	intent, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/notes/7", intent.NotesURL)
}
