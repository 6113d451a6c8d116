package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TradeIntent 解析后、入库前的标准化交易意图
type TradeIntent struct {
	Chain      string // 具体链名，裸EVM地址时为空待enrichment补齐
	Family     Family
	Address    string // EVM地址小写，Solana地址保持原样
	Confidence Confidence

	WalletAddress string // "wallet:"标注的出入金钱包，未标注为空

	Direction     string // BUY / SELL
	SpendAmount   decimal.NullDecimal
	SpendCurrency string
	MarketCap     decimal.NullDecimal
	TokenSymbol   string

	NotesURL       string
	DexScreenerURL string
	RawMessage     string
}

// Parse 将原始消息解析为TradeIntent，确定性、无副作用
// 地址解析优先级：DexScreener链接 > 文本链名+裸地址 > 地址格式
func Parse(rawText string) (*TradeIntent, error) {
	fields, err := Extract(rawText)
	if err != nil {
		return nil, err
	}

	intent := &TradeIntent{
		WalletAddress:  fields.WalletAddress,
		SpendAmount:    fields.SpendAmount,
		SpendCurrency:  fields.SpendCurrency,
		MarketCap:      fields.MarketCap,
		TokenSymbol:    fields.TokenSymbol,
		NotesURL:       fields.NotesURL,
		DexScreenerURL: fields.DexScreenerURL,
		RawMessage:     rawText,
	}

	switch {
	case fields.URLAddress != "":
		// 链接自带链信息，覆盖文本中的裸地址
		guess := DetectAddress(fields.URLAddress)
		intent.Family = guess.Family
		intent.Chain = fields.URLChain
		intent.Address = normalizeAddress(fields.URLAddress, guess.Family)
		intent.Confidence = ConfidenceHigh

	case fields.EvmAddress != "":
		intent.Family = FamilyEVM
		intent.Address = fields.EvmAddress
		intent.Confidence = ConfidenceLow
		// EVM地址本身分不出链，文本中明确提到链名时采纳
		if chain := ChainFromText(rawText); chain != "" && chain != ChainSolana {
			intent.Chain = chain
			intent.Confidence = ConfidenceMedium
		}

	case fields.SolanaAddress != "":
		intent.Family = FamilySolana
		intent.Chain = ChainSolana
		intent.Address = fields.SolanaAddress
		intent.Confidence = ConfidenceLow
		if ChainFromText(rawText) == ChainSolana {
			intent.Confidence = ConfidenceMedium
		}

	default:
		return nil, ErrNoAddressFound
	}

	if fields.Direction == "" {
		return nil, ErrAmbiguousDirection
	}
	intent.Direction = fields.Direction

	return intent, nil
}

func normalizeAddress(address string, family Family) string {
	if family == FamilyEVM {
		return strings.ToLower(address)
	}
	return address
}
