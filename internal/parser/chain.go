package parser

import (
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Family 地址格式家族
type Family int

const (
	FamilyUnknown Family = iota
	FamilyEVM            // 0x + 40位hex，无法区分具体EVM链
	FamilySolana         // base58，32-44位
)

func (f Family) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilySolana:
		return "solana"
	default:
		return "unknown"
	}
}

// Confidence 链判定置信度
type Confidence int

const (
	ConfidenceLow    Confidence = iota // 仅凭地址格式
	ConfidenceMedium                   // 文本中明确提到链名
	ConfidenceHigh                     // DexScreener链接自带链信息
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// ChainGuess 地址格式判定结果
type ChainGuess struct {
	Family     Family
	Chain      string // EVM家族不猜具体链，留空
	Confidence Confidence
}

const ChainSolana = "solana"

var (
	evmAddressRe    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	base58AddressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// DetectAddress 按地址结构格式分类，纯函数
// EVM地址在多条链上同形，只返回家族不猜具体链
func DetectAddress(addressLike string) ChainGuess {
	addressLike = strings.TrimSpace(addressLike)

	if evmAddressRe.MatchString(addressLike) {
		return ChainGuess{
			Family:     FamilyEVM,
			Confidence: ConfidenceLow,
		}
	}

	if base58AddressRe.MatchString(addressLike) {
		// base58字符集校验之外再做一次真实解码
		if _, err := solana.PublicKeyFromBase58(addressLike); err == nil {
			return ChainGuess{
				Family:     FamilySolana,
				Chain:      ChainSolana,
				Confidence: ConfidenceLow,
			}
		}
	}

	return ChainGuess{Family: FamilyUnknown}
}

// 链名别名表
var chainAliases = map[string]string{
	"eth":         "ethereum",
	"ethereum":    "ethereum",
	"mainnet":     "ethereum",
	"sol":         "solana",
	"solana":      "solana",
	"base":        "base",
	"bsc":         "bsc",
	"bnb":         "bsc",
	"binance":     "bsc",
	"arb":         "arbitrum",
	"arbitrum":    "arbitrum",
	"matic":       "polygon",
	"polygon":     "polygon",
	"op":          "optimism",
	"optimism":    "optimism",
	"avax":        "avalanche",
	"avalanche":   "avalanche",
	"ftm":         "fantom",
	"fantom":      "fantom",
	"hl":          "hyperliquid",
	"hyperliquid": "hyperliquid",
}

// NormalizeChain 归一化链名
func NormalizeChain(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if normalized, ok := chainAliases[name]; ok {
		return normalized
	}
	return name
}

// 按长度降序匹配，避免 sol 抢先匹配 solana
var chainMentionRe = regexp.MustCompile(`(?i)\b(hyperliquid|avalanche|ethereum|arbitrum|optimism|polygon|binance|mainnet|solana|fantom|matic|avax|base|bsc|bnb|arb|eth|ftm|sol|op|hl)\b`)

// ChainFromText 从文本中提取明确的链名，找不到返回空串
func ChainFromText(text string) string {
	match := chainMentionRe.FindString(text)
	if match == "" {
		return ""
	}
	return NormalizeChain(match)
}
