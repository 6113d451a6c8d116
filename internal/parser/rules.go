package parser

import (
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// RawFields 提取结果，字段缺失时保持零值
type RawFields struct {
	DexScreenerURL string
	URLChain       string
	URLAddress     string
	EvmAddress     string
	SolanaAddress  string
	WalletAddress  string
	Direction      string // BUY / SELL，未识别为空
	SpendAmount    decimal.NullDecimal
	SpendCurrency  string
	MarketCap      decimal.NullDecimal
	TokenSymbol    string
	NotesURL       string

	// 已被前序规则占用的文本区间，后续金额规则跳过
	claimedSpans [][2]int
}

func (f *RawFields) claimSpan(start, end int) {
	f.claimedSpans = append(f.claimedSpans, [2]int{start, end})
}

func (f *RawFields) spanClaimed(start, end int) bool {
	for _, span := range f.claimedSpans {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

// Rule 单条提取规则，按序执行，每条独立可测
type Rule interface {
	// Name 规则名称
	Name() string

	// Apply 在text上执行提取，结果写入fields
	Apply(text string, fields *RawFields)
}

// defaultRules 规则执行顺序即优先级
// URL > 钱包标注 > 裸地址 > 市值 > 金额 > 方向 > 备注链接
var defaultRules = []Rule{
	&dexScreenerURLRule{},
	&walletTagRule{},
	&evmAddressRule{},
	&solanaAddressRule{},
	&marketCapRule{},
	&cryptoAmountRule{},
	&usdAmountRule{},
	&directionRule{},
	&tokenSymbolRule{},
	&notesURLRule{},
}

// ---------------------------------------------------------------------------
// DexScreener链接规则：链接自带 chain+address，结构无歧义，优先于裸地址
// ---------------------------------------------------------------------------

var dexScreenerURLRe = regexp.MustCompile(`(?i)https?://(?:www\.)?dexscreener\.com/([a-z0-9-]+)/([A-Za-z0-9]+)`)

type dexScreenerURLRule struct{}

func (r *dexScreenerURLRule) Name() string { return "dexscreener_url" }

func (r *dexScreenerURLRule) Apply(text string, fields *RawFields) {
	loc := dexScreenerURLRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	fields.DexScreenerURL = text[loc[0]:loc[1]]
	fields.URLChain = NormalizeChain(text[loc[2]:loc[3]])
	fields.URLAddress = text[loc[4]:loc[5]]
	fields.claimSpan(loc[0], loc[1])
}

// ---------------------------------------------------------------------------
// 钱包标注规则："wallet: 0x..."，先占用区间避免被当成代币地址
// ---------------------------------------------------------------------------

var walletTagRe = regexp.MustCompile(`(?i)\bwallet\s*[:：]?\s*(0x[0-9a-fA-F]{40}|[1-9A-HJ-NP-Za-km-z]{32,44})\b`)

type walletTagRule struct{}

func (r *walletTagRule) Name() string { return "wallet_tag" }

func (r *walletTagRule) Apply(text string, fields *RawFields) {
	loc := walletTagRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	addr := text[loc[2]:loc[3]]
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		addr = strings.ToLower(addr)
	} else if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return
	}
	fields.WalletAddress = addr
	fields.claimSpan(loc[0], loc[1])
}

// ---------------------------------------------------------------------------
// EVM地址规则
// ---------------------------------------------------------------------------

var evmAddressScanRe = regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`)

type evmAddressRule struct{}

func (r *evmAddressRule) Name() string { return "evm_address" }

func (r *evmAddressRule) Apply(text string, fields *RawFields) {
	for _, loc := range evmAddressScanRe.FindAllStringIndex(text, -1) {
		if fields.spanClaimed(loc[0], loc[1]) {
			continue
		}
		fields.EvmAddress = strings.ToLower(text[loc[0]:loc[1]])
		fields.claimSpan(loc[0], loc[1])
		return
	}
}

// ---------------------------------------------------------------------------
// Solana地址规则：base58容易误报，已有EVM地址且文本无solana语境时跳过
// ---------------------------------------------------------------------------

var solanaAddressScanRe = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)

type solanaAddressRule struct{}

func (r *solanaAddressRule) Name() string { return "solana_address" }

func (r *solanaAddressRule) Apply(text string, fields *RawFields) {
	if fields.EvmAddress != "" && ChainFromText(text) != ChainSolana {
		return
	}

	for _, loc := range solanaAddressScanRe.FindAllStringIndex(text, -1) {
		if fields.spanClaimed(loc[0], loc[1]) {
			continue
		}
		candidate := text[loc[0]:loc[1]]
		if _, err := solana.PublicKeyFromBase58(candidate); err != nil {
			continue
		}
		fields.SolanaAddress = candidate
		fields.claimSpan(loc[0], loc[1])
		return
	}
}

// ---------------------------------------------------------------------------
// 市值规则：靠近 MCAP/mc/market cap 的数字，记录区间避免被金额规则重复提取
// ---------------------------------------------------------------------------

var (
	// 数字在关键词前："$1.2B MCAP" / "1.2b mc"
	mcapBeforeRe = regexp.MustCompile(`(?i)(\$?\d[\d,]*(?:\.\d+)?)\s*([KMB])?\s*(?:mcap|market\s*cap|mc\b)`)
	// 关键词在数字前："MCAP $1.2B" / "market cap: 1.2B"
	mcapAfterRe = regexp.MustCompile(`(?i)(?:mcap|market\s*cap|mc)\s*:?\s*(\$?\d[\d,]*(?:\.\d+)?)\s*([KMB])?`)
)

type marketCapRule struct{}

func (r *marketCapRule) Name() string { return "market_cap" }

func (r *marketCapRule) Apply(text string, fields *RawFields) {
	for _, re := range []*regexp.Regexp{mcapBeforeRe, mcapAfterRe} {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = text[loc[4]:loc[5]]
		}
		value, ok := parseAmount(text[loc[2]:loc[3]], suffix)
		if !ok {
			continue
		}
		fields.MarketCap = decimal.NewNullDecimal(value)
		fields.claimSpan(loc[0], loc[1])
		return
	}
}

// ---------------------------------------------------------------------------
// 币种金额规则："1.5K USDC" / "0.5 ETH"
// ---------------------------------------------------------------------------

var cryptoAmountRe = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*([KMB])?\s*(USDC|USDT|DAI|USD|ETH|SOL|BNB|AVAX|MATIC|FTM)\b`)

type cryptoAmountRule struct{}

func (r *cryptoAmountRule) Name() string { return "crypto_amount" }

func (r *cryptoAmountRule) Apply(text string, fields *RawFields) {
	if fields.SpendAmount.Valid {
		return
	}
	for _, loc := range cryptoAmountRe.FindAllStringSubmatchIndex(text, -1) {
		if fields.spanClaimed(loc[0], loc[1]) {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = text[loc[4]:loc[5]]
		}
		value, ok := parseAmount(text[loc[2]:loc[3]], suffix)
		if !ok {
			continue
		}
		fields.SpendAmount = decimal.NewNullDecimal(value)
		fields.SpendCurrency = strings.ToUpper(text[loc[6]:loc[7]])
		fields.claimSpan(loc[0], loc[1])
		return
	}
}

// ---------------------------------------------------------------------------
// 美元金额规则："$500" / "$1.2K"
// ---------------------------------------------------------------------------

var usdAmountRe = regexp.MustCompile(`(?i)\$(\d[\d,]*(?:\.\d+)?)\s*([KMB])?`)

type usdAmountRule struct{}

func (r *usdAmountRule) Name() string { return "usd_amount" }

func (r *usdAmountRule) Apply(text string, fields *RawFields) {
	if fields.SpendAmount.Valid {
		return
	}
	for _, loc := range usdAmountRe.FindAllStringSubmatchIndex(text, -1) {
		if fields.spanClaimed(loc[0], loc[1]) {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = text[loc[4]:loc[5]]
		}
		value, ok := parseAmount(text[loc[2]:loc[3]], suffix)
		if !ok {
			continue
		}
		fields.SpendAmount = decimal.NewNullDecimal(value)
		fields.SpendCurrency = "USD"
		fields.claimSpan(loc[0], loc[1])
		return
	}
}

// ---------------------------------------------------------------------------
// 方向规则：买卖关键词都出现时取最先出现的
// ---------------------------------------------------------------------------

var (
	buyKeywordRe  = regexp.MustCompile(`(?i)\b(bought|buying|buy|entered|entry|aped|ape|sniped|snipe|grabbed|longed|long|added|in)\b`)
	sellKeywordRe = regexp.MustCompile(`(?i)\b(sold|selling|sell|exited|exit|out|dumped|dump|took\s+profit|tp|closed|shorted|short|got\s+back)\b`)
)

type directionRule struct{}

func (r *directionRule) Name() string { return "direction" }

func (r *directionRule) Apply(text string, fields *RawFields) {
	buyLoc := buyKeywordRe.FindStringIndex(text)
	sellLoc := sellKeywordRe.FindStringIndex(text)

	switch {
	case buyLoc != nil && sellLoc != nil:
		if buyLoc[0] <= sellLoc[0] {
			fields.Direction = "BUY"
		} else {
			fields.Direction = "SELL"
		}
	case buyLoc != nil:
		fields.Direction = "BUY"
	case sellLoc != nil:
		fields.Direction = "SELL"
	}
}

// ---------------------------------------------------------------------------
// 代币符号规则："$PEPE" 风格的ticker
// ---------------------------------------------------------------------------

var tokenSymbolRe = regexp.MustCompile(`\$([A-Za-z][A-Za-z0-9]{1,9})\b`)

type tokenSymbolRule struct{}

func (r *tokenSymbolRule) Name() string { return "token_symbol" }

func (r *tokenSymbolRule) Apply(text string, fields *RawFields) {
	for _, loc := range tokenSymbolRe.FindAllStringSubmatchIndex(text, -1) {
		if fields.spanClaimed(loc[0], loc[1]) {
			continue
		}
		symbol := text[loc[2]:loc[3]]
		// 排除 "$1K" 这类带后缀的金额残留
		if len(symbol) == 1 {
			continue
		}
		fields.TokenSymbol = strings.ToUpper(symbol)
		return
	}
}

// ---------------------------------------------------------------------------
// 备注链接规则：第一个非DexScreener的URL
// ---------------------------------------------------------------------------

var urlScanRe = regexp.MustCompile(`https?://[^\s]+`)

type notesURLRule struct{}

func (r *notesURLRule) Name() string { return "notes_url" }

func (r *notesURLRule) Apply(text string, fields *RawFields) {
	for _, candidate := range urlScanRe.FindAllString(text, -1) {
		if dexScreenerURLRe.MatchString(candidate) {
			continue
		}
		fields.NotesURL = strings.TrimRight(candidate, ".,;)")
		return
	}
}

// parseAmount 解析数字与K/M/B倍数后缀
func parseAmount(numStr string, suffix string) (decimal.Decimal, bool) {
	numStr = strings.TrimPrefix(numStr, "$")
	numStr = strings.ReplaceAll(numStr, ",", "")

	value, err := decimal.NewFromString(numStr)
	if err != nil {
		return decimal.Zero, false
	}

	switch strings.ToUpper(suffix) {
	case "K":
		value = value.Mul(decimal.NewFromInt(1_000))
	case "M":
		value = value.Mul(decimal.NewFromInt(1_000_000))
	case "B":
		value = value.Mul(decimal.NewFromInt(1_000_000_000))
	}

	return value, true
}
