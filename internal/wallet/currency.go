package wallet

import "regexp"

// Currency identifies a supported crypto network.
type Currency string

const (
	BTC Currency = "BTC"
	LTC Currency = "LTC"
	ETH Currency = "ETH"
	BNB Currency = "BNB"
	SOL Currency = "SOL"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{BTC, LTC, ETH, BNB, SOL}

// Valid reports whether the currency is supported.
func (c Currency) Valid() bool {
	switch c {
	case BTC, LTC, ETH, BNB, SOL:
		return true
	}
	return false
}

// Divider is the decimal exponent between the base unit and one coin
// (satoshi, litoshi, wei, jager, lamport).
func (c Currency) Divider() int {
	switch c {
	case BTC, LTC:
		return 8
	case ETH, BNB:
		return 18
	case SOL:
		return 9
	}
	return 0
}

// CoingeckoName is the id used by the price API.
func (c Currency) CoingeckoName() string {
	switch c {
	case BTC:
		return "bitcoin"
	case LTC:
		return "litecoin"
	case ETH:
		return "ethereum"
	case BNB:
		return "binancecoin"
	case SOL:
		return "solana"
	}
	return ""
}

// ExplorerTxURL returns the block-explorer link for a transaction id.
func (c Currency) ExplorerTxURL(txID string) string {
	switch c {
	case BTC:
		return "https://mempool.space/tx/" + txID
	case LTC:
		return "https://litecoinspace.org/tx/" + txID
	case ETH:
		return "https://etherscan.io/tx/" + txID
	case BNB:
		return "https://bscscan.com/tx/" + txID
	case SOL:
		return "https://solscan.io/tx/" + txID
	}
	return txID
}

// Per-currency withdrawal address formats. Deliberately a small static
// table; generalize only when a new currency actually lands.
var addressPatterns = map[Currency]*regexp.Regexp{
	BTC: regexp.MustCompile(`^bc1[a-zA-HJ-NP-Z0-9]{25,39}$`),
	LTC: regexp.MustCompile(`^ltc1[a-zA-HJ-NP-Z0-9]{26,}$`),
	ETH: regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`),
	BNB: regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`),
	SOL: regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`),
}

// ValidAddress reports whether addr matches the currency's address format.
func (c Currency) ValidAddress(addr string) bool {
	re, ok := addressPatterns[c]
	if !ok {
		return false
	}
	return re.MatchString(addr)
}
