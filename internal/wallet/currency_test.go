package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAddress(t *testing.T) {
	tests := []struct {
		currency Currency
		addr     string
		valid    bool
	}{
		{BTC, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", true},
		{BTC, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{BTC, "bc1", false},
		{LTC, "ltc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", true},
		{LTC, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", false},
		{ETH, "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{ETH, "0x5290840009852788", false},
		{BNB, "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{SOL, "4Nd1mYvH4nGeJmembr6G5oKxwfz2Kv2qpDKBktnq9pvC", true},
		{SOL, "0OIl", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.currency.ValidAddress(tt.addr),
			"%s %s", tt.currency, tt.addr)
	}
}

func TestDividerAndCoingeckoName(t *testing.T) {
	for _, currency := range Currencies {
		assert.True(t, currency.Valid())
		assert.Positive(t, currency.Divider())
		assert.NotEmpty(t, currency.CoingeckoName())
	}
	assert.False(t, Currency("DOGE").Valid())
}

func TestExplorerTxURL(t *testing.T) {
	assert.Equal(t, "https://mempool.space/tx/deadbeef", BTC.ExplorerTxURL("deadbeef"))
	assert.Equal(t, "https://solscan.io/tx/deadbeef", SOL.ExplorerTxURL("deadbeef"))
}
