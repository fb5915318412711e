package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/wallet"
)

func TestWalletBalancesListsFundedCurrencies(t *testing.T) {
	env := newTestEnv(t)

	text, menu, err := env.svc.WalletBalances(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "BTC: 0.50000000")

	labels := markupLabels(menu)
	assert.Contains(t, labels, "BTC")
	assert.NotContains(t, labels, "SOL", "empty balances get no withdraw button")
}

func TestWalletAddressValidation(t *testing.T) {
	env := newTestEnv(t)
	st := AwaitingWalletAddress{Currency: wallet.BTC}
	env.svc.sessions.Set(testAdminID, st)

	reply, _, err := env.svc.HandleWalletAddress(context.Background(), testAdminID, st, "not-an-address")
	require.NoError(t, err)
	assert.Contains(t, reply, "does not look like a BTC address")

	// still armed for a retry
	_, ok := env.svc.sessions.Get(testAdminID)
	assert.True(t, ok)

	reply, menu, err := env.svc.HandleWalletAddress(context.Background(), testAdminID, st,
		"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.NoError(t, err)
	assert.Contains(t, reply, "Network fee")
	assert.Contains(t, markupLabels(menu), "✅ Withdraw")

	state, ok := env.svc.sessions.Get(testAdminID)
	require.True(t, ok)
	collected := state.(WalletAddressCollected)
	assert.Equal(t, wallet.BTC, collected.Currency)
}

func TestWalletExecuteNeedsCollectedAddress(t *testing.T) {
	env := newTestEnv(t)

	cb := navigation.NewWalletCallback(2)
	cb.Currency = wallet.BTC
	reply, _, err := env.svc.WalletExecute(context.Background(), testAdminID, cb)
	require.NoError(t, err)
	assert.Contains(t, reply, "session expired")
}

func TestWalletExecuteSendsAndLinksTransactions(t *testing.T) {
	env := newTestEnv(t)
	env.svc.sessions.Set(testAdminID, WalletAddressCollected{
		Currency:  wallet.BTC,
		ToAddress: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
	})

	cb := navigation.NewWalletCallback(2)
	cb.Currency = wallet.BTC
	reply, _, err := env.svc.WalletExecute(context.Background(), testAdminID, cb)
	require.NoError(t, err)
	assert.Contains(t, reply, "✅ Sent")
	assert.Contains(t, reply, "https://mempool.space/tx/abc123")

	_, ok := env.svc.sessions.Get(testAdminID)
	assert.False(t, ok)
}

func TestWalletExecuteCurrencyMismatchExpires(t *testing.T) {
	env := newTestEnv(t)
	env.svc.sessions.Set(testAdminID, WalletAddressCollected{
		Currency:  wallet.LTC,
		ToAddress: "ltc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
	})

	cb := navigation.NewWalletCallback(2)
	cb.Currency = wallet.BTC
	reply, _, err := env.svc.WalletExecute(context.Background(), testAdminID, cb)
	require.NoError(t, err)
	assert.Contains(t, reply, "session expired")
}
