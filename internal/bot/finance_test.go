package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalyk/shopbot/internal/models"
	"github.com/nalyk/shopbot/internal/navigation"
)

func (e *testEnv) user(t *testing.T, telegramID int64, username string) *models.User {
	t.Helper()
	user := &models.User{
		TelegramID:         telegramID,
		TelegramUsername:   username,
		CanReceiveMessages: true,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) sale(t *testing.T, userID int64, price float64) *models.Buy {
	t.Helper()
	product := e.product(t, "Sold product", nil, price)
	_, err := e.items.AddMany(product.ID, []string{"private"})
	require.NoError(t, err)
	e.sellOne(t, product.ID)
	require.NoError(t, e.users.AddConsume(userID, price))

	var item models.Item
	require.NoError(t, e.db.Where("category_id = ?", product.ID).First(&item).Error)
	buy := &models.Buy{UserID: userID, ItemID: item.ID, Quantity: 1, TotalPrice: price}
	require.NoError(t, e.buys.Create(buy))
	return buy
}

func TestCreditDialogueAddsBalance(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, 555, "carol")

	cb := navigation.NewUserMgmtCallback(1)
	cb.Operation = navigation.OpAddBalance
	_, _, err := env.svc.CreditManagement(testAdminID, cb)
	require.NoError(t, err)

	state, ok := env.svc.sessions.Get(testAdminID)
	require.True(t, ok)
	entityState := state.(AwaitingUserEntity)

	reply, _, err := env.svc.HandleUserEntity(testAdminID, entityState, "@nosuchuser")
	require.NoError(t, err)
	assert.Contains(t, reply, "No such user")

	reply, _, err = env.svc.HandleUserEntity(testAdminID, entityState, "@carol")
	require.NoError(t, err)
	assert.Contains(t, reply, "@carol")

	state, _ = env.svc.sessions.Get(testAdminID)
	amountState := state.(AwaitingBalanceAmount)

	reply, _, err = env.svc.HandleBalanceAmount(testAdminID, amountState, "50")
	require.NoError(t, err)
	assert.Contains(t, reply, "$50.00")

	user, err := env.users.GetByTelegramID(555)
	require.NoError(t, err)
	assert.InDelta(t, 50, user.Balance(), 1e-9)
}

func TestCreditDialogueReducesBalanceViaLedger(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 556, "dave")
	require.NoError(t, env.users.AddTopUp(user.ID, 100))

	st := AwaitingBalanceAmount{Operation: navigation.OpReduceBalance, UserEntity: "@dave"}
	env.svc.sessions.Set(testAdminID, st)
	_, _, err := env.svc.HandleBalanceAmount(testAdminID, st, "40")
	require.NoError(t, err)

	got, err := env.users.GetByTelegramID(556)
	require.NoError(t, err)
	assert.InDelta(t, 60, got.Balance(), 1e-9)
	assert.InDelta(t, 100, got.TopUpAmount, 1e-9, "top-ups are never rewritten")
	assert.InDelta(t, 40, got.ConsumeRecords, 1e-9)
}

func TestBalanceAmountVanishedUserChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 557, "erin")

	st := AwaitingBalanceAmount{Operation: navigation.OpAddBalance, UserEntity: "@erin"}
	env.svc.sessions.Set(testAdminID, st)

	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	reply, _, err := env.svc.HandleBalanceAmount(testAdminID, st, "50")
	require.NoError(t, err)
	assert.Contains(t, reply, "no longer exists")

	_, ok := env.svc.sessions.Get(testAdminID)
	assert.False(t, ok)
}

func TestRefundFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 558, "frank")
	require.NoError(t, env.users.AddTopUp(user.ID, 100))
	buy := env.sale(t, user.ID, 30)

	listCB := navigation.NewUserMgmtCallback(2)
	listCB.Operation = navigation.OpRefund
	text, menu, err := env.svc.RefundList(listCB)
	require.NoError(t, err)
	assert.Contains(t, text, "Refundable sales")
	assert.Contains(t, markupLabels(menu)[0], "@frank")

	pickCB := listCB.BackTo(3)
	pickCB.BuyID = buy.ID
	text, _, err = env.svc.RefundConfirm(pickCB)
	require.NoError(t, err)
	assert.Contains(t, text, "Refund $30.00 to @frank")

	confirmCB := pickCB
	confirmCB.Confirmation = true
	text, _, err = env.svc.RefundConfirm(confirmCB)
	require.NoError(t, err)
	assert.Contains(t, text, "✅ Refunded")

	got, err := env.users.GetByTelegramID(558)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Balance(), 1e-9)

	// the second press of the same stale button pays nothing
	text, _, err = env.svc.RefundConfirm(confirmCB)
	require.NoError(t, err)
	assert.Contains(t, text, "already refunded")
	got, err = env.users.GetByTelegramID(558)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Balance(), 1e-9)
}
