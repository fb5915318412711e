package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalyk/shopbot/internal/models"
)

type saleFixture struct {
	users    *UserRepository
	buys     *BuyRepository
	user     *models.User
	buy      *models.Buy
	itemID   int64
	products *CategoryRepository
}

func seedSale(t *testing.T, price float64) *saleFixture {
	t.Helper()
	db := newTestDB(t)

	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	items := NewItemRepository(db)
	buys := NewBuyRepository(db)

	user := seedUser(t, users, 1000, "buyer")
	require.NoError(t, users.AddTopUp(user.ID, price*2))

	product := createProduct(t, categories, "Product", nil, price)
	_, err := items.AddMany(product.ID, []string{"sold-data"})
	require.NoError(t, err)

	var item models.Item
	require.NoError(t, db.First(&item).Error)
	require.NoError(t, db.Model(&item).Update("is_sold", true).Error)
	require.NoError(t, users.AddConsume(user.ID, price))

	buy := &models.Buy{UserID: user.ID, ItemID: item.ID, Quantity: 1, TotalPrice: price}
	require.NoError(t, buys.Create(buy))

	return &saleFixture{users: users, buys: buys, user: user, buy: buy, itemID: item.ID, products: categories}
}

func TestRefundListing(t *testing.T) {
	fx := seedSale(t, 25)

	entries, err := fx.buys.GetRefundPage(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fx.buy.ID, entries[0].BuyID)
	assert.Equal(t, "buyer", entries[0].TelegramUsername)
	assert.Equal(t, "Product", entries[0].ProductName)
	assert.InDelta(t, 25, entries[0].TotalPrice, 1e-9)

	count, err := fx.buys.CountRefundable()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRefundReversesSale(t *testing.T) {
	fx := seedSale(t, 25)

	before, err := fx.users.GetByTelegramID(1000)
	require.NoError(t, err)

	require.NoError(t, fx.buys.Refund(fx.buy.ID))

	after, err := fx.users.GetByTelegramID(1000)
	require.NoError(t, err)
	assert.InDelta(t, before.Balance()+25, after.Balance(), 1e-9)

	_, err = fx.buys.GetRefundEntry(fx.buy.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	qty, err := fx.products.GetAvailableQty(fx.itemIDCategory(t))
	require.NoError(t, err)
	assert.EqualValues(t, 1, qty, "the item is back in stock")
}

func TestRefundTwiceIsRejected(t *testing.T) {
	fx := seedSale(t, 25)

	require.NoError(t, fx.buys.Refund(fx.buy.ID))
	assert.ErrorIs(t, fx.buys.Refund(fx.buy.ID), ErrNotFound)

	// the balance moved exactly once
	user, err := fx.users.GetByTelegramID(1000)
	require.NoError(t, err)
	assert.InDelta(t, 50, user.Balance(), 1e-9)
}

func (fx *saleFixture) itemIDCategory(t *testing.T) int64 {
	t.Helper()
	var item models.Item
	require.NoError(t, fx.buys.db.First(&item, fx.itemID).Error)
	return item.CategoryID
}
