package bot

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nalyk/shopbot/internal/config"
	"github.com/nalyk/shopbot/internal/models"
	"github.com/nalyk/shopbot/internal/repository"
	"github.com/nalyk/shopbot/internal/wallet"
)

const testAdminID int64 = 987654

// fakeWallet is a canned wallet service for screen tests.
type fakeWallet struct {
	balances map[wallet.Currency]float64
	quote    *wallet.Withdrawal
	prices   map[wallet.Currency]float64
}

func (f *fakeWallet) GetBalance(context.Context) (map[wallet.Currency]float64, error) {
	return f.balances, nil
}

func (f *fakeWallet) Withdraw(_ context.Context, _ wallet.Currency, toAddress string, _ bool) (*wallet.Withdrawal, error) {
	quote := *f.quote
	quote.ToAddress = toAddress
	return &quote, nil
}

func (f *fakeWallet) GetFiatPrice(_ context.Context, currency wallet.Currency, _ string) (float64, error) {
	return f.prices[currency], nil
}

type testEnv struct {
	svc        *AdminService
	db         *gorm.DB
	categories *repository.CategoryRepository
	items      *repository.ItemRepository
	users      *repository.UserRepository
	buys       *repository.BuyRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Item{}, &models.Buy{}, &models.Deposit{},
	))

	cfg := &config.Config{
		Bot: config.BotConfig{AdminIDs: []int64{testAdminID}},
		Shop: config.ShopConfig{
			Currency:       "usd",
			CurrencySymbol: "$",
			PageSize:       10,
		},
	}

	repos := Repos{
		Categories: repository.NewCategoryRepository(db),
		Items:      repository.NewItemRepository(db),
		Users:      repository.NewUserRepository(db),
		Buys:       repository.NewBuyRepository(db),
		Deposits:   repository.NewDepositRepository(db),
	}
	fw := &fakeWallet{
		balances: map[wallet.Currency]float64{wallet.BTC: 0.5},
		quote: &wallet.Withdrawal{
			TotalWithdrawalAmount: 0.5,
			BlockchainFeeAmount:   0.0001,
			ServiceFeeAmount:      0.0005,
			ReceivingAmount:       0.4994,
			TxIDList:              []string{"abc123"},
		},
		prices: map[wallet.Currency]float64{wallet.BTC: 50000},
	}

	svc := NewAdminService(cfg, zap.NewNop(), repos, fw, NewSessionStore())
	return &testEnv{
		svc:        svc,
		db:         db,
		categories: repos.Categories,
		items:      repos.Items,
		users:      repos.Users,
		buys:       repos.Buys,
	}
}

func (e *testEnv) category(t *testing.T, name string, parentID *int64) *models.Category {
	t.Helper()
	cat, err := e.categories.Create(name, parentID, false, nil, nil)
	require.NoError(t, err)
	return cat
}

func (e *testEnv) product(t *testing.T, name string, parentID *int64, price float64) *models.Category {
	t.Helper()
	description := name + " description"
	cat, err := e.categories.Create(name, parentID, true, &price, &description)
	require.NoError(t, err)
	return cat
}

// markupLabels flattens an inline keyboard into its button labels.
func markupLabels(menu *tele.ReplyMarkup) []string {
	if menu == nil {
		return nil
	}
	var labels []string
	for _, row := range menu.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	return labels
}

// findButton returns the first inline button with the given label.
func findButton(menu *tele.ReplyMarkup, label string) *tele.InlineButton {
	if menu == nil {
		return nil
	}
	for _, row := range menu.InlineKeyboard {
		for i := range row {
			if row[i].Text == label {
				return &row[i]
			}
		}
	}
	return nil
}

func (e *testEnv) sellOne(t *testing.T, productID int64) {
	t.Helper()
	var item models.Item
	require.NoError(t, e.db.Where("category_id = ? AND is_sold = ?", productID, false).First(&item).Error)
	require.NoError(t, e.db.Model(&item).Update("is_sold", true).Error)
}
