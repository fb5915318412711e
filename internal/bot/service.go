// Package bot implements the Telegram admin surface: the inventory tree
// browser, credit and refund management, statistics, wallet withdrawals
// and broadcasts. Screen builders return text plus inline markup and stay
// independent of the transport, the wiring in bot.go does the sending.
package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/config"
	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/repository"
	"github.com/nalyk/shopbot/internal/wallet"
)

// AdminService builds every admin screen.
type AdminService struct {
	cfg      *config.Config
	logger   *zap.Logger
	sessions *SessionStore

	categories *repository.CategoryRepository
	items      *repository.ItemRepository
	users      *repository.UserRepository
	buys       *repository.BuyRepository
	deposits   *repository.DepositRepository

	wallet wallet.Service
}

// Repos bundles the storage layer handed to the service.
type Repos struct {
	Categories *repository.CategoryRepository
	Items      *repository.ItemRepository
	Users      *repository.UserRepository
	Buys       *repository.BuyRepository
	Deposits   *repository.DepositRepository
}

func NewAdminService(cfg *config.Config, logger *zap.Logger, repos Repos, walletSvc wallet.Service, sessions *SessionStore) *AdminService {
	return &AdminService{
		cfg:        cfg,
		logger:     logger,
		sessions:   sessions,
		categories: repos.Categories,
		items:      repos.Items,
		users:      repos.Users,
		buys:       repos.Buys,
		deposits:   repos.Deposits,
		wallet:     walletSvc,
	}
}

// AdminMenu is the root of every admin flow.
func (s *AdminService) AdminMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("📦 Inventory management", navigation.NewInventoryCallback(navigation.InvLevelMenu, navigation.RootCategoryID).Pack())),
		menu.Row(menu.Data("📣 Announcements", navigation.NewAnnouncementCallback(0).Pack())),
		menu.Row(menu.Data("👥 User management", navigation.NewUserMgmtCallback(0).Pack())),
		menu.Row(menu.Data("📊 Statistics", navigation.NewStatsCallback(0).Pack())),
		menu.Row(menu.Data("🔑 Wallet", navigation.NewWalletCallback(0).Pack())),
	)
	return "🔧 Admin menu", menu
}

func (s *AdminService) money(amount float64) string {
	return fmt.Sprintf("%s%.2f", s.cfg.Shop.CurrencySymbol, amount)
}

func (s *AdminService) pageSize() int {
	return s.cfg.Shop.PageSize
}

// breadcrumb renders the path from the root to the given node. The root
// sentinel alone renders as the house glyph.
func (s *AdminService) breadcrumb(categoryID int64) (string, error) {
	if categoryID == navigation.RootCategoryID {
		return "🏠", nil
	}
	chain, err := s.categories.GetBreadcrumb(categoryID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(chain)+1)
	parts = append(parts, "🏠")
	for _, node := range chain {
		parts = append(parts, node.Name)
	}
	return strings.Join(parts, " / "), nil
}

func backButton(menu *tele.ReplyMarkup, label, data string) *tele.Btn {
	btn := menu.Data(label, data)
	return &btn
}
