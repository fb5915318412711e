package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/wallet"
)

// StatsMenu picks the aggregate to inspect.
func (s *AdminService) StatsMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}
	entity := func(e navigation.StatsEntity) string {
		cb := navigation.NewStatsCallback(1)
		cb.Entity = e
		return cb.Pack()
	}
	menu.Inline(
		menu.Row(menu.Data("👥 Users", entity(navigation.StatsUsers))),
		menu.Row(menu.Data("🧾 Sales", entity(navigation.StatsBuys))),
		menu.Row(menu.Data("🪙 Deposits", entity(navigation.StatsDeposits))),
		menu.Row(menu.Data("🗄 Export database", navigation.NewStatsCallback(3).Pack())),
		menu.Row(menu.Data("⬅️ Back", navigation.NewAdminMenuCallback(0).Pack())),
	)
	return "📊 Statistics", menu
}

// TimedeltaMenu picks the reporting window.
func (s *AdminService) TimedeltaMenu(cb navigation.StatsCallback) (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}
	window := func(days int) string {
		next := cb.BackTo(2)
		next.Timedelta = days
		next.Page = 0
		return next.Pack()
	}
	menu.Inline(
		menu.Row(
			menu.Data("1 day", window(navigation.TimedeltaDay)),
			menu.Data("7 days", window(navigation.TimedeltaWeek)),
			menu.Data("30 days", window(navigation.TimedeltaMonth)),
		),
		menu.Row(menu.Data("⬅️ Back", cb.BackTo(0).Pack())),
	)
	return "Pick the reporting window.", menu
}

// Statistics renders the chosen aggregate over the chosen window.
func (s *AdminService) Statistics(ctx context.Context, cb navigation.StatsCallback) (string, *tele.ReplyMarkup, error) {
	switch cb.Entity {
	case navigation.StatsUsers:
		return s.userStats(cb)
	case navigation.StatsBuys:
		return s.buyStats(cb)
	case navigation.StatsDeposits:
		return s.depositStats(ctx, cb)
	default:
		text, menu := s.StatsMenu()
		return text, menu, nil
	}
}

func (s *AdminService) userStats(cb navigation.StatsCallback) (string, *tele.ReplyMarkup, error) {
	users, total, err := s.users.GetByTimedelta(cb.Timedelta, cb.Page, s.pageSize())
	if err != nil {
		return "", nil, err
	}
	all, err := s.users.CountAll()
	if err != nil {
		return "", nil, err
	}

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, user := range users {
		label := displayName(&user)
		rows = append(rows, menu.Row(menu.URL(label, fmt.Sprintf("tg://user?id=%d", user.TelegramID))))
	}
	rows = append(rows, navigation.PaginationRow(menu, cb, func() (int64, error) {
		return navigation.PageCount(total, s.pageSize()), nil
	}, backButton(menu, "⬅️ Back", cb.BackTo(1).Pack())))
	menu.Inline(rows...)

	text := fmt.Sprintf("👥 New users in the last %d day(s): %d\nTotal registered: %d", cb.Timedelta, total, all)
	return text, menu, nil
}

func (s *AdminService) buyStats(cb navigation.StatsCallback) (string, *tele.ReplyMarkup, error) {
	buys, err := s.buys.GetByTimedelta(cb.Timedelta)
	if err != nil {
		return "", nil, err
	}

	var revenue float64
	items := 0
	for _, buy := range buys {
		revenue += buy.TotalPrice
		items += buy.Quantity
	}

	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(*backButton(menu, "⬅️ Back", cb.BackTo(1).Pack())))

	text := fmt.Sprintf("🧾 Sales in the last %d day(s)\nOrders: %d\nItems: %d\nRevenue: %s",
		cb.Timedelta, len(buys), items, s.money(revenue))
	return text, menu, nil
}

func (s *AdminService) depositStats(ctx context.Context, cb navigation.StatsCallback) (string, *tele.ReplyMarkup, error) {
	deposits, err := s.deposits.GetByTimedelta(cb.Timedelta)
	if err != nil {
		return "", nil, err
	}

	baseUnits := make(map[wallet.Currency]int64)
	for _, deposit := range deposits {
		baseUnits[wallet.Currency(deposit.Network)] += deposit.Amount
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🪙 Deposits in the last %d day(s): %d\n", cb.Timedelta, len(deposits))
	var fiatTotal float64
	for _, currency := range wallet.Currencies {
		units, ok := baseUnits[currency]
		if !ok {
			continue
		}
		coins := float64(units) / pow10(currency.Divider())
		fmt.Fprintf(&text, "\n%s: %.8f", currency, coins)
		price, err := s.wallet.GetFiatPrice(ctx, currency, s.cfg.Shop.Currency)
		if err != nil {
			s.logger.Warn("fiat price lookup failed", zap.String("currency", string(currency)), zap.Error(err))
			continue
		}
		value := coins * price
		fiatTotal += value
		fmt.Fprintf(&text, " ≈ %s", s.money(value))
	}
	if fiatTotal > 0 {
		fmt.Fprintf(&text, "\n\nTotal ≈ %s", s.money(fiatTotal))
	}

	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(*backButton(menu, "⬅️ Back", cb.BackTo(1).Pack())))
	return text.String(), menu, nil
}

// ExportDatabasePath stages a point-in-time copy of the database file for
// upload, so the live file is not held open while Telegram reads it.
// Callers must remove the returned file when done.
func (s *AdminService) ExportDatabasePath() (string, error) {
	if s.cfg.Database.Driver != "sqlite" {
		return "", fmt.Errorf("database export is only available with the sqlite driver")
	}
	src, err := os.ReadFile(s.cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("reading database file: %w", err)
	}
	path := filepath.Join(os.TempDir(), "shopdb-"+uuid.NewString()+".db")
	if err := os.WriteFile(path, src, 0o600); err != nil {
		return "", fmt.Errorf("staging database copy: %w", err)
	}
	return path, nil
}

func pow10(exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= 10
	}
	return out
}
