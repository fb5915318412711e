package bot

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/models"
	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/repository"
)

// UserMgmtMenu is the entry screen for credit and refund flows.
func (s *AdminService) UserMgmtMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}

	credit := navigation.NewUserMgmtCallback(1)
	refunds := navigation.NewUserMgmtCallback(2)
	refunds.Operation = navigation.OpRefund

	menu.Inline(
		menu.Row(menu.Data("💳 Credit management", credit.Pack())),
		menu.Row(menu.Data("↩️ Refunds", refunds.Pack())),
		menu.Row(menu.Data("⬅️ Back", navigation.NewAdminMenuCallback(0).Pack())),
	)
	return "👥 User management", menu
}

// CreditManagement either shows the add/reduce chooser or, once an
// operation is picked, asks for the target user.
func (s *AdminService) CreditManagement(adminID int64, cb navigation.UserMgmtCallback) (string, *tele.ReplyMarkup, error) {
	if cb.Operation == navigation.OpNone {
		menu := &tele.ReplyMarkup{}
		add := cb
		add.Operation = navigation.OpAddBalance
		reduce := cb
		reduce.Operation = navigation.OpReduceBalance
		menu.Inline(
			menu.Row(
				menu.Data("➕ Add balance", add.Pack()),
				menu.Data("➖ Reduce balance", reduce.Pack()),
			),
			menu.Row(menu.Data("⬅️ Back", cb.BackTo(0).Pack())),
		)
		return "💳 Credit management", menu, nil
	}

	s.sessions.Set(adminID, AwaitingUserEntity{Operation: cb.Operation})
	return "Send the user's Telegram id or @username, or 'cancel' to abort.", nil, nil
}

// HandleUserEntity resolves the free-text user reference. An unknown
// user keeps the state armed for another attempt.
func (s *AdminService) HandleUserEntity(adminID int64, st AwaitingUserEntity, entity string) (string, *tele.ReplyMarkup, error) {
	user, err := s.users.GetByEntity(entity)
	if errors.Is(err, repository.ErrNotFound) {
		return "No such user. Send another id or @username, or 'cancel'.", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	s.sessions.Set(adminID, AwaitingBalanceAmount{Operation: st.Operation, UserEntity: entity})
	verb := "add to"
	if st.Operation == navigation.OpReduceBalance {
		verb = "take from"
	}
	return fmt.Sprintf("Balance of %s is %s. Send the amount to %s it.",
		displayName(user), s.money(user.Balance()), verb), nil, nil
}

// HandleBalanceAmount applies the credit change. The user is resolved
// again at apply time; if the record vanished in between, nothing moves.
func (s *AdminService) HandleBalanceAmount(adminID int64, st AwaitingBalanceAmount, text string) (string, *tele.ReplyMarkup, error) {
	amount, err := parsePositiveAmount(text)
	if err != nil {
		return "That is not a valid amount. Send a positive number or 'cancel'.", nil, nil
	}

	user, err := s.users.GetByEntity(st.UserEntity)
	if errors.Is(err, repository.ErrNotFound) {
		s.sessions.Clear(adminID)
		return "The user no longer exists. Nothing was changed.", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	switch st.Operation {
	case navigation.OpAddBalance:
		err = s.users.AddTopUp(user.ID, amount)
	case navigation.OpReduceBalance:
		err = s.users.AddConsume(user.ID, amount)
	default:
		s.sessions.Clear(adminID)
		return "Unknown operation. Start over from the admin menu.", nil, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		s.sessions.Clear(adminID)
		return "The user no longer exists. Nothing was changed.", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	s.sessions.Clear(adminID)

	updated, err := s.users.GetByTelegramID(user.TelegramID)
	if err != nil {
		return "", nil, err
	}
	_, menu := s.UserMgmtMenu()
	return fmt.Sprintf("✅ Done. Balance of %s is now %s.", displayName(updated), s.money(updated.Balance())), menu, nil
}

// RefundList shows one page of refundable sales.
func (s *AdminService) RefundList(cb navigation.UserMgmtCallback) (string, *tele.ReplyMarkup, error) {
	entries, err := s.buys.GetRefundPage(cb.Page, s.pageSize())
	if err != nil {
		return "", nil, err
	}

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, entry := range entries {
		pick := cb.BackTo(3)
		pick.BuyID = entry.BuyID
		label := fmt.Sprintf("%s · %s ×%d · %s",
			refundEntryName(&entry), entry.ProductName, entry.Quantity, s.money(entry.TotalPrice))
		rows = append(rows, menu.Row(menu.Data(label, pick.Pack())))
	}
	rows = append(rows, navigation.PaginationRow(menu, cb, func() (int64, error) {
		total, err := s.buys.CountRefundable()
		if err != nil {
			return 0, err
		}
		return navigation.PageCount(total, s.pageSize()), nil
	}, backButton(menu, "⬅️ Back", cb.BackTo(0).Pack())))
	menu.Inline(rows...)

	text := "↩️ Refundable sales"
	if len(entries) == 0 {
		text += "\n\nNothing to refund."
	}
	return text, menu, nil
}

// RefundConfirm shows one sale and, on the second press, executes the
// refund. The storage layer rejects a second refund of the same sale, so
// a stale confirmation cannot pay out twice.
func (s *AdminService) RefundConfirm(cb navigation.UserMgmtCallback) (string, *tele.ReplyMarkup, error) {
	if cb.Confirmation {
		return s.executeRefund(cb)
	}

	entry, err := s.buys.GetRefundEntry(cb.BuyID)
	if errors.Is(err, repository.ErrNotFound) {
		text, menu, err := s.RefundList(cb.BackTo(2))
		return "⚠️ That sale is gone or already refunded.\n\n" + text, menu, err
	}
	if err != nil {
		return "", nil, err
	}

	confirm := cb
	confirm.Confirmation = true
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Refund", confirm.Pack())),
		menu.Row(menu.Data("⬅️ Cancel", cb.BackTo(2).Pack())),
	)
	text := fmt.Sprintf("Refund %s to %s for %s ×%d?",
		s.money(entry.TotalPrice), refundEntryName(entry), entry.ProductName, entry.Quantity)
	return text, menu, nil
}

func (s *AdminService) executeRefund(cb navigation.UserMgmtCallback) (string, *tele.ReplyMarkup, error) {
	entry, err := s.buys.GetRefundEntry(cb.BuyID)
	if errors.Is(err, repository.ErrNotFound) {
		text, menu, err := s.RefundList(cb.BackTo(2))
		return "⚠️ That sale is gone or already refunded.\n\n" + text, menu, err
	}
	if err != nil {
		return "", nil, err
	}

	if err := s.buys.Refund(cb.BuyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			text, menu, err := s.RefundList(cb.BackTo(2))
			return "⚠️ That sale was already refunded.\n\n" + text, menu, err
		}
		return "", nil, err
	}

	text, menu, err := s.RefundList(cb.BackTo(2))
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("✅ Refunded %s to %s.\n\n%s", s.money(entry.TotalPrice), refundEntryName(entry), text), menu, nil
}

func displayName(user *models.User) string {
	if user.TelegramUsername != "" {
		return "@" + user.TelegramUsername
	}
	return fmt.Sprintf("id %d", user.TelegramID)
}

func refundEntryName(entry *models.RefundEntry) string {
	if entry.TelegramUsername != "" {
		return "@" + entry.TelegramUsername
	}
	return fmt.Sprintf("id %d", entry.TelegramID)
}
