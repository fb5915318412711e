package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/wallet"
)

// WalletMenu is the entry screen of the withdrawal flow.
func (s *AdminService) WalletMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("💸 Withdraw funds", navigation.NewWalletCallback(1).Pack())),
		menu.Row(menu.Data("⬅️ Back", navigation.NewAdminMenuCallback(0).Pack())),
	)
	return "🔑 Wallet", menu
}

// WalletBalances shows the held amount per currency; picking one starts
// the address dialogue.
func (s *AdminService) WalletBalances(ctx context.Context) (string, *tele.ReplyMarkup, error) {
	balances, err := s.wallet.GetBalance(ctx)
	if err != nil {
		return "", nil, err
	}

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	var text strings.Builder
	text.WriteString("💸 Withdraw funds\n")
	for _, currency := range wallet.Currencies {
		amount := balances[currency]
		fmt.Fprintf(&text, "\n%s: %.8f", currency, amount)
		if amount <= 0 {
			continue
		}
		pick := navigation.NewWalletCallback(1)
		pick.Currency = currency
		rows = append(rows, menu.Row(menu.Data(string(currency), pick.Pack())))
	}
	if len(rows) == 0 {
		text.WriteString("\n\nNothing to withdraw.")
	}
	rows = append(rows, menu.Row(*backButton(menu, "⬅️ Back", navigation.NewWalletCallback(0).Pack())))
	menu.Inline(rows...)
	return text.String(), menu, nil
}

// WalletCurrencyPicked arms the address dialogue for the chosen network.
func (s *AdminService) WalletCurrencyPicked(adminID int64, cb navigation.WalletCallback) (string, *tele.ReplyMarkup, error) {
	s.sessions.Set(adminID, AwaitingWalletAddress{Currency: cb.Currency})
	return fmt.Sprintf("Send the %s address to sweep the balance to, or 'cancel' to abort.", cb.Currency), nil, nil
}

// HandleWalletAddress validates the address and fetches a dry-run quote.
// The address is kept in the session for the confirmation press.
func (s *AdminService) HandleWalletAddress(ctx context.Context, adminID int64, st AwaitingWalletAddress, text string) (string, *tele.ReplyMarkup, error) {
	address := strings.TrimSpace(text)
	if !st.Currency.ValidAddress(address) {
		return fmt.Sprintf("That does not look like a %s address. Send another one or 'cancel'.", st.Currency), nil, nil
	}

	quote, err := s.wallet.Withdraw(ctx, st.Currency, address, true)
	if err != nil {
		s.sessions.Clear(adminID)
		return fmt.Sprintf("❌ Could not quote the withdrawal: %v", err), nil, nil
	}

	s.sessions.Set(adminID, WalletAddressCollected{Currency: st.Currency, ToAddress: address})

	confirm := navigation.NewWalletCallback(2)
	confirm.Currency = st.Currency
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Withdraw", confirm.Pack())),
		menu.Row(menu.Data("⬅️ Cancel", navigation.NewWalletCallback(0).Pack())),
	)
	body := fmt.Sprintf(
		"%s → %s\n\nTotal: %.8f\nNetwork fee: %.8f\nService fee: %.8f\nYou receive: %.8f",
		st.Currency, address,
		quote.TotalWithdrawalAmount, quote.BlockchainFeeAmount,
		quote.ServiceFeeAmount, quote.ReceivingAmount,
	)
	return body, menu, nil
}

// WalletExecute broadcasts the withdrawal prepared in the session.
func (s *AdminService) WalletExecute(ctx context.Context, adminID int64, cb navigation.WalletCallback) (string, *tele.ReplyMarkup, error) {
	state, ok := s.sessions.Get(adminID)
	collected, isCollected := state.(WalletAddressCollected)
	if !ok || !isCollected || collected.Currency != cb.Currency {
		s.sessions.Clear(adminID)
		text, menu := s.WalletMenu()
		return "⚠️ The withdrawal session expired. Start over.\n\n" + text, menu, nil
	}
	s.sessions.Clear(adminID)

	result, err := s.wallet.Withdraw(ctx, collected.Currency, collected.ToAddress, false)
	if err != nil {
		return fmt.Sprintf("❌ Withdrawal failed: %v", err), nil, nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "✅ Sent %.8f %s to %s\n", result.ReceivingAmount, collected.Currency, collected.ToAddress)
	for _, txID := range result.TxIDList {
		fmt.Fprintf(&text, "\n%s", collected.Currency.ExplorerTxURL(txID))
	}
	_, menu := s.WalletMenu()
	return text.String(), menu, nil
}
