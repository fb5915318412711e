package bot

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/navigation"
)

// AnnouncementMenu picks the broadcast kind.
func (s *AdminService) AnnouncementMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}
	kind := func(t navigation.AnnouncementType) string {
		cb := navigation.NewAnnouncementCallback(1)
		cb.Type = t
		return cb.Pack()
	}
	menu.Inline(
		menu.Row(menu.Data("📨 Send to everyone", kind(navigation.AnnouncementFromMessage))),
		menu.Row(menu.Data("🆕 Restocking", kind(navigation.AnnouncementRestocking))),
		menu.Row(menu.Data("📊 Current stock", kind(navigation.AnnouncementCurrentStock))),
		menu.Row(menu.Data("⬅️ Back", navigation.NewAdminMenuCallback(0).Pack())),
	)
	return "📣 Announcements", menu
}

// AnnouncementPrepare composes the preview for a stock announcement, or
// arms the free-form broadcast dialogue.
func (s *AdminService) AnnouncementPrepare(adminID int64, cb navigation.AnnouncementCallback) (string, *tele.ReplyMarkup, error) {
	if cb.Type == navigation.AnnouncementFromMessage {
		s.sessions.Set(adminID, AwaitingBroadcastMessage{})
		return "Send the message to broadcast to every user, or 'cancel' to abort.", nil, nil
	}

	body, err := s.ComposeStockAnnouncement(cb.Type)
	if err != nil {
		return "", nil, err
	}
	if body == "" {
		text, menu := s.AnnouncementMenu()
		return "Nothing to announce, the stock is empty.\n\n" + text, menu, nil
	}

	confirm := cb.BackTo(2)
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Broadcast", confirm.Pack())),
		menu.Row(menu.Data("⬅️ Cancel", cb.BackTo(0).Pack())),
	)
	return "Preview:\n\n" + body, menu, nil
}

// ComposeStockAnnouncement renders the restocking or current-stock text.
// An empty string means there is nothing to announce.
func (s *AdminService) ComposeStockAnnouncement(kind navigation.AnnouncementType) (string, error) {
	var (
		stock map[string]int64
		title string
		err   error
	)
	switch kind {
	case navigation.AnnouncementRestocking:
		stock, err = s.items.NewStock()
		title = "🆕 Just restocked!"
	case navigation.AnnouncementCurrentStock:
		stock, err = s.items.CurrentStock()
		title = "📊 In stock right now"
	default:
		return "", fmt.Errorf("announcement type %d has no stock body", kind)
	}
	if err != nil {
		return "", err
	}
	if len(stock) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)

	var text strings.Builder
	text.WriteString(title)
	for _, name := range names {
		fmt.Fprintf(&text, "\n• %s — %d pcs", name, stock[name])
	}
	return text.String(), nil
}

// FinishRestocking clears the new flags once the restocking broadcast is
// out, so the next announcement only covers newer arrivals.
func (s *AdminService) FinishRestocking() error {
	return s.items.SetNotNew()
}
