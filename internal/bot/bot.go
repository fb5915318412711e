package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/config"
	"github.com/nalyk/shopbot/internal/models"
	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/repository"
)

// Bot wires the admin screens to Telegram.
type Bot struct {
	tb     *tele.Bot
	cfg    *config.Config
	logger *zap.Logger
	svc    *AdminService
}

func NewBot(cfg *config.Config, logger *zap.Logger, svc *AdminService) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram handler failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{tb: tb, cfg: cfg, logger: logger, svc: svc}
	b.registerHandlers()
	return b, nil
}

// Start begins long polling. Not used in webhook mode.
func (b *Bot) Start() {
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

// ProcessUpdate feeds one webhook update into the handler chain.
func (b *Bot) ProcessUpdate(u tele.Update) {
	b.tb.ProcessUpdate(u)
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/admin", b.handleAdmin)
	b.tb.Handle(tele.OnCallback, b.handleCallback)
	b.tb.Handle(tele.OnText, b.handleText)
	b.tb.Handle(tele.OnPhoto, b.handlePhoto)
	b.tb.Handle(tele.OnDocument, b.handleDocument)
}

func (b *Bot) isAdmin(id int64) bool {
	for _, adminID := range b.cfg.Bot.AdminIDs {
		if adminID == id {
			return true
		}
	}
	return false
}

func (b *Bot) handleStart(c tele.Context) error {
	sender := c.Sender()
	if err := b.registerUser(sender); err != nil {
		b.logger.Error("user registration failed", zap.Int64("telegram_id", sender.ID), zap.Error(err))
	}
	if b.isAdmin(sender.ID) {
		text, menu := b.svc.AdminMenu()
		return c.Send(text, menu)
	}
	return c.Send("👋 Welcome!")
}

func (b *Bot) registerUser(sender *tele.User) error {
	existing, err := b.svc.users.GetByTelegramID(sender.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return b.svc.users.Create(&models.User{
			TelegramID:         sender.ID,
			TelegramUsername:   sender.Username,
			CanReceiveMessages: true,
		})
	}
	if err != nil {
		return err
	}
	if existing.TelegramUsername != sender.Username {
		return b.svc.users.UpdateUsername(existing.ID, sender.Username)
	}
	return nil
}

func (b *Bot) handleAdmin(c tele.Context) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}
	b.svc.sessions.Clear(c.Sender().ID)
	text, menu := b.svc.AdminMenu()
	return c.Send(text, menu)
}

// callbackData strips the telebot framing from a raw callback payload:
// a leading \f and anything after the | separator.
func callbackData(c tele.Context) string {
	data := c.Callback().Data
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}
	return data
}

func (b *Bot) handleCallback(c tele.Context) error {
	defer func() {
		_ = c.Respond()
	}()
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}

	data := callbackData(c)
	var (
		text string
		menu *tele.ReplyMarkup
		err  error
	)
	switch navigation.Prefix(data) {
	case navigation.PrefixInventory:
		text, menu, err = b.dispatchInventory(c, data)
	case navigation.PrefixUserMgmt:
		text, menu, err = b.dispatchUserMgmt(c, data)
	case navigation.PrefixStatistics:
		text, menu, err = b.dispatchStats(c, data)
	case navigation.PrefixWallet:
		text, menu, err = b.dispatchWallet(c, data)
	case navigation.PrefixAnnouncement:
		text, menu, err = b.dispatchAnnouncement(c, data)
	case navigation.PrefixAdminMenu:
		b.svc.sessions.Clear(c.Sender().ID)
		text, menu = b.svc.AdminMenu()
	default:
		b.logger.Warn("callback with unknown prefix", zap.String("data", data))
		text, menu = b.svc.AdminMenu()
	}
	if errors.Is(err, navigation.ErrDecode) {
		b.logger.Warn("malformed callback token", zap.String("data", data), zap.Error(err))
		text, menu = b.svc.AdminMenu()
		err = nil
	}
	if err != nil {
		b.logger.Error("admin screen failed", zap.String("data", data), zap.Error(err))
		return c.Send("❌ Something went wrong. Try again.")
	}
	if text == "" {
		return nil
	}
	return b.respond(c, text, menu)
}

// Inline navigation cancels any pending dialogue, except the prompt
// levels that arm one.
func (b *Bot) clearSessionUnless(c tele.Context, keep bool) {
	if !keep {
		b.svc.sessions.Clear(c.Sender().ID)
	}
}

func (b *Bot) dispatchInventory(c tele.Context, data string) (string, *tele.ReplyMarkup, error) {
	cb, err := navigation.UnpackInventory(data)
	if err != nil {
		return "", nil, err
	}
	b.clearSessionUnless(c, cb.Level == navigation.InvLevelAction)

	switch cb.Level {
	case navigation.InvLevelMenu:
		text, menu := b.svc.InventoryMenu()
		return text, menu, nil
	case navigation.InvLevelBrowser:
		return b.svc.CategoryBrowser(cb)
	case navigation.InvLevelProduct:
		return b.svc.ProductManagement(cb)
	case navigation.InvLevelAction:
		return b.svc.ActionPrompt(c.Sender().ID, cb)
	case navigation.InvLevelDeleteConfirm:
		return b.svc.DeleteConfirmation(cb)
	case navigation.InvLevelDeleteExecute:
		return b.svc.ExecuteDelete(cb)
	default:
		text, menu := b.svc.InventoryMenu()
		return text, menu, nil
	}
}

func (b *Bot) dispatchUserMgmt(c tele.Context, data string) (string, *tele.ReplyMarkup, error) {
	cb, err := navigation.UnpackUserMgmt(data)
	if err != nil {
		return "", nil, err
	}
	b.clearSessionUnless(c, cb.Level == 1 && cb.Operation != navigation.OpNone)

	switch cb.Level {
	case 0:
		text, menu := b.svc.UserMgmtMenu()
		return text, menu, nil
	case 1:
		return b.svc.CreditManagement(c.Sender().ID, cb)
	case 2:
		return b.svc.RefundList(cb)
	case 3:
		return b.svc.RefundConfirm(cb)
	default:
		text, menu := b.svc.UserMgmtMenu()
		return text, menu, nil
	}
}

func (b *Bot) dispatchStats(c tele.Context, data string) (string, *tele.ReplyMarkup, error) {
	cb, err := navigation.UnpackStats(data)
	if err != nil {
		return "", nil, err
	}
	b.clearSessionUnless(c, false)

	switch cb.Level {
	case 0:
		text, menu := b.svc.StatsMenu()
		return text, menu, nil
	case 1:
		text, menu := b.svc.TimedeltaMenu(cb)
		return text, menu, nil
	case 2:
		return b.svc.Statistics(context.Background(), cb)
	case 3:
		return b.sendDatabaseExport(c)
	default:
		text, menu := b.svc.StatsMenu()
		return text, menu, nil
	}
}

func (b *Bot) sendDatabaseExport(c tele.Context) (string, *tele.ReplyMarkup, error) {
	path, err := b.svc.ExportDatabasePath()
	if err != nil {
		return "❌ " + err.Error(), nil, nil
	}
	defer os.Remove(path)

	doc := &tele.Document{File: tele.FromDisk(path), FileName: "shop.db"}
	if err := c.Send(doc); err != nil {
		return "", nil, err
	}
	return "", nil, nil
}

func (b *Bot) dispatchWallet(c tele.Context, data string) (string, *tele.ReplyMarkup, error) {
	cb, err := navigation.UnpackWallet(data)
	if err != nil {
		return "", nil, err
	}
	b.clearSessionUnless(c, cb.Level == 2 || (cb.Level == 1 && cb.Currency != ""))

	switch cb.Level {
	case 0:
		text, menu := b.svc.WalletMenu()
		return text, menu, nil
	case 1:
		if cb.Currency == "" {
			return b.svc.WalletBalances(context.Background())
		}
		return b.svc.WalletCurrencyPicked(c.Sender().ID, cb)
	case 2:
		return b.svc.WalletExecute(context.Background(), c.Sender().ID, cb)
	default:
		text, menu := b.svc.WalletMenu()
		return text, menu, nil
	}
}

func (b *Bot) dispatchAnnouncement(c tele.Context, data string) (string, *tele.ReplyMarkup, error) {
	cb, err := navigation.UnpackAnnouncement(data)
	if err != nil {
		return "", nil, err
	}
	b.clearSessionUnless(c, cb.Level == 1 && cb.Type == navigation.AnnouncementFromMessage)

	switch cb.Level {
	case 0:
		text, menu := b.svc.AnnouncementMenu()
		return text, menu, nil
	case 1:
		return b.svc.AnnouncementPrepare(c.Sender().ID, cb)
	case 2:
		return b.startStockBroadcast(c, cb)
	default:
		text, menu := b.svc.AnnouncementMenu()
		return text, menu, nil
	}
}

func (b *Bot) startStockBroadcast(c tele.Context, cb navigation.AnnouncementCallback) (string, *tele.ReplyMarkup, error) {
	body, err := b.svc.ComposeStockAnnouncement(cb.Type)
	if err != nil {
		return "", nil, err
	}
	if body == "" {
		text, menu := b.svc.AnnouncementMenu()
		return "Nothing to announce, the stock is empty.\n\n" + text, menu, nil
	}

	adminID := c.Sender().ID
	go func() {
		sent, failed := b.broadcastText(body)
		if cb.Type == navigation.AnnouncementRestocking {
			if err := b.svc.FinishRestocking(); err != nil {
				b.logger.Error("clearing new-stock flags failed", zap.Error(err))
			}
		}
		b.reportBroadcast(adminID, sent, failed)
	}()
	return "📣 Broadcasting...", nil, nil
}

func (b *Bot) handleText(c tele.Context) error {
	sender := c.Sender()
	if !b.isAdmin(sender.ID) {
		return nil
	}
	state, ok := b.svc.sessions.Get(sender.ID)
	if !ok {
		return nil
	}

	text := c.Text()
	if strings.EqualFold(strings.TrimSpace(text), "cancel") {
		b.svc.sessions.Clear(sender.ID)
		menuText, menu := b.svc.AdminMenu()
		return c.Send("🚫 Cancelled.\n\n"+menuText, menu)
	}

	var (
		reply string
		menu  *tele.ReplyMarkup
		err   error
	)
	switch st := state.(type) {
	case AwaitingCategoryName:
		reply, menu, err = b.svc.HandleCategoryName(sender.ID, st, text)
	case AwaitingProductName:
		reply, menu, err = b.svc.HandleProductName(sender.ID, st, text)
	case AwaitingProductPrice:
		reply, menu, err = b.svc.HandleProductPrice(sender.ID, st, text)
	case AwaitingProductDescription:
		reply, menu, err = b.svc.HandleProductDescription(sender.ID, st, text)
	case AwaitingNewPrice:
		reply, menu, err = b.svc.HandleNewPrice(sender.ID, st, text)
	case AwaitingNewDescription:
		reply, menu, err = b.svc.HandleNewDescription(sender.ID, st, text)
	case AwaitingNewImage:
		reply = "Send the new image as a photo, or 'cancel'."
	case AwaitingItemsFile:
		reply = "Send the batch as a file attachment, or 'cancel'."
	case AwaitingUserEntity:
		reply, menu, err = b.svc.HandleUserEntity(sender.ID, st, text)
	case AwaitingBalanceAmount:
		reply, menu, err = b.svc.HandleBalanceAmount(sender.ID, st, text)
	case AwaitingWalletAddress:
		reply, menu, err = b.svc.HandleWalletAddress(context.Background(), sender.ID, st, text)
	case WalletAddressCollected:
		reply = "Press the button above to confirm, or send 'cancel'."
	case AwaitingBroadcastMessage:
		return b.startMessageBroadcast(c)
	default:
		b.svc.sessions.Clear(sender.ID)
		reply, menu = b.svc.AdminMenu()
	}
	if err != nil {
		b.logger.Error("dialogue step failed", zap.Int64("admin_id", sender.ID), zap.Error(err))
		return c.Send("❌ Something went wrong. Try again.")
	}
	return b.respond(c, reply, menu)
}

func (b *Bot) handlePhoto(c tele.Context) error {
	sender := c.Sender()
	if !b.isAdmin(sender.ID) {
		return nil
	}
	state, ok := b.svc.sessions.Get(sender.ID)
	if !ok {
		return nil
	}

	switch st := state.(type) {
	case AwaitingNewImage:
		photo := c.Message().Photo
		var fileID string
		if photo != nil {
			fileID = photo.FileID
		}
		reply, menu, err := b.svc.HandleNewImage(sender.ID, st, fileID)
		if err != nil {
			b.logger.Error("image update failed", zap.Int64("admin_id", sender.ID), zap.Error(err))
			return c.Send("❌ Something went wrong. Try again.")
		}
		return b.respond(c, reply, menu)
	case AwaitingItemsFile:
		return c.Send("That is a photo. Send the batch as a file attachment, or 'cancel'.")
	case AwaitingBroadcastMessage:
		return b.startMessageBroadcast(c)
	default:
		return nil
	}
}

func (b *Bot) handleDocument(c tele.Context) error {
	sender := c.Sender()
	if !b.isAdmin(sender.ID) {
		return nil
	}
	state, ok := b.svc.sessions.Get(sender.ID)
	if !ok {
		return nil
	}

	switch st := state.(type) {
	case AwaitingItemsFile:
		doc := c.Message().Document
		if doc == nil {
			return c.Send("Send the batch as a file attachment, or 'cancel'.")
		}
		content, err := b.downloadFile(&doc.File)
		if err != nil {
			b.logger.Error("batch download failed", zap.Int64("admin_id", sender.ID), zap.Error(err))
			return c.Send("❌ Could not download the file. Send it again.")
		}
		reply, menu, err := b.svc.HandleItemsFile(sender.ID, st, content)
		if err != nil {
			b.logger.Error("batch ingestion failed", zap.Int64("admin_id", sender.ID), zap.Error(err))
			return c.Send("❌ Something went wrong. Try again.")
		}
		return b.respond(c, reply, menu)
	case AwaitingNewImage:
		return c.Send("That is a file. Send the new image as a photo, or 'cancel'.")
	case AwaitingBroadcastMessage:
		return b.startMessageBroadcast(c)
	default:
		return nil
	}
}

func (b *Bot) downloadFile(file *tele.File) ([]byte, error) {
	rc, err := b.tb.File(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// respond edits the message behind a callback and sends a fresh message
// for dialogue replies.
func (b *Bot) respond(c tele.Context, text string, menu *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if menu != nil {
			return c.EditOrSend(text, menu)
		}
		return c.EditOrSend(text)
	}
	if menu != nil {
		return c.Send(text, menu)
	}
	return c.Send(text)
}

// ── broadcasts ────────────────────────────────────────────────────────

func (b *Bot) startMessageBroadcast(c tele.Context) error {
	sender := c.Sender()
	b.svc.sessions.Clear(sender.ID)
	msg := c.Message()
	go func() {
		sent, failed := b.broadcastCopy(msg)
		b.reportBroadcast(sender.ID, sent, failed)
	}()
	return c.Send("📣 Broadcasting...")
}

func (b *Bot) broadcastCopy(msg *tele.Message) (sent, failed int) {
	return b.broadcast(func(to *tele.User) error {
		_, err := b.tb.Copy(to, msg)
		return err
	})
}

func (b *Bot) broadcastText(text string) (sent, failed int) {
	return b.broadcast(func(to *tele.User) error {
		_, err := b.tb.Send(to, text)
		return err
	})
}

// broadcast delivers to every reachable user with the configured delay
// between sends. Users that blocked the bot are flagged so later
// broadcasts skip them.
func (b *Bot) broadcast(send func(to *tele.User) error) (sent, failed int) {
	users, err := b.svc.users.GetActive()
	if err != nil {
		b.logger.Error("loading broadcast recipients failed", zap.Error(err))
		return 0, 0
	}
	for _, user := range users {
		err := send(&tele.User{ID: user.TelegramID})
		if err == nil {
			sent++
			time.Sleep(b.cfg.Shop.BroadcastDelay)
			continue
		}
		failed++
		if isUnreachable(err) {
			if err := b.svc.users.SetCanReceiveMessages(user.ID, false); err != nil {
				b.logger.Error("flagging unreachable user failed", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		} else {
			b.logger.Warn("broadcast delivery failed", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		}
		time.Sleep(b.cfg.Shop.BroadcastDelay)
	}
	return sent, failed
}

func isUnreachable(err error) bool {
	return errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrChatNotFound) ||
		errors.Is(err, tele.ErrNotStartedByUser)
}

func (b *Bot) reportBroadcast(adminID int64, sent, failed int) {
	if _, err := b.tb.Send(&tele.User{ID: adminID}, fmt.Sprintf("📣 Broadcast finished: %d delivered, %d failed.", sent, failed)); err != nil {
		b.logger.Error("broadcast report failed", zap.Error(err))
	}
}
