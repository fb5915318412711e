// Package navigation implements the compact callback tokens every admin
// screen rides on. A token packs to "prefix:field:field:..." with bounded
// integer/boolean fields; unpacking is fail-closed: anything that does not
// match the screen's exact schema yields ErrDecode and no action is taken.
package navigation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nalyk/shopbot/internal/wallet"
)

// ErrDecode marks a malformed or truncated callback token. Handlers catch
// it and fall back to a safe default screen.
var ErrDecode = errors.New("malformed callback token")

const (
	PrefixAdminMenu    = "admin"
	PrefixInventory    = "inv"
	PrefixUserMgmt     = "umgmt"
	PrefixStatistics   = "stats"
	PrefixWallet       = "wallet"
	PrefixAnnouncement = "announce"
)

// Prefix returns the screen discriminator of a packed token, or "" when the
// token has none.
func Prefix(data string) string {
	prefix, _, ok := strings.Cut(data, ":")
	if !ok {
		return ""
	}
	return prefix
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrDecode, s)
	}
	return n, nil
}

func parseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrDecode, s)
	}
	return n, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("%w: %q is not a flag", ErrDecode, s)
}

func packBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func splitFields(data, prefix string, n int) ([]string, error) {
	parts := strings.Split(data, ":")
	if len(parts) != n+1 {
		return nil, fmt.Errorf("%w: expected %d fields for %q, got %d", ErrDecode, n, prefix, len(parts)-1)
	}
	if parts[0] != prefix {
		return nil, fmt.Errorf("%w: token prefix %q is not %q", ErrDecode, parts[0], prefix)
	}
	return parts[1:], nil
}

// ── Admin root menu ───────────────────────────────────────────────────

// AdminMenuCallback drives the admin root menu and its simple submenus.
// Action is the one free-text field the token schema allows.
type AdminMenuCallback struct {
	Level  int
	Action string
	Page   int
}

func NewAdminMenuCallback(level int) AdminMenuCallback {
	return AdminMenuCallback{Level: level}
}

func (c AdminMenuCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%s:%d", PrefixAdminMenu, c.Level, c.Action, c.Page)
}

func UnpackAdminMenu(data string) (AdminMenuCallback, error) {
	fields, err := splitFields(data, PrefixAdminMenu, 3)
	if err != nil {
		return AdminMenuCallback{}, err
	}
	var c AdminMenuCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return AdminMenuCallback{}, err
	}
	c.Action = fields[1]
	if c.Page, err = parseInt(fields[2]); err != nil {
		return AdminMenuCallback{}, err
	}
	return c, nil
}

// Back returns a copy pointing one level up.
func (c AdminMenuCallback) Back() AdminMenuCallback {
	c.Level--
	return c
}

func (c AdminMenuCallback) PageNumber() int { return c.Page }
func (c AdminMenuCallback) WithPage(page int) Pageable {
	c.Page = page
	return c
}

// ── Inventory ─────────────────────────────────────────────────────────

// InventoryAction selects the branch taken at the action-prompt level.
type InventoryAction int

const (
	ActionBrowse InventoryAction = iota
	ActionAddCategory
	ActionAddProduct
	ActionAddItems
	ActionEditPrice
	ActionEditDescription
	ActionEditImage
	ActionDelete
	ActionReactivate
)

// AddType discriminates the bulk item ingestion format.
type AddType int

const (
	AddTypeNone AddType = iota
	AddTypeJSON
	AddTypeText
)

// Inventory screen levels.
const (
	InvLevelMenu = iota
	InvLevelBrowser
	InvLevelProduct
	InvLevelAction
	InvLevelDeleteConfirm
	InvLevelDeleteExecute
)

// RootCategoryID is the sentinel for the tree root in tokens. Storage uses
// NULL; tokens cannot, so -1 stands in.
const RootCategoryID int64 = -1

// InventoryCallback carries the full inventory browser state: current
// node, pending action, ingestion format, page, archive scope and the
// destructive-action confirmation flag.
type InventoryCallback struct {
	Level        int
	CategoryID   int64
	Action       InventoryAction
	AddType      AddType
	Page         int
	ShowArchived bool
	Confirmation bool
}

func NewInventoryCallback(level int, categoryID int64) InventoryCallback {
	return InventoryCallback{Level: level, CategoryID: categoryID}
}

func (c InventoryCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%d:%s:%s",
		PrefixInventory, c.Level, c.CategoryID, c.Action, c.AddType, c.Page,
		packBool(c.ShowArchived), packBool(c.Confirmation))
}

func UnpackInventory(data string) (InventoryCallback, error) {
	fields, err := splitFields(data, PrefixInventory, 7)
	if err != nil {
		return InventoryCallback{}, err
	}
	var c InventoryCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return InventoryCallback{}, err
	}
	if c.CategoryID, err = parseInt64(fields[1]); err != nil {
		return InventoryCallback{}, err
	}
	action, err := parseInt(fields[2])
	if err != nil {
		return InventoryCallback{}, err
	}
	if action < int(ActionBrowse) || action > int(ActionReactivate) {
		return InventoryCallback{}, fmt.Errorf("%w: unknown inventory action %d", ErrDecode, action)
	}
	c.Action = InventoryAction(action)
	addType, err := parseInt(fields[3])
	if err != nil {
		return InventoryCallback{}, err
	}
	if addType < int(AddTypeNone) || addType > int(AddTypeText) {
		return InventoryCallback{}, fmt.Errorf("%w: unknown add type %d", ErrDecode, addType)
	}
	c.AddType = AddType(addType)
	if c.Page, err = parseInt(fields[4]); err != nil {
		return InventoryCallback{}, err
	}
	if c.ShowArchived, err = parseBool(fields[5]); err != nil {
		return InventoryCallback{}, err
	}
	if c.Confirmation, err = parseBool(fields[6]); err != nil {
		return InventoryCallback{}, err
	}
	return c, nil
}

// Back returns a copy pointing one level up, all other fields preserved.
func (c InventoryCallback) Back() InventoryCallback {
	c.Level--
	return c
}

// BackTo returns a copy pointing at an explicit level.
func (c InventoryCallback) BackTo(level int) InventoryCallback {
	c.Level = level
	return c
}

func (c InventoryCallback) PageNumber() int { return c.Page }
func (c InventoryCallback) WithPage(page int) Pageable {
	c.Page = page
	return c
}

// ── User management / finance ─────────────────────────────────────────

// UserMgmtOperation selects the credit or refund branch.
type UserMgmtOperation int

const (
	OpNone UserMgmtOperation = iota
	OpRefund
	OpAddBalance
	OpReduceBalance
)

// UserMgmtCallback drives the credit-management and refund screens.
// BuyID is -1 until a sale record has been picked.
type UserMgmtCallback struct {
	Level        int
	Operation    UserMgmtOperation
	Page         int
	Confirmation bool
	BuyID        int64
}

func NewUserMgmtCallback(level int) UserMgmtCallback {
	return UserMgmtCallback{Level: level, BuyID: -1}
}

func (c UserMgmtCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%d:%d:%s:%d",
		PrefixUserMgmt, c.Level, c.Operation, c.Page, packBool(c.Confirmation), c.BuyID)
}

func UnpackUserMgmt(data string) (UserMgmtCallback, error) {
	fields, err := splitFields(data, PrefixUserMgmt, 5)
	if err != nil {
		return UserMgmtCallback{}, err
	}
	var c UserMgmtCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return UserMgmtCallback{}, err
	}
	op, err := parseInt(fields[1])
	if err != nil {
		return UserMgmtCallback{}, err
	}
	if op < int(OpNone) || op > int(OpReduceBalance) {
		return UserMgmtCallback{}, fmt.Errorf("%w: unknown operation %d", ErrDecode, op)
	}
	c.Operation = UserMgmtOperation(op)
	if c.Page, err = parseInt(fields[2]); err != nil {
		return UserMgmtCallback{}, err
	}
	if c.Confirmation, err = parseBool(fields[3]); err != nil {
		return UserMgmtCallback{}, err
	}
	if c.BuyID, err = parseInt64(fields[4]); err != nil {
		return UserMgmtCallback{}, err
	}
	return c, nil
}

func (c UserMgmtCallback) Back() UserMgmtCallback {
	c.Level--
	return c
}

func (c UserMgmtCallback) BackTo(level int) UserMgmtCallback {
	c.Level = level
	return c
}

func (c UserMgmtCallback) PageNumber() int { return c.Page }
func (c UserMgmtCallback) WithPage(page int) Pageable {
	c.Page = page
	return c
}

// ── Statistics ────────────────────────────────────────────────────────

// StatsEntity selects which aggregate the statistics screen shows.
type StatsEntity int

const (
	StatsNone StatsEntity = iota
	StatsUsers
	StatsBuys
	StatsDeposits
)

// Timedelta values are day counts; zero means "not chosen yet".
const (
	TimedeltaDay   = 1
	TimedeltaWeek  = 7
	TimedeltaMonth = 30
)

// StatsCallback drives the read-only statistics screens.
type StatsCallback struct {
	Level     int
	Entity    StatsEntity
	Timedelta int
	Page      int
}

func NewStatsCallback(level int) StatsCallback {
	return StatsCallback{Level: level}
}

func (c StatsCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", PrefixStatistics, c.Level, c.Entity, c.Timedelta, c.Page)
}

func UnpackStats(data string) (StatsCallback, error) {
	fields, err := splitFields(data, PrefixStatistics, 4)
	if err != nil {
		return StatsCallback{}, err
	}
	var c StatsCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return StatsCallback{}, err
	}
	entity, err := parseInt(fields[1])
	if err != nil {
		return StatsCallback{}, err
	}
	if entity < int(StatsNone) || entity > int(StatsDeposits) {
		return StatsCallback{}, fmt.Errorf("%w: unknown statistics entity %d", ErrDecode, entity)
	}
	c.Entity = StatsEntity(entity)
	if c.Timedelta, err = parseInt(fields[2]); err != nil {
		return StatsCallback{}, err
	}
	switch c.Timedelta {
	case 0, TimedeltaDay, TimedeltaWeek, TimedeltaMonth:
	default:
		return StatsCallback{}, fmt.Errorf("%w: unknown timedelta %d", ErrDecode, c.Timedelta)
	}
	if c.Page, err = parseInt(fields[3]); err != nil {
		return StatsCallback{}, err
	}
	return c, nil
}

func (c StatsCallback) Back() StatsCallback {
	c.Level--
	return c
}

func (c StatsCallback) BackTo(level int) StatsCallback {
	c.Level = level
	return c
}

func (c StatsCallback) PageNumber() int { return c.Page }
func (c StatsCallback) WithPage(page int) Pageable {
	c.Page = page
	return c
}

// ── Wallet ────────────────────────────────────────────────────────────

// WalletCallback drives the withdrawal flow. Currency is empty until one
// has been chosen.
type WalletCallback struct {
	Level    int
	Currency wallet.Currency
}

func NewWalletCallback(level int) WalletCallback {
	return WalletCallback{Level: level}
}

func (c WalletCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%s", PrefixWallet, c.Level, c.Currency)
}

func UnpackWallet(data string) (WalletCallback, error) {
	fields, err := splitFields(data, PrefixWallet, 2)
	if err != nil {
		return WalletCallback{}, err
	}
	var c WalletCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return WalletCallback{}, err
	}
	if fields[1] != "" {
		cur := wallet.Currency(fields[1])
		if !cur.Valid() {
			return WalletCallback{}, fmt.Errorf("%w: unknown currency %q", ErrDecode, fields[1])
		}
		c.Currency = cur
	}
	return c, nil
}

func (c WalletCallback) Back() WalletCallback {
	c.Level--
	return c
}

// ── Announcements ─────────────────────────────────────────────────────

// AnnouncementType selects what a broadcast contains.
type AnnouncementType int

const (
	AnnouncementNone AnnouncementType = iota
	AnnouncementRestocking
	AnnouncementCurrentStock
	AnnouncementFromMessage
)

// AnnouncementCallback drives the broadcast menu.
type AnnouncementCallback struct {
	Level int
	Type  AnnouncementType
}

func NewAnnouncementCallback(level int) AnnouncementCallback {
	return AnnouncementCallback{Level: level}
}

func (c AnnouncementCallback) Pack() string {
	return fmt.Sprintf("%s:%d:%d", PrefixAnnouncement, c.Level, c.Type)
}

func UnpackAnnouncement(data string) (AnnouncementCallback, error) {
	fields, err := splitFields(data, PrefixAnnouncement, 2)
	if err != nil {
		return AnnouncementCallback{}, err
	}
	var c AnnouncementCallback
	if c.Level, err = parseInt(fields[0]); err != nil {
		return AnnouncementCallback{}, err
	}
	typ, err := parseInt(fields[1])
	if err != nil {
		return AnnouncementCallback{}, err
	}
	if typ < int(AnnouncementNone) || typ > int(AnnouncementFromMessage) {
		return AnnouncementCallback{}, fmt.Errorf("%w: unknown announcement type %d", ErrDecode, typ)
	}
	c.Type = AnnouncementType(typ)
	return c, nil
}

func (c AnnouncementCallback) Back() AnnouncementCallback {
	c.Level--
	return c
}

// BackTo returns a copy pointing at an explicit level.
func (c AnnouncementCallback) BackTo(level int) AnnouncementCallback {
	c.Level = level
	return c
}
