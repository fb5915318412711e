package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func pages(n int64) PageCountFunc {
	return func() (int64, error) { return n, nil }
}

func TestPaginationRowFirstPage(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)

	row := PaginationRow(menu, cb, pages(3), nil)
	require.Len(t, row, 1)
	assert.Equal(t, "➡️", row[0].Text)

	next, err := UnpackInventory(row[0].Unique)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Page)
}

func TestPaginationRowMiddlePage(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)
	cb.Page = 1

	row := PaginationRow(menu, cb, pages(3), nil)
	require.Len(t, row, 2)
	assert.Equal(t, "⬅️", row[0].Text)
	assert.Equal(t, "➡️", row[1].Text)
}

func TestPaginationRowLastPage(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)
	cb.Page = 2

	row := PaginationRow(menu, cb, pages(3), nil)
	require.Len(t, row, 1)
	assert.Equal(t, "⬅️", row[0].Text)
}

func TestPaginationRowEmptyListing(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)

	row := PaginationRow(menu, cb, pages(0), nil)
	assert.Empty(t, row)
}

func TestPaginationRowCountFailure(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)
	cb.Page = 1

	row := PaginationRow(menu, cb, func() (int64, error) {
		return 0, assert.AnError
	}, nil)
	assert.Empty(t, row)
}

func TestPaginationRowBackButtonPassthrough(t *testing.T) {
	menu := &tele.ReplyMarkup{}
	cb := NewInventoryCallback(InvLevelBrowser, RootCategoryID)
	back := menu.Data("⬅️ Back", NewInventoryCallback(InvLevelMenu, RootCategoryID).Pack())

	row := PaginationRow(menu, cb, pages(0), &back)
	require.Len(t, row, 1)
	assert.Equal(t, "⬅️ Back", row[0].Text)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, int64(0), PageCount(0, 10))
	assert.Equal(t, int64(1), PageCount(1, 10))
	assert.Equal(t, int64(1), PageCount(10, 10))
	assert.Equal(t, int64(2), PageCount(11, 10))
	assert.Equal(t, int64(0), PageCount(5, 0))
}
