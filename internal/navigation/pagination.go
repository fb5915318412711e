package navigation

import (
	tele "gopkg.in/telebot.v3"
)

// Pageable is any token that carries a zero-based page cursor.
type Pageable interface {
	PageNumber() int
	WithPage(page int) Pageable
	Pack() string
}

// PageCountFunc reports the total number of pages for a listing. It runs
// only when the pagination row is built, so expensive counts are deferred
// until actually needed.
type PageCountFunc func() (int64, error)

// PaginationRow builds the prev/next row for a listing screen. No prev
// button is rendered on page 0 and no next button on the last page; a zero
// or failed page count renders neither. The optional back button is passed
// through untouched.
func PaginationRow(menu *tele.ReplyMarkup, cb Pageable, totalPages PageCountFunc, back *tele.Btn) tele.Row {
	var row tele.Row

	pages, err := totalPages()
	if err != nil {
		pages = 0
	}

	page := cb.PageNumber()
	if page > 0 && pages > 0 {
		row = append(row, menu.Data("⬅️", cb.WithPage(page-1).Pack()))
	}
	if int64(page) < pages-1 {
		row = append(row, menu.Data("➡️", cb.WithPage(page+1).Pack()))
	}
	if back != nil {
		row = append(row, *back)
	}
	return row
}

// PageCount converts a row count into a page count for a given page size.
func PageCount(total int64, pageSize int) int64 {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
