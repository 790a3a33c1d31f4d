// Package pagination slices ordered result sets into fixed-size pages.
//
// Page numbers are 1-based. Requests below the first page or beyond the last
// page are clamped rather than rejected, and an empty result set still has a
// single (empty) first page.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultPerPage is the feed page size.
const DefaultPerPage = 10

// Window describes one page of an ordered result set.
type Window struct {
	Number   int `json:"page"`
	NumPages int `json:"num_pages"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
}

// NewWindow computes the page window for total items, clamping requested into
// [1, NumPages].
func NewWindow(total, perPage, requested int) Window {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
	}
}

// Offset is the index of the first item on the page.
func (w Window) Offset() int {
	return (w.Number - 1) * w.PerPage
}

// Limit is the maximum number of items on the page.
func (w Window) Limit() int {
	return w.PerPage
}

// Bounds returns the half-open range [start, end) of the page.
func (w Window) Bounds() (int, int) {
	start := w.Offset()
	if start > w.Total {
		start = w.Total
	}
	end := start + w.PerPage
	if end > w.Total {
		end = w.Total
	}
	return start, end
}

func (w Window) HasPrevious() bool { return w.Number > 1 }
func (w Window) HasNext() bool     { return w.Number < w.NumPages }
func (w Window) PreviousNumber() int {
	if !w.HasPrevious() {
		return w.Number
	}
	return w.Number - 1
}
func (w Window) NextNumber() int {
	if !w.HasNext() {
		return w.Number
	}
	return w.Number + 1
}

// Numbers lists every page number, for rendering page links.
func (w Window) Numbers() []int {
	numbers := make([]int, w.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

// Page is one window of items together with its position.
type Page[T any] struct {
	Window
	Items []T `json:"items"`
}

// Len returns the number of items on the page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// NewPage wraps already-sliced items in a page.
func NewPage[T any](w Window, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Window: w, Items: items}
}

// Paginate slices items into the requested page.
func Paginate[T any](items []T, perPage, requested int) *Page[T] {
	w := NewWindow(len(items), perPage, requested)
	start, end := w.Bounds()
	return NewPage(w, items[start:end])
}

// ParseNumber reads a page query parameter. Anything other than a positive
// integer selects the first page.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
