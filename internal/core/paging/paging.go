// Package paging slices ordered collections into fixed-size pages for the
// listing views. It is pure; callers decide how to react to out-of-range
// requests.
package paging

import "strconv"

// PageSize is the fixed number of items per listing page.
const PageSize = 5

// Page is one rendered page of an ordered collection.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
}

// TotalPages returns the page count for n items: ceil(n/PageSize) with a
// floor of 1, so an empty collection still has exactly one page.
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the requested 1-based page of items. ok is false when the
// page is out of range; the caller must redirect to page 1 of the same
// listing instead of rendering anything.
func Paginate[T any](items []T, page int) (Page[T], bool) {
	total := TotalPages(len(items))
	if page < 1 || page > total {
		return Page[T]{}, false
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{Items: items[start:end], Number: page, TotalPages: total}, true
}

// ParsePage interprets a raw ?page= query value. Missing input defaults to
// page 1 silently; input that is not an integer also falls back to page 1 and
// is reported so the caller can flash a corrective notice.
func ParsePage(raw string) (page int, ok bool) {
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1, false
	}
	return n, true
}
