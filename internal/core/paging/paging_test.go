package paging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.n), "n=%d", tt.n)
	}
}

func TestPaginate_OutOfRangeSignalsRedirect(t *testing.T) {
	items := sequence(12) // 3 pages

	for _, page := range []int{0, -1, 4, 100} {
		_, ok := Paginate(items, page)
		assert.False(t, ok, "page %d must be out of range", page)
	}

	_, ok := Paginate(sequence(0), 2)
	assert.False(t, ok, "empty collection has exactly one page")

	_, ok = Paginate(sequence(0), 1)
	assert.True(t, ok, "page 1 of an empty collection is valid")
}

// Concatenating every page in order must reconstruct the collection exactly,
// with all pages full except possibly the last.
func TestPaginate_PagesReconstructCollection(t *testing.T) {
	for n := 0; n <= 23; n++ {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			items := sequence(n)
			total := TotalPages(n)

			var rebuilt []int
			for page := 1; page <= total; page++ {
				p, ok := Paginate(items, page)
				require.True(t, ok)
				assert.Equal(t, total, p.TotalPages)
				assert.Equal(t, page, p.Number)
				if page < total && n > 0 {
					assert.Len(t, p.Items, PageSize)
				}
				rebuilt = append(rebuilt, p.Items...)
			}

			assert.Len(t, rebuilt, n)
			if n > 0 {
				assert.Equal(t, items, rebuilt)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		page int
		ok   bool
	}{
		{"", 1, true},
		{"1", 1, true},
		{"3", 3, true},
		{"-2", -2, true}, // in range or not is Paginate's call
		{"abc", 1, false},
		{"1.5", 1, false},
	}
	for _, tt := range tests {
		page, ok := ParsePage(tt.raw)
		assert.Equal(t, tt.page, page, "raw %q", tt.raw)
		assert.Equal(t, tt.ok, ok, "raw %q", tt.raw)
	}
}
