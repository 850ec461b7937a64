// Package paginate partitions slices into fixed-size contiguous pages.
package paginate

// Page is one window of the paginated sequence. Items aliases the
// source slice; no elements are copied.
type Page[T any] struct {
	Items []T
}

// Size returns the number of items on the page.
func (p Page[T]) Size() int {
	return len(p.Items)
}

// Paginate splits items into consecutive pages of pageSize elements;
// the last page may be shorter. A non-positive pageSize yields no
// pages.
func Paginate[T any](items []T, pageSize int) []Page[T] {
	if pageSize <= 0 || len(items) == 0 {
		return nil
	}
	pages := make([]Page[T], 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, Page[T]{Items: items[start:end]})
	}
	return pages
}
