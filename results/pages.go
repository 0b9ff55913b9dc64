package results

import "github.com/mbolis/ankietio/model"

const PageSize = 20

// Ellipsis marks skipped pages in PageNumbers.
const Ellipsis = -1

func TotalPages(n, size int) int {
	if size <= 0 {
		size = PageSize
	}
	return (n + size - 1) / size
}

// Page returns the submissions on 1-based page.
func Page(subs []model.Submission, page, size int) []model.Submission {
	if size <= 0 {
		size = PageSize
	}
	start := (page - 1) * size
	if page < 1 || start >= len(subs) {
		return nil
	}
	end := start + size
	if end > len(subs) {
		end = len(subs)
	}
	return subs[start:end]
}

// PageNumbers is the pager window around current. Up to five pages are all
// listed; beyond that at most six entries are returned, with a single
// Ellipsis standing for the skipped range.
func PageNumbers(current, total int) []int {
	const maxVisible = 5
	if total <= maxVisible {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, total}
	}
}
