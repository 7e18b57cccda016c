package pkg

import "strconv"

// PostsPerPage is the fixed page size of every post listing.
const PostsPerPage = 10

// Page is one slice of an ordered listing. Number is 1-indexed.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
	PerPage  int
}

// PageRequest resolves a raw ?page= value against a total count the way a
// forgiving paginator does: garbage means the first page, anything past the
// end means the last page.
type PageRequest struct {
	Number int
	Offset int
	Limit  int
}

func ResolvePage(raw string, total int64, perPage int) PageRequest {
	if perPage <= 0 {
		perPage = PostsPerPage
	}
	numPages := NumPages(total, perPage)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = 1
	}
	if n > numPages {
		n = numPages
	}
	return PageRequest{Number: n, Offset: (n - 1) * perPage, Limit: perPage}
}

// NumPages is never less than one; an empty listing has a single empty page.
func NumPages(total int64, perPage int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	return Page[T]{
		Items:    items,
		Number:   req.Number,
		NumPages: NumPages(total, req.Limit),
		Total:    total,
		PerPage:  req.Limit,
	}
}

func (p Page[T]) Len() int { return len(p.Items) }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) NextNumber() int { return p.Number + 1 }

func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// HasOtherPages is true when a pager widget should be shown.
func (p Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

// PageRange lists every page number, for the pager widget.
func (p Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
