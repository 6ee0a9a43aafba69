package store

import "context"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Predicate selects records during a List call.
type Predicate[T Entity] func(T) bool

// Query describes a filtered page. Filters run in order over the full
// collection; pagination slices the filtered result.
type Query[T Entity] struct {
	Filters []Predicate[T]
	Page    int
	Limit   int
}

// Where appends a filter and returns the query for chaining.
func (q Query[T]) Where(p Predicate[T]) Query[T] {
	q.Filters = append(q.Filters, p)
	return q
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type Page[T Entity] struct {
	Items []T
	Pagination
}

// Normalize clamps page and limit to their allowed ranges.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Filter keeps the records for which every predicate holds, preserving order.
func Filter[T Entity](recs []T, preds ...Predicate[T]) []T {
	for _, p := range preds {
		if p == nil {
			continue
		}
		kept := recs[:0:0]
		for _, r := range recs {
			if p(r) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	return recs
}

// List runs q against everything r holds. Indexing can be added behind Reader
// later without changing callers.
func List[T Entity](ctx context.Context, r Reader[T], q Query[T]) (Page[T], error) {
	recs, err := r.All(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	matched := Filter(recs, q.Filters...)

	page, limit := Normalize(q.Page, q.Limit)
	total := len(matched)
	pages := (total + limit - 1) / limit

	// Past the last page the product (page-1)*limit can overflow.
	start := total
	if page <= pages {
		start = (page - 1) * limit
	}
	end := min(start+limit, total)

	items := make([]T, end-start)
	copy(items, matched[start:end])
	return Page[T]{
		Items: items,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}
