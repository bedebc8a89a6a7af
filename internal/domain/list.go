package domain

// ListQuery describes a paginated, filtered, sorted listing over a collection.
// Filters are exact-match on attribute name; Search is a case-insensitive
// substring match over the collection's search fields.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Sort    string // "field" ascending, "-field" descending
	Filters map[string]any
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalize clamps page and limit into their accepted ranges and fills in
// defaultSort when no sort was requested.
func (q ListQuery) Normalize(defaultSort string) ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	return q
}

// Offset is the number of items skipped before the requested page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Pagination is returned alongside every list page.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
}

// NewPagination computes page counts for total items at the given page size.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	p := Pagination{CurrentPage: page, TotalPages: totalPages, TotalItems: total}
	if page < totalPages {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
