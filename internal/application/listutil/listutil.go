// Package listutil parses list-view query parameters and pages in-memory slices.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort directions
const (
	Asc  = "asc"
	Desc = "desc"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// Params carries the page, sort and filter state of one list view.
type Params struct {
	Page    int    // 1-indexed
	PerPage int    // one of PerPageOptions
	Sort    string // an allowed column, or "" for the view's default order
	Dir     string // Asc or Desc
	Search  string // trimmed free text from ?q=
	Filters map[string]string

	query url.Values
}

// Parse reads page, per_page, sort, dir, q and the named filters from q.
// Unknown sort columns and filter keys are dropped.
// POST: Page >= 1; PerPage is one of PerPageOptions; Dir is Asc or Desc
func Parse(q url.Values, sortColumns, filterKeys []string) Params {
	p := Params{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
		query:   q,
	}

	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if !contains(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}

	if s := q.Get("sort"); contains(sortColumns, s) {
		p.Sort = s
	}
	p.Dir = Asc
	if q.Get("dir") == Desc {
		p.Dir = Desc
	}

	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

// Matches reports whether text contains the search term, ignoring case.
// An empty search matches everything.
func (p Params) Matches(text ...string) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, t := range text {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int

	query url.Values
}

// Window returns the slice of items on the requested page and its metadata.
// A page past the end is clamped to the last page.
// POST: len(result) <= PerPage
func Window[T any](items []T, p Params) ([]T, PageInfo) {
	info := NewPageInfo(p.Page, p.PerPage, len(items))
	info.query = p.query
	start := (info.Page - 1) * info.PerPage
	end := min(start+info.PerPage, len(items))
	return items[start:end], info
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: 1 <= Page <= TotalPages; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max(1, (total+perPage-1)/perPage)
	page = min(max(page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// StartRow returns the 1-indexed first row on the page, or 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// EndRow returns the 1-indexed last row on the page.
func (p PageInfo) EndRow() int {
	return min(p.Page*p.PerPage, p.Total)
}

// PageNumbers returns at most 5 page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(1, p.Page-maxButtons/2)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(1, end-maxButtons+1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether the list spans more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Link returns the query string for page n, keeping the other list parameters.
func (p PageInfo) Link(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
