package collection

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	// FilterAll is the sentinel filter value that matches every entity.
	FilterAll = "all"

	DefaultPageSize = 10
)

// Params holds one panel's query intent. The setters carry the page-reset
// rules: a new search, a new filter value, or a new page size discards the
// stale page position, while re-sorting keeps it.
type Params struct {
	search   string
	filters  map[string]string
	sortKey  string
	sortDir  string
	page     int
	pageSize int
}

func NewParams() Params {
	return Params{
		filters:  map[string]string{},
		sortDir:  SortAsc,
		pageSize: DefaultPageSize,
	}
}

func (p *Params) SetSearch(text string) {
	text = strings.TrimSpace(text)
	if text == p.search {
		return
	}
	p.search = text
	p.page = 0
}

// SetFilter sets one filter dimension. An empty value or FilterAll clears
// the dimension. Changing a filter resets the page.
func (p *Params) SetFilter(dimension, value string) {
	if value == FilterAll {
		value = ""
	}
	if p.filters == nil {
		p.filters = map[string]string{}
	}
	if p.filters[dimension] == value {
		return
	}
	if value == "" {
		delete(p.filters, dimension)
	} else {
		p.filters[dimension] = value
	}
	p.page = 0
}

// SetSort changes the sort key and direction. The page is deliberately not
// reset: re-sorting the same result set keeps the user's position.
func (p *Params) SetSort(key, direction string) {
	if direction != SortDesc {
		direction = SortAsc
	}
	p.sortKey = key
	p.sortDir = direction
}

func (p *Params) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	p.page = page
}

func (p *Params) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size == p.pageSize {
		return
	}
	p.pageSize = size
	p.page = 0
}

func (p Params) Search() string   { return p.search }
func (p Params) SortKey() string  { return p.sortKey }
func (p Params) SortDir() string  { return p.sortDir }
func (p Params) Page() int        { return p.page }
func (p Params) PageSize() int    { return p.pageSize }

func (p Params) Filter(dimension string) string {
	return p.filters[dimension]
}

func (p Params) Filters() map[string]string {
	out := make(map[string]string, len(p.filters))
	for dim, value := range p.filters {
		out[dim] = value
	}
	return out
}

type paramsJSON struct {
	Search   string            `json:"search,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	SortKey  string            `json:"sortKey,omitempty"`
	SortDir  string            `json:"sortDir,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(paramsJSON{
		Search:   p.search,
		Filters:  p.filters,
		SortKey:  p.sortKey,
		SortDir:  p.sortDir,
		Page:     p.page,
		PageSize: p.pageSize,
	})
}

func (p *Params) UnmarshalJSON(data []byte) error {
	var raw paramsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.SortDir != "" && raw.SortDir != SortAsc && raw.SortDir != SortDesc {
		return fmt.Errorf("invalid sort direction %q", raw.SortDir)
	}
	restored := NewParams()
	restored.search = strings.TrimSpace(raw.Search)
	for dim, value := range raw.Filters {
		restored.SetFilter(dim, value)
	}
	if raw.SortDir != "" {
		restored.sortDir = raw.SortDir
	}
	restored.sortKey = raw.SortKey
	if raw.PageSize > 0 {
		restored.pageSize = raw.PageSize
	}
	if raw.Page > 0 {
		restored.page = raw.Page
	}
	*p = restored
	return nil
}
