package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultUser      ResultType = "user"
	ResultComplaint ResultType = "complaint"
	ResultPage      ResultType = "page"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	Status  string     `json:"status,omitempty"`
}

// Query describes a cross-resource search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// UserRecord is the data we index for a marketplace user.
type UserRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ComplaintRecord is the data we index for a complaint.
type ComplaintRecord struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	UserName string `json:"userName"`
	Status   string `json:"status"`
}

// PageRecord is the data we index for a content page.
type PageRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Body   string `json:"body"`
	Status string `json:"status"`
}
