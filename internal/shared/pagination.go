package shared

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPageSize is applied when the client does not ask for one.
	DefaultPageSize = 10
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 100
)

// Page carries the requested page number and size for list endpoints.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads ?page= and ?page_size= from the request, clamping both.
func ParsePage(r *http.Request) Page {
	page := Page{Number: 1, Size: DefaultPageSize}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page.Number = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page.Size = n
			if page.Size > MaxPageSize {
				page.Size = MaxPageSize
			}
		}
	}
	return page
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Envelope is the wire format for paginated listings.
type Envelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// NewEnvelope builds the pagination envelope, deriving next/previous links
// from the request URL.
func NewEnvelope(r *http.Request, page Page, count int, results any) Envelope {
	env := Envelope{Count: count, Results: results}
	if page.Offset()+page.Size < count {
		env.Next = pageURL(r, page.Number+1, page.Size)
	}
	if page.Number > 1 {
		env.Previous = pageURL(r, page.Number-1, page.Size)
	}
	return env
}

func pageURL(r *http.Request, number, size int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	if size != DefaultPageSize {
		q.Set("page_size", strconv.Itoa(size))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
