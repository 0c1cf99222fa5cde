package v1

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/helixml/compset/infrastructure/api/jsonapi"
)

// Page size bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// page is a 1-indexed window over a list endpoint's results.
type page struct {
	number int
	size   int
}

// parsePage reads page and page_size. Non-numeric or non-positive values
// are rejected; sizes above MaxPageSize are clamped.
func parsePage(req *http.Request) (page, error) {
	number, err := queryInt(req, "page", 1)
	if err != nil {
		return page{}, err
	}
	if number < 1 {
		return page{}, validationError("page must be at least 1")
	}
	size, err := queryInt(req, "page_size", DefaultPageSize)
	if err != nil {
		return page{}, err
	}
	if size < 1 {
		return page{}, validationError("page_size must be at least 1")
	}
	return page{number: number, size: min(size, MaxPageSize)}, nil
}

func (p page) limit() int  { return p.size }
func (p page) offset() int { return (p.number - 1) * p.size }

func (p page) lastPage(total int64) int {
	return int((total + int64(p.size) - 1) / int64(p.size))
}

// annotate sets the paging meta and navigation links on a list document.
func (p page) annotate(doc *jsonapi.Document, reqURL *url.URL, total int64) {
	last := p.lastPage(total)
	doc.Meta = &jsonapi.Meta{
		"page":        p.number,
		"page_size":   p.size,
		"total_count": total,
		"total_pages": last,
	}

	link := func(n int) string {
		q := reqURL.Query()
		q.Set("page", strconv.Itoa(n))
		q.Set("page_size", strconv.Itoa(p.size))
		return reqURL.Path + "?" + q.Encode()
	}
	links := &jsonapi.Links{Self: link(p.number), First: link(1)}
	if last > 0 {
		links.Last = link(last)
	}
	if p.number > 1 {
		links.Prev = link(p.number - 1)
	}
	if p.number < last {
		links.Next = link(p.number + 1)
	}
	doc.Links = links
}
