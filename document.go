package waitfor

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jpalmerr/waitfor/internal/probe"
)

// DocumentSource supplies the current document markup on demand.
//
// A [DocumentQuery] invokes its source once per Count, so the query always
// observes the live document rather than a snapshot taken at construction.
// [FileSource] and [URLSource] cover the common cases.
type DocumentSource func() (io.Reader, error)

// DocumentQuery is a [NodeQuery] backed by CSS selector matching over an
// HTML document.
//
// On every Count the source is re-read and the markup re-parsed, so
// external mutations of the document are visible to the next trial. In
// keeping with the poller's permissive contract, a source error, a parse
// failure, or an invalid selector all count as zero matches rather than
// surfacing an error.
//
// Example:
//
//	query := waitfor.NewDocumentQuery(waitfor.URLSource("http://localhost:3000/", 0))
//	waitfor.NewNodePoller(query, "#app .ready").
//	    Done(func(p *waitfor.Poller, ok bool) { ... }).
//	    Start()
type DocumentQuery struct {
	source DocumentSource
}

// NewDocumentQuery creates a [DocumentQuery] reading markup from source.
// A nil source yields a query that always counts zero.
func NewDocumentQuery(source DocumentSource) *DocumentQuery {
	return &DocumentQuery{source: source}
}

// Count returns the number of elements in the current document matching
// selector, or zero when the document cannot be read or parsed.
func (q *DocumentQuery) Count(selector string) int {
	if q == nil || q.source == nil {
		return 0
	}
	r, err := q.source()
	if err != nil {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0
	}
	return doc.Find(selector).Length()
}

// FileSource returns a [DocumentSource] that re-reads the file at path on
// every invocation.
func FileSource(path string) DocumentSource {
	return func() (io.Reader, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// URLSource returns a [DocumentSource] that fetches url on every
// invocation. A timeout of zero uses the probe default (10s).
func URLSource(url string, timeout time.Duration) DocumentSource {
	client := probe.NewClient()
	return func() (io.Reader, error) {
		res := client.Do(context.Background(), probe.Request{URL: url, Timeout: timeout})
		if res.Err != nil {
			return nil, res.Err
		}
		return bytes.NewReader(res.Body), nil
	}
}
