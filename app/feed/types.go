package feed

import (
	"errors"
	"time"
)

var (
	ErrTimeout = errors.New("feed fetch timed out")
	ErrFetch   = errors.New("feed fetch failed")
	ErrParse   = errors.New("malformed feed document")
	ErrSkip    = errors.New("entry skipped")
)

// FetchError describes a non-timeout failure to retrieve the feed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return "feed fetch failed: " + e.URL + ": HTTP " + httpStatus(e.StatusCode)
	}
	return "feed fetch failed: " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// Document is a parsed feed: channel metadata plus entries in feed order.
type Document struct {
	Title    string
	ImageURL string
	Entries  []Entry
}

type Entry struct {
	GUID        string
	Link        string
	Published   string
	Description string
	Author      string
}

type Kind string

const (
	KindOriginal Kind = "original"
	KindRetweet  Kind = "retweet"
	KindQuote    Kind = "quote"
)

const UnknownAuthor = "Unknown"

type Post struct {
	ID          string
	PublishedAt time.Time
	Content     string
	MediaURLs   []string
	Author      string
	QuoteID     string

	// Description is the entry's raw HTML, kept for media scraping.
	Description string

	kind Kind
}

func (p *Post) Kind() Kind {
	return p.kind
}
