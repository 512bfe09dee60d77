package feed

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var publishedLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
}

type Normalizer struct {
	birdTag      string
	mirrorDomain string
	publicDomain string
	quotePattern *regexp.Regexp
}

// NewNormalizer builds a normalizer for the watched handle. mirror is the
// mirror's base URL; its host is rewritten to publicDomain in post text.
func NewNormalizer(birdUser, mirror, publicDomain string) *Normalizer {
	return &Normalizer{
		birdTag:      "@" + strings.TrimPrefix(birdUser, "@"),
		mirrorDomain: StripScheme(mirror),
		publicDomain: publicDomain,
		quotePattern: regexp.MustCompile(`https://` + regexp.QuoteMeta(publicDomain) + `/([A-Za-z0-9_]+)/status/(\d+)`),
	}
}

func (n *Normalizer) Run(entry Entry) (*Post, error) {
	id := ExtractID(cmp.Or(entry.GUID, entry.Link))
	if id == "" {
		return nil, fmt.Errorf("%w: no identifier in %q", ErrSkip, entry.GUID)
	}

	publishedAt, err := parsePublished(entry.Published)
	if err != nil {
		return nil, fmt.Errorf("%w: post %s: %v", ErrSkip, id, err)
	}

	content, err := HTMLToMarkdown(entry.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: post %s: %v", ErrSkip, id, err)
	}

	if n.mirrorDomain != "" {
		content = strings.ReplaceAll(content, n.mirrorDomain, n.publicDomain)
	}
	content = norm.NFC.String(content)

	post := &Post{
		ID:          id,
		PublishedAt: publishedAt,
		Content:     content,
		Author:      cmp.Or(strings.TrimSpace(entry.Author), UnknownAuthor),
		Description: entry.Description,
	}

	if match := n.quotePattern.FindStringSubmatch(content); match != nil {
		post.QuoteID = match[2]
	}

	post.kind = n.classify(post)

	return post, nil
}

func (n *Normalizer) classify(post *Post) Kind {
	switch {
	case post.QuoteID != "":
		return KindQuote
	case post.Author != n.birdTag:
		return KindRetweet
	default:
		return KindOriginal
	}
}

// ExtractID returns the last path segment of a feed identifier, cut at the
// first '#'.
func ExtractID(guid string) string {
	guid = strings.TrimSpace(guid)
	if i := strings.LastIndex(guid, "/"); i >= 0 {
		guid = guid[i+1:]
	}
	id, _, _ := strings.Cut(guid, "#")
	return id
}

// StripScheme removes a leading http:// or https:// and any trailing slash.
func StripScheme(rawURL string) string {
	rawURL = strings.TrimPrefix(rawURL, "https://")
	rawURL = strings.TrimPrefix(rawURL, "http://")
	return strings.TrimRight(rawURL, "/")
}

func parsePublished(published string) (time.Time, error) {
	published = strings.TrimSpace(published)
	if published == "" {
		return time.Time{}, fmt.Errorf("missing published timestamp")
	}

	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, published); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable published timestamp %q", published)
}

// HTMLToMarkdown flattens an HTML fragment to text, keeping anchors as
// [text](href) and line breaks as newlines.
func HTMLToMarkdown(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := a.Text()
		if href, ok := a.Attr("href"); ok {
			text = "[" + text + "](" + href + ")"
		}
		a.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: text})
	})

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})

	return doc.Text(), nil
}
