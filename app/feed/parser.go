package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
	mirror       string
}

// NewParser returns a parser for feeds served by the given mirror base URL.
func NewParser(mirror string) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		mirror:       strings.TrimRight(mirror, "/"),
	}
}

func (p *Parser) Run(data []byte) (*Document, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := &Document{
		Title: parsed.Title,
	}

	if parsed.Image != nil {
		doc.ImageURL = p.avatarURL(parsed.Image.URL)
	}

	doc.Entries = make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		doc.Entries = append(doc.Entries, Entry{
			GUID:        item.GUID,
			Link:        item.Link,
			Published:   item.Published,
			Description: cmp.Or(item.Description, item.Content),
			Author:      p.extractAuthor(item),
		})
	}

	return doc, nil
}

// avatarURL turns a mirror-proxied image URL back into its upstream form:
// <mirror>/pic/pbs.twimg.com%2Fprofile_images%2Fx.jpg -> https://pbs.twimg.com/profile_images/x.jpg
func (p *Parser) avatarURL(imageURL string) string {
	prefix := p.mirror + "/pic/"
	if p.mirror == "" || !strings.HasPrefix(imageURL, prefix) {
		return imageURL
	}
	path := strings.TrimPrefix(imageURL, prefix)
	return "https://" + strings.ReplaceAll(path, "%2F", "/")
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if creator = strings.TrimSpace(creator); creator != "" {
				return creator
			}
		}
	}

	if item.Author != nil {
		if author := p.formatAuthor(item.Author.Name, item.Author.Email); author != "" {
			return author
		}
	}

	for _, author := range item.Authors {
		if author != nil {
			if formatted := p.formatAuthor(author.Name, author.Email); formatted != "" {
				return formatted
			}
		}
	}

	return ""
}

func (p *Parser) formatAuthor(name, email string) string {
	return cmp.Or(strings.TrimSpace(name), strings.TrimSpace(email))
}
