package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scraper extracts images from the feed's own HTML, re-hosting mirror
// proxy paths (<mirror>/pic/media%2FX.jpg) on the media host.
type Scraper struct {
	mirror    string
	mediaHost string
}

func NewScraper(mirror, mediaHost string) *Scraper {
	if !strings.HasSuffix(mediaHost, "/") {
		mediaHost += "/"
	}
	return &Scraper{
		mirror:    strings.TrimRight(mirror, "/"),
		mediaHost: mediaHost,
	}
}

func (s *Scraper) Media(_ context.Context, _, _, description string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return nil, fmt.Errorf("failed to parse description: %w", err)
	}

	urls := []string{}
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src = strings.TrimSpace(src); src != "" {
			urls = append(urls, s.rehost(src))
		}
	})

	return urls, nil
}

func (s *Scraper) rehost(src string) string {
	var path string
	switch {
	case s.mirror != "" && strings.HasPrefix(src, s.mirror+"/pic/"):
		path = strings.TrimPrefix(src, s.mirror+"/pic/")
	case strings.HasPrefix(src, "/pic/"):
		path = strings.TrimPrefix(src, "/pic/")
	default:
		return src
	}

	path = strings.ReplaceAll(path, "%2F", "/")
	path = strings.TrimPrefix(path, "orig/")
	path = strings.TrimPrefix(path, "pbs.twimg.com/")
	path = strings.TrimPrefix(path, "media/")
	path, _, _ = strings.Cut(path, "?")

	return s.mediaHost + path + "?format=png"
}
