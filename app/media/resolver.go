package media

import (
	"context"
	"errors"
	"log/slog"
)

var ErrLookup = errors.New("media lookup failed")

// Source yields the media URLs of a post.
type Source interface {
	Media(ctx context.Context, author, postID, description string) ([]string, error)
}

// Resolver asks Primary first and falls back to Fallback only when Primary
// returns an error. An empty successful answer is final.
type Resolver struct {
	Primary  Source
	Fallback Source

	// OnFallback, when set, is called each time Fallback is used.
	OnFallback func(err error)
}

func NewResolver(primary, fallback Source) *Resolver {
	return &Resolver{
		Primary:  primary,
		Fallback: fallback,
	}
}

func (r *Resolver) Resolve(ctx context.Context, author, postID, description string) []string {
	urls, err := r.Primary.Media(ctx, author, postID, description)
	if err == nil {
		return nonNil(urls)
	}

	slog.Warn("Media lookup failed, scraping feed markup", "post_id", postID, "author", author, "error", err)
	if r.OnFallback != nil {
		r.OnFallback(err)
	}

	if r.Fallback == nil {
		return []string{}
	}

	urls, err = r.Fallback.Media(ctx, author, postID, description)
	if err != nil {
		slog.Error("Media scrape failed", "post_id", postID, "error", err)
		return []string{}
	}

	return nonNil(urls)
}

func nonNil(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
