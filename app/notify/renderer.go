package notify

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/lysyi3m/birdwatcher/app/feed"
)

const DefaultUsername = "birdwatcher"

type Renderer struct {
	birdUser     string
	publicDomain string
	colour       int
}

func NewRenderer(birdUser, publicDomain string, colour int) *Renderer {
	return &Renderer{
		birdUser:     strings.TrimPrefix(birdUser, "@"),
		publicDomain: publicDomain,
		colour:       colour,
	}
}

func (r *Renderer) Run(post *feed.Post, channel Channel) Payload {
	postURL := r.PostURL(post)
	media := post.MediaURLs

	description := post.Content
	if len(media) > 0 && IsVideo(media[0]) {
		description += fmt.Sprintf("\n\n**📼 [View Video](%s)**", media[0])
	}

	colour := r.colour
	primary := Embed{
		Author:      &EmbedAuthor{Name: r.Headline(post)},
		Description: description,
		Color:       &colour,
		Timestamp:   post.PublishedAt.UTC().Format("2006-01-02T15:04:05Z"),
		URL:         postURL,
	}

	embeds := []Embed{primary}
	if len(media) == 1 && !IsVideo(media[0]) {
		embeds[0].Image = &EmbedImage{URL: media[0]}
	} else {
		for _, mediaURL := range media[:min(len(media), MaxEmbeds)] {
			if IsVideo(mediaURL) {
				continue
			}
			embeds = append(embeds, Embed{
				Image: &EmbedImage{URL: mediaURL},
				URL:   postURL,
			})
		}
	}

	if len(embeds) > MaxEmbeds {
		embeds = embeds[:MaxEmbeds]
	}

	return Payload{
		Content:   fmt.Sprintf("[Open tweet](<%s>)", postURL),
		Username:  r.Username(channel.Title),
		AvatarURL: channel.AvatarURL,
		Embeds:    embeds,
	}
}

// PostURL is the canonical public URL of post, with trailing slash.
func (r *Renderer) PostURL(post *feed.Post) string {
	user := strings.TrimPrefix(post.Author, "@")
	if post.Author == feed.UnknownAuthor || user == "" {
		user = r.birdUser
	}
	return fmt.Sprintf("https://%s/%s/status/%s/", r.publicDomain, user, post.ID)
}

func (r *Renderer) Headline(post *feed.Post) string {
	tag := "@" + r.birdUser
	switch post.Kind() {
	case feed.KindQuote:
		return tag + " quoted a tweet"
	case feed.KindRetweet:
		return fmt.Sprintf("%s retweeted %s's tweet", tag, post.Author)
	default:
		return tag + " tweeted"
	}
}

// Username strips the "/ @handle" suffix mirrors append to channel titles.
func (r *Renderer) Username(title string) string {
	name := strings.TrimSpace(strings.ReplaceAll(title, "/ @"+r.birdUser, ""))
	if name == "" {
		return DefaultUsername
	}
	return name
}

// IsVideo reports whether mediaURL points at an .mp4 file, ignoring any query.
func IsVideo(mediaURL string) bool {
	p := mediaURL
	if u, err := url.Parse(mediaURL); err == nil {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".mp4")
}
