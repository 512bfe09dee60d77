package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/birdwatcher/app/feed"
)

func normalizedPost(t *testing.T, author, description string) *feed.Post {
	t.Helper()

	normalizer := feed.NewNormalizer("bob", "https://nitter.example", "twitter.com")
	post, err := normalizer.Run(feed.Entry{
		GUID:        "https://nitter.example/bob/status/12345#m",
		Published:   "Mon, 03 Jul 2023 10:04:05 GMT",
		Description: description,
		Author:      author,
	})
	if err != nil {
		t.Fatalf("Failed to normalize post: %v", err)
	}
	return post
}

func TestRenderPrimaryEmbed(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 255)
	post := normalizedPost(t, "@bob", "<p>hello</p>")

	payload := renderer.Run(post, Channel{Title: "Bob / @bob", AvatarURL: "https://pbs.twimg.com/a.jpg"})

	if payload.Username != "Bob" {
		t.Errorf("Expected username 'Bob', got: %s", payload.Username)
	}
	if payload.AvatarURL != "https://pbs.twimg.com/a.jpg" {
		t.Errorf("Expected avatar URL, got: %s", payload.AvatarURL)
	}
	if payload.Content != "[Open tweet](<https://twitter.com/bob/status/12345/>)" {
		t.Errorf("Unexpected content: %s", payload.Content)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got: %d", len(payload.Embeds))
	}

	embed := payload.Embeds[0]
	if embed.Author == nil || embed.Author.Name != "@bob tweeted" {
		t.Errorf("Expected author '@bob tweeted', got: %+v", embed.Author)
	}
	if embed.Description != "hello" {
		t.Errorf("Expected description 'hello', got: %s", embed.Description)
	}
	if embed.Color == nil || *embed.Color != 255 {
		t.Errorf("Expected color 255, got: %v", embed.Color)
	}
	if embed.Timestamp != "2023-07-03T10:04:05Z" {
		t.Errorf("Expected UTC timestamp, got: %s", embed.Timestamp)
	}
	if embed.URL != "https://twitter.com/bob/status/12345/" {
		t.Errorf("Expected post URL, got: %s", embed.URL)
	}
	if embed.Image != nil {
		t.Errorf("Expected no image, got: %+v", embed.Image)
	}
}

func TestRenderHeadlines(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)

	tests := []struct {
		name        string
		author      string
		description string
		expected    string
	}{
		{"original", "@bob", "text", "@bob tweeted"},
		{"retweet", "@carol", "text", "@bob retweeted @carol's tweet"},
		{"quote", "@bob", "https://nitter.example/dave/status/9", "@bob quoted a tweet"},
		{"quote over retweet", "@carol", "https://nitter.example/dave/status/9", "@bob quoted a tweet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := normalizedPost(t, tt.author, tt.description)
			if got := renderer.Headline(post); got != tt.expected {
				t.Errorf("Expected %q, got: %q", tt.expected, got)
			}
		})
	}
}

func TestRenderSingleImage(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)
	post := normalizedPost(t, "@bob", "pic")
	post.MediaURLs = []string{"https://pbs.twimg.com/media/a.jpg"}

	payload := renderer.Run(post, Channel{Title: "Bob / @bob"})

	if len(payload.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got: %d", len(payload.Embeds))
	}
	if payload.Embeds[0].Image == nil || payload.Embeds[0].Image.URL != "https://pbs.twimg.com/media/a.jpg" {
		t.Errorf("Expected image on primary embed, got: %+v", payload.Embeds[0].Image)
	}
}

func TestRenderVideoCallout(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)
	post := normalizedPost(t, "@bob", "watch")
	post.MediaURLs = []string{"clip.mp4"}

	payload := renderer.Run(post, Channel{Title: "Bob / @bob"})

	if !strings.Contains(payload.Embeds[0].Description, "[View Video](clip.mp4)") {
		t.Errorf("Expected video callout, got: %s", payload.Embeds[0].Description)
	}
	if payload.Embeds[0].Image != nil {
		t.Errorf("Expected no image on primary embed, got: %+v", payload.Embeds[0].Image)
	}
	if len(payload.Embeds) != 1 {
		t.Errorf("Expected video to get no image embed, got %d embeds", len(payload.Embeds))
	}
}

func TestRenderVideoWithQuery(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)
	post := normalizedPost(t, "@bob", "watch")
	post.MediaURLs = []string{"https://video.twimg.com/ext_tw_video/1/pu/vid/720x1280/x.mp4?tag=12", "https://pbs.twimg.com/media/a.jpg"}

	payload := renderer.Run(post, Channel{})

	if !strings.Contains(payload.Embeds[0].Description, "View Video") {
		t.Errorf("Expected video callout, got: %s", payload.Embeds[0].Description)
	}
	if len(payload.Embeds) != 2 {
		t.Fatalf("Expected primary plus one image embed, got: %d", len(payload.Embeds))
	}
	if payload.Embeds[1].Image.URL != "https://pbs.twimg.com/media/a.jpg" {
		t.Errorf("Expected image embed, got: %+v", payload.Embeds[1].Image)
	}
	if payload.Embeds[1].URL != "https://twitter.com/bob/status/12345/" {
		t.Errorf("Expected image embed to link post, got: %s", payload.Embeds[1].URL)
	}
	if payload.Username != DefaultUsername {
		t.Errorf("Expected default username, got: %s", payload.Username)
	}
}

func TestRenderEmbedCap(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)
	post := normalizedPost(t, "@bob", "many")
	for i := 0; i < 6; i++ {
		post.MediaURLs = append(post.MediaURLs, "https://pbs.twimg.com/media/"+string(rune('a'+i))+".jpg")
	}

	payload := renderer.Run(post, Channel{Title: "Bob / @bob"})

	if len(payload.Embeds) > MaxEmbeds {
		t.Errorf("Expected at most %d embeds, got: %d", MaxEmbeds, len(payload.Embeds))
	}
	if payload.Embeds[0].Image != nil {
		t.Error("Expected multi-image post to keep primary embed image-free")
	}
	if payload.Embeds[1].Image.URL != "https://pbs.twimg.com/media/a.jpg" {
		t.Errorf("Expected images in order, got: %s", payload.Embeds[1].Image.URL)
	}
}

func TestIsVideo(t *testing.T) {
	tests := map[string]bool{
		"clip.mp4":                          true,
		"https://video.twimg.com/x.MP4":     true,
		"https://video.twimg.com/x.mp4?a=1": true,
		"https://pbs.twimg.com/media/a.jpg": false,
		"https://pbs.twimg.com/mp4/a.png":   false,
		"":                                  false,
	}

	for input, expected := range tests {
		if got := IsVideo(input); got != expected {
			t.Errorf("IsVideo(%q): expected %v, got %v", input, expected, got)
		}
	}
}

func TestRenderUnknownAuthorURL(t *testing.T) {
	renderer := NewRenderer("bob", "twitter.com", 0)
	post := &feed.Post{ID: "5", Author: feed.UnknownAuthor, PublishedAt: time.Unix(0, 0)}

	if got := renderer.PostURL(post); got != "https://twitter.com/bob/status/5/" {
		t.Errorf("Expected watched account URL, got: %s", got)
	}
}
