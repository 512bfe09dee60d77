package notify

import (
	"errors"
	"fmt"
)

// MaxEmbeds is Discord's per-message embed limit.
const MaxEmbeds = 4

var ErrDelivery = errors.New("webhook delivery failed")

type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook delivery failed: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return ErrDelivery
}

// Channel is the feed-level identity a notification is posted under.
type Channel struct {
	Title     string
	AvatarURL string
}

type Payload struct {
	Content   string  `json:"content"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

type Embed struct {
	Author      *EmbedAuthor `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       *int         `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	URL         string       `json:"url,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

type EmbedAuthor struct {
	Name string `json:"name"`
}

type EmbedImage struct {
	URL string `json:"url"`
}
