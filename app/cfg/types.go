package cfg

import "time"

type Cfg struct {
	// Source and destination
	WebhookURL     string
	NitterInstance string
	BirdUser       string

	// Polling
	Interval     time.Duration
	Backoff      time.Duration
	FetchTimeout time.Duration
	UserAgent    string

	// Rendering
	Colour       int
	PublicDomain string

	// Media lookup
	LookupURL  string
	LookupRate float64
	MediaHost  string

	// Storage
	DBPath string

	// Application metadata
	HTTPAddr string
	Timezone string
	Debug    bool
	Version  string
}

// BirdTag is the watched handle as it appears in feed author fields.
func (c *Cfg) BirdTag() string {
	return "@" + c.BirdUser
}

// RSSURL is the mirror's feed URL for the watched account.
func (c *Cfg) RSSURL() string {
	return c.NitterInstance + "/" + c.BirdUser + "/rss"
}
