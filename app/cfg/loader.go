package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Source and destination
	WebhookURL     string `long:"webhook-url" env:"WEBHOOK_URL" description:"Discord webhook URL (required)" required:"true"`
	NitterInstance string `long:"nitter-instance" env:"NITTER_INSTANCE" description:"Nitter mirror base URL, e.g. https://nitter.net (required)" required:"true"`
	BirdUser       string `long:"bird-user" env:"BIRD_USER" description:"Watched account handle without @ (required)" required:"true"`

	// Polling
	Interval     int    `long:"interval" env:"INTERVAL" default:"300" description:"Poll interval in seconds"`
	Backoff      int    `long:"backoff" env:"BACKOFF" default:"600" description:"Pause in seconds after a feed fetch timeout"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Feed fetch timeout in seconds"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`

	// Rendering
	Colour       int    `long:"colour" env:"COLOUR" default:"0" description:"Embed accent colour as integer"`
	PublicDomain string `long:"public-domain" env:"PUBLIC_DOMAIN" default:"twitter.com" description:"Canonical domain mirror links are rewritten to"`

	// Media lookup
	LookupURL  string  `long:"lookup-url" env:"LOOKUP_URL" default:"https://api.vxtwitter.com" description:"Media lookup service base URL"`
	LookupRate float64 `long:"lookup-rate" env:"LOOKUP_RATE" default:"1" description:"Media lookup requests per second"`
	MediaHost  string  `long:"media-host" env:"MEDIA_HOST" default:"https://pbs.twimg.com/media/" description:"Image host used when scraping media from the feed"`

	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"database/posts.db" description:"SQLite database path"`

	// Application metadata
	HTTPAddr string `long:"http-addr" env:"HTTP_ADDR" description:"Listen address for health and metrics endpoints (disabled when empty)"`
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads configuration from an optional .env file, the environment and
// args. It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		WebhookURL:     raw.WebhookURL,
		NitterInstance: strings.TrimRight(raw.NitterInstance, "/"),
		BirdUser:       strings.TrimPrefix(raw.BirdUser, "@"),
		Interval:       time.Duration(raw.Interval) * time.Second,
		Backoff:        time.Duration(raw.Backoff) * time.Second,
		FetchTimeout:   time.Duration(raw.FetchTimeout) * time.Second,
		UserAgent:      cmp.Or(raw.UserAgent, DefaultUserAgent),
		Colour:         raw.Colour,
		PublicDomain:   raw.PublicDomain,
		LookupURL:      strings.TrimRight(raw.LookupURL, "/"),
		LookupRate:     raw.LookupRate,
		MediaHost:      raw.MediaHost,
		DBPath:         raw.DBPath,
		HTTPAddr:       raw.HTTPAddr,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.WebhookURL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !strings.HasPrefix(cfg.NitterInstance, "http://") && !strings.HasPrefix(cfg.NitterInstance, "https://") {
		return fmt.Errorf("nitter instance must start with http:// or https://: %q", cfg.NitterInstance)
	}
	if cfg.BirdUser == "" {
		return fmt.Errorf("bird user is required")
	}

	positiveFields := map[string]time.Duration{
		"interval":      cfg.Interval,
		"backoff":       cfg.Backoff,
		"fetch timeout": cfg.FetchTimeout,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.LookupRate <= 0 {
		return fmt.Errorf("lookup rate must be positive")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
