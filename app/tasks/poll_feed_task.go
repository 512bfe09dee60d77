package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/birdwatcher/app/database"
	"github.com/lysyi3m/birdwatcher/app/feed"
	"github.com/lysyi3m/birdwatcher/app/metrics"
	"github.com/lysyi3m/birdwatcher/app/notify"
)

type CycleReport struct {
	Total            int `json:"total"`
	Skipped          int `json:"skipped"`
	Duplicates       int `json:"duplicates"`
	New              int `json:"new"`
	DeliveryFailures int `json:"delivery_failures"`
}

type PollFeedTask struct {
	Task
	FeedURL    string
	fetcher    FeedFetcher
	parser     *feed.Parser
	normalizer *feed.Normalizer
	resolver   MediaResolver
	notifier   Notifier
	postRepo   database.PostRepository
	setState   func(State)
	report     CycleReport
}

func NewPollFeedTask(feedName, feedURL string, fetcher FeedFetcher, parser *feed.Parser, normalizer *feed.Normalizer,
	resolver MediaResolver, notifier Notifier, postRepo database.PostRepository, setState func(State)) *PollFeedTask {
	if setState == nil {
		setState = func(State) {}
	}
	return &PollFeedTask{
		Task:       NewTask(TaskTypePollFeed, feedName),
		FeedURL:    feedURL,
		fetcher:    fetcher,
		parser:     parser,
		normalizer: normalizer,
		resolver:   resolver,
		notifier:   notifier,
		postRepo:   postRepo,
		setState:   setState,
	}
}

func (t *PollFeedTask) GetReport() CycleReport {
	return t.report
}

func (t *PollFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.setState(StateFetching)
	data, err := t.fetcher.Fetch(ctx, t.FeedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	t.setState(StateParsing)
	doc, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	slog.Info("Fetched entries from the RSS feed", "feed", t.FeedName, "count", len(doc.Entries))

	t.setState(StateNotifying)
	channel := notify.Channel{Title: doc.Title, AvatarURL: doc.ImageURL}
	t.report = CycleReport{Total: len(doc.Entries)}

	for _, entry := range doc.Entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.processEntry(ctx, entry, channel); err != nil {
			return err
		}
	}

	metrics.IncPosts(metrics.OutcomeNew, t.report.New)
	metrics.IncPosts(metrics.OutcomeDuplicate, t.report.Duplicates)
	metrics.IncPosts(metrics.OutcomeSkipped, t.report.Skipped)

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"id", t.GetID(),
		"duration", t.GetDuration(),
		"total", t.report.Total,
		"skipped", t.report.Skipped,
		"duplicates", t.report.Duplicates,
		"new", t.report.New,
		"delivery_failures", t.report.DeliveryFailures)

	return nil
}

// processEntry handles one feed entry. Only store failures are returned;
// everything else is logged and counted so later entries still run.
func (t *PollFeedTask) processEntry(ctx context.Context, entry feed.Entry, channel notify.Channel) error {
	post, err := t.normalizer.Run(entry)
	if err != nil {
		slog.Warn("Skipping feed entry", "feed", t.FeedName, "guid", entry.GUID, "error", err)
		t.report.Skipped++
		return nil
	}

	slog.Debug("Processing post", "post_id", post.ID, "published_at", post.PublishedAt, "author", post.Author, "kind", post.Kind())

	exists, err := t.postRepo.Exists(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("failed to check post %s: %w", post.ID, err)
	}
	if exists {
		t.report.Duplicates++
		return nil
	}

	post.MediaURLs = t.resolver.Resolve(ctx, post.Author, post.ID, post.Description)

	if err := t.postRepo.Insert(ctx, post); err != nil {
		if errors.Is(err, database.ErrConflict) {
			t.report.Duplicates++
			return nil
		}
		return fmt.Errorf("failed to store post %s: %w", post.ID, err)
	}

	slog.Info("Inserted new post", "post_id", post.ID, "author", post.Author, "media", len(post.MediaURLs))
	t.report.New++

	if err := t.notifier.Deliver(ctx, post, channel); err != nil {
		t.report.DeliveryFailures++
		metrics.DeliveryFailures.Inc()

		var deliveryErr *notify.DeliveryError
		if errors.As(err, &deliveryErr) {
			slog.Error("Failed to send webhook", "post_id", post.ID, "status", deliveryErr.StatusCode, "response", deliveryErr.Body)
		} else {
			slog.Error("Failed to send webhook", "post_id", post.ID, "error", err)
		}
	}

	return nil
}
