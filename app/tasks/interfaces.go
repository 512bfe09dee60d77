package tasks

import (
	"context"

	"github.com/lysyi3m/birdwatcher/app/feed"
	"github.com/lysyi3m/birdwatcher/app/notify"
)

// TaskSchedulerInterface is what main needs from the poll scheduler:
//
//	scheduler := NewScheduler(factory, interval, backoff, nil)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Status() Status
}

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type MediaResolver interface {
	Resolve(ctx context.Context, author, postID, description string) []string
}

type Notifier interface {
	Deliver(ctx context.Context, post *feed.Post, channel notify.Channel) error
}
