package api

import (
	"context"

	"github.com/lysyi3m/birdwatcher/app/tasks"
)

// PostCounter is the read-only slice of the post store the handlers need.
type PostCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	posts     PostCounter
	scheduler tasks.TaskSchedulerInterface
	birdUser  string
	version   string
}

type StatsResponse struct {
	BirdUser       string            `json:"bird_user"`
	State          tasks.State       `json:"state"`
	CyclesRun      int64             `json:"cycles_run"`
	LastStartedAt  string            `json:"last_started_at,omitempty"`
	LastFinishedAt string            `json:"last_finished_at,omitempty"`
	NextRunAt      string            `json:"next_run_at,omitempty"`
	LastError      string            `json:"last_error,omitempty"`
	LastCycle      tasks.CycleReport `json:"last_cycle"`
	Posts          int               `json:"posts"`
}
