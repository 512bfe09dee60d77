package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/birdwatcher/app/tasks"
)

func NewHandler(posts PostCounter, scheduler tasks.TaskSchedulerInterface, birdUser, version string) *Handler {
	return &Handler{
		posts:     posts,
		scheduler: scheduler,
		birdUser:  birdUser,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.posts.Count(c.Request.Context()); err == nil {
		health["posts"] = count
	} else {
		slog.Error("Database error", "operation", "count_posts", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	status := h.scheduler.Status()

	stats := StatsResponse{
		BirdUser:       h.birdUser,
		State:          status.State,
		CyclesRun:      status.CyclesRun,
		LastStartedAt:  formatTime(status.LastStartedAt),
		LastFinishedAt: formatTime(status.LastFinishedAt),
		NextRunAt:      formatTime(status.NextRunAt),
		LastError:      status.LastError,
		LastCycle:      status.LastReport,
	}

	count, err := h.posts.Count(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "count_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	stats.Posts = count

	c.JSON(http.StatusOK, stats)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.Local).Format(time.RFC3339)
}
