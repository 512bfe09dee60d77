package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Cycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdwatcher_cycles_total",
		Help: "Total poll cycles run",
	})
	CycleErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdwatcher_cycle_errors_total",
		Help: "Total poll cycles that ended in an error",
	})
	FetchTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdwatcher_fetch_timeouts_total",
		Help: "Total feed fetches that timed out",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "birdwatcher_cycle_duration_seconds",
		Help:    "Poll cycle duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	Posts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birdwatcher_posts_total",
		Help: "Feed entries by outcome",
	}, []string{"outcome"})
	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdwatcher_delivery_failures_total",
		Help: "Total webhook deliveries that failed",
	})
	LookupFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdwatcher_lookup_fallbacks_total",
		Help: "Total media lookups that fell back to scraping",
	})
)

const (
	OutcomeNew       = "new"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

func init() {
	prometheus.MustRegister(Cycles, CycleErrors, FetchTimeouts, CycleDuration, Posts, DeliveryFailures, LookupFallbacks)
}

// ObserveCycleDuration records a cycle started at start.
func ObserveCycleDuration(start time.Time) {
	CycleDuration.Observe(time.Since(start).Seconds())
}

func IncPosts(outcome string, n int) {
	if n > 0 {
		Posts.WithLabelValues(outcome).Add(float64(n))
	}
}

// IncLookupFallback matches media.Resolver's OnFallback hook.
func IncLookupFallback(error) { LookupFallbacks.Inc() }
