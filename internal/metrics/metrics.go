// Package metrics holds the Prometheus collectors for the mood and streak
// engine. HTTP metrics live in middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MoodLogsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_logs_created_total",
			Help: "Total number of mood logs written",
		},
		[]string{"mood"},
	)
	StreakAdvanceConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_advance_conflicts_total",
			Help: "Streak advances that lost a compare-and-swap and were retried",
		},
	)
	StreakRepairUsers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_repair_users_total",
			Help: "Users visited by the streak repair sweep, by outcome",
		},
		[]string{"result"},
	)
	StreakSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streak_sweep_duration_seconds",
			Help:    "Duration of streak repair sweeps",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(MoodLogsCreated, StreakAdvanceConflicts, StreakRepairUsers, StreakSweepDuration)
}
