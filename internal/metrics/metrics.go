// Package metrics provides Prometheus instrumentation for the pollers and the
// versioned store.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PollsTotal counts poller runs, partitioned by source and result.
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbot_polls_total",
		Help: "Total poller runs",
	}, []string{"source", "result"})

	// VersionsCreated counts new SCD2 versions written, per entity.
	VersionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbot_versions_created_total",
		Help: "New entity versions inserted",
	}, []string{"entity"})

	// UpsertNoops counts upserts that matched the stored current version.
	UpsertNoops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbot_upsert_noops_total",
		Help: "Upserts skipped because the payload was unchanged",
	}, []string{"entity"})

	// UpsertConflicts counts partial-unique-index collisions between
	// concurrent writers, including ones resolved by retry.
	UpsertConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbot_upsert_conflicts_total",
		Help: "Concurrent upsert conflicts observed",
	}, []string{"entity"})

	// AnomaliesTotal counts persisted validation issues by severity.
	AnomaliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbot_anomalies_total",
		Help: "Validation anomalies persisted",
	}, []string{"entity", "severity"})

	// TradesRecorded counts attribution-stamped trade records.
	TradesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbot_trades_recorded_total",
		Help: "Trades recorded with attribution snapshots",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
