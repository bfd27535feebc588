package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion pipeline metrics
	RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_ingest_rows_total",
		Help: "Source rows processed, by run mode and outcome",
	}, []string{"mode", "outcome"})

	BatchesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_ingest_batches_total",
		Help: "Insert chunks sent to the store, by outcome",
	}, []string{"outcome"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "property_ingest_batch_duration_seconds",
		Help:    "Time spent on one insert chunk",
		Buckets: prometheus.DefBuckets,
	})

	DriveListings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_ingest_drive_listings_total",
		Help: "Drive folder listings, by outcome",
	}, []string{"outcome"})

	// Seeding metrics
	SeedRowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_ingest_seed_rows_inserted_total",
		Help: "Reference rows inserted by the seeding cascade, by phase",
	}, []string{"phase"})

	// Job metrics
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_ingest_jobs_total",
		Help: "Queued jobs handled by the ingestion worker, by kind and status",
	}, []string{"kind", "status"})

	JobsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "property_ingest_jobs_dead_lettered_total",
		Help: "Queue messages moved to the dead letter queue",
	})

	WorkersBusy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "property_ingest_workers_busy",
		Help: "Worker pool goroutines currently running a job",
	})
)
