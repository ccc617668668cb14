package metrics

import (
	"time"

	"geostats/internal/stats"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports the counters of every finished analysis
type Recorder struct {
	Runs         *prometheus.CounterVec
	Lines        *prometheus.CounterVec
	Files        *prometheus.CounterVec
	LastDuration *prometheus.GaugeVec
	LastAccepted *prometheus.GaugeVec
	LastFinished *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geostats_analysis_runs_total",
				Help: "Total number of completed analyses.",
			},
			[]string{"kind"},
		),
		Lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geostats_lines_total",
				Help: "Log lines read, by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		Files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geostats_files_total",
				Help: "Log files seen, by state.",
			},
			[]string{"kind", "state"},
		),
		LastDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geostats_last_run_duration_seconds",
				Help: "Duration of the most recent analysis.",
			},
			[]string{"kind"},
		),
		LastAccepted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geostats_last_run_entries",
				Help: "Entries aggregated by the most recent analysis.",
			},
			[]string{"kind"},
		),
		LastFinished: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geostats_last_run_timestamp_seconds",
				Help: "Unix time the most recent analysis finished.",
			},
			[]string{"kind"},
		),
		registry: prometheus.NewRegistry(),
	}
	r.Register(r.registry)
	return r
}

// Register adds the recorder's collectors to reg
func (r *Recorder) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		r.Runs,
		r.Lines,
		r.Files,
		r.LastDuration,
		r.LastAccepted,
		r.LastFinished,
	)
}

// Registry returns the registry the recorder was created with
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records the counters of one analysis
func (r *Recorder) Observe(kind string, run stats.RunStats, elapsed time.Duration) {
	r.Runs.WithLabelValues(kind).Inc()

	r.Lines.WithLabelValues(kind, "accepted").Add(float64(run.Accepted))
	r.Lines.WithLabelValues(kind, "unparsed").Add(float64(run.Unparsed))
	r.Lines.WithLabelValues(kind, "not_successful").Add(float64(run.NotSuccessful))
	r.Lines.WithLabelValues(kind, "filtered_self_ip").Add(float64(run.FilteredSelfIP))
	r.Lines.WithLabelValues(kind, "filtered_country").Add(float64(run.FilteredCountry))

	r.Files.WithLabelValues(kind, "processed").Add(float64(run.FilesProcessed))
	r.Files.WithLabelValues(kind, "failed").Add(float64(run.FilesFailed))

	r.LastDuration.WithLabelValues(kind).Set(elapsed.Seconds())
	r.LastAccepted.WithLabelValues(kind).Set(float64(run.Accepted))
	r.LastFinished.WithLabelValues(kind).SetToCurrentTime()
}
