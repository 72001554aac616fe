// Package metrics exposes run results as Prometheus metrics written to a
// node_exporter textfile.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/younsl/ebsconvert/internal/models"
)

const namespace = "ebsconvert"

// Textfile records the latest run into a Prometheus text exposition file
type Textfile struct {
	path     string
	registry *prometheus.Registry

	volumes      *prometheus.GaugeVec
	savings      prometheus.Gauge
	duration     prometheus.Gauge
	lastRun      prometheus.Gauge
	notification prometheus.Gauge
}

// NewTextfile creates a sink writing to path
func NewTextfile(path string) *Textfile {
	t := &Textfile{
		path:     path,
		registry: prometheus.NewRegistry(),
		volumes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "volumes",
			Help:      "Volumes seen in the last run, by stage.",
		}, []string{"region", "target_type", "stage"}),
		savings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "estimated_monthly_savings_usd",
			Help:      "Estimated monthly savings of the last run's candidates.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		notification: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_notification_published",
			Help:      "1 if the last run's summary was published.",
		}),
	}
	t.registry.MustRegister(t.volumes, t.savings, t.duration, t.lastRun, t.notification)
	return t
}

// Record sets the gauges from report and rewrites the textfile
func (t *Textfile) Record(_ context.Context, report models.RunReport) error {
	labels := func(stage string) prometheus.Labels {
		return prometheus.Labels{
			"region":      report.Region,
			"target_type": report.TargetVolumeType,
			"stage":       stage,
		}
	}

	t.volumes.Reset()
	t.volumes.With(labels("scanned")).Set(float64(report.ScannedCount))
	t.volumes.With(labels("candidate")).Set(float64(len(report.Candidates)))
	t.volumes.With(labels("logged")).Set(float64(report.LoggedCount))
	t.volumes.With(labels("succeeded")).Set(float64(report.Succeeded()))
	t.volumes.With(labels("failed")).Set(float64(report.Failed()))
	t.volumes.With(labels("timed_out")).Set(float64(report.TimedOut()))

	t.savings.Set(report.EstimatedMonthlySavings)
	t.duration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	t.lastRun.Set(float64(report.FinishedAt.Unix()))
	if report.Notification.Published {
		t.notification.Set(1)
	} else {
		t.notification.Set(0)
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("error writing metrics textfile %s: %w", t.path, err)
	}
	return nil
}
