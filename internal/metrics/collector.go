// Package metrics exposes the pipeline's prometheus collectors on a dedicated
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Collector records pipeline, stage, speech and HTTP metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	pipelineRuns   *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	speechRequests *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates the collectors under namespace on a fresh registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	c := &Collector{
		registry: registry,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.pipelineRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs by terminal state",
		},
		[]string{"state", "failed_stage"},
	)

	c.stageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage", "status"},
	)

	c.speechRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_requests_total",
			Help:      "Total number of text-to-speech shortcut requests",
		},
		[]string{"status"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.logger.Info("Metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordStage observes one stage call
func (c *Collector) RecordStage(stage entities.Stage, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(string(stage), status(err)).Observe(d.Seconds())
}

// RecordRun counts a finished pipeline run
func (c *Collector) RecordRun(outcome *entities.PipelineOutcome) {
	if c == nil || outcome == nil {
		return
	}
	c.pipelineRuns.WithLabelValues(string(outcome.State), string(outcome.FailedStage)).Inc()
}

// RecordSpeech counts a text-to-speech shortcut request
func (c *Collector) RecordSpeech(err error) {
	if c == nil {
		return
	}
	c.speechRequests.WithLabelValues(status(err)).Inc()
}

// RecordHTTPRequest observes one served HTTP request
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Registry returns the registry the collectors are registered on
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
