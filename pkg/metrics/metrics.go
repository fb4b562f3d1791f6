package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
	enabled      bool

	// Classification metrics
	ClassificationsTotal *prometheus.CounterVec
	InterventionsTotal   *prometheus.CounterVec
	PhaseScore           *prometheus.HistogramVec
	ClassifyDuration     prometheus.Histogram

	// Tracker metrics
	RepeatedAttemptClusters prometheus.Gauge
	TrendTransitions        *prometheus.CounterVec

	// Realtime monitor metrics
	MonitorBufferSeconds prometheus.Gauge
	ProsodyAnalysesTotal *prometheus.CounterVec

	// Messaging metrics
	AMQPPublishedTotal   *prometheus.CounterVec
	AMQPConnectionErrors prometheus.Counter
)

// Init initializes all metrics and registers them with a dedicated registry.
// Components call the Record helpers below, which are safe no-ops until Init
// runs — tests never need a registry.
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		ClassificationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frustration_classifications_total",
				Help: "Total classification calls by outcome",
			},
			[]string{"intervene"},
		)

		InterventionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frustration_interventions_total",
				Help: "Recommended interventions by type",
			},
			[]string{"type"},
		)

		PhaseScore = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frustration_phase_score",
				Help:    "Per-source phase scores feeding the fusion",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"phase"},
		)

		ClassifyDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "frustration_classify_duration_seconds",
				Help:    "Wall time of classify calls",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		)

		RepeatedAttemptClusters = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "frustration_repeat_clusters",
				Help: "Live repeated-attempt clusters across sessions",
			},
		)

		TrendTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frustration_trend_transitions_total",
				Help: "Trend direction observations",
			},
			[]string{"trend"},
		)

		MonitorBufferSeconds = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "frustration_monitor_buffer_seconds",
				Help: "Seconds of audio retained by the realtime monitor",
			},
		)

		ProsodyAnalysesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frustration_prosody_analyses_total",
				Help: "Full prosody analyses by voice detection outcome",
			},
			[]string{"voice_detected"},
		)

		AMQPPublishedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frustration_amqp_published_total",
				Help: "Classification events published to AMQP by status",
			},
			[]string{"status"},
		)

		AMQPConnectionErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "frustration_amqp_connection_errors_total",
				Help: "AMQP connection failures",
			},
		)

		registry.MustRegister(
			ClassificationsTotal,
			InterventionsTotal,
			PhaseScore,
			ClassifyDuration,
			RepeatedAttemptClusters,
			TrendTransitions,
			MonitorBufferSeconds,
			ProsodyAnalysesTotal,
			AMQPPublishedTotal,
			AMQPConnectionErrors,
		)

		enabled = true
		logger.Info("Metrics registry initialized")
	})
}

// Handler returns the scrape endpoint handler for the dedicated registry.
func Handler() http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordClassification counts one classify call and its intervention type.
func RecordClassification(intervene bool, interventionType string, durationSeconds float64) {
	if !enabled {
		return
	}
	outcome := "false"
	if intervene {
		outcome = "true"
	}
	ClassificationsTotal.WithLabelValues(outcome).Inc()
	if interventionType != "" {
		InterventionsTotal.WithLabelValues(interventionType).Inc()
	}
	ClassifyDuration.Observe(durationSeconds)
}

// ObservePhaseScore records one per-source phase score.
func ObservePhaseScore(phase string, score float64) {
	if !enabled {
		return
	}
	PhaseScore.WithLabelValues(phase).Observe(score)
}

// RecordTrend counts a trend observation.
func RecordTrend(trend string) {
	if !enabled {
		return
	}
	TrendTransitions.WithLabelValues(trend).Inc()
}

// AddRepeatClusters moves the live cluster gauge by delta.
func AddRepeatClusters(delta float64) {
	if !enabled {
		return
	}
	RepeatedAttemptClusters.Add(delta)
}

// SetMonitorBufferSeconds reports current monitor buffer retention.
func SetMonitorBufferSeconds(seconds float64) {
	if !enabled {
		return
	}
	MonitorBufferSeconds.Set(seconds)
}

// RecordProsodyAnalysis counts one full prosody analysis.
func RecordProsodyAnalysis(voiceDetected bool) {
	if !enabled {
		return
	}
	v := "false"
	if voiceDetected {
		v = "true"
	}
	ProsodyAnalysesTotal.WithLabelValues(v).Inc()
}

// RecordAMQPPublish counts one publish attempt.
func RecordAMQPPublish(success bool) {
	if !enabled {
		return
	}
	status := "error"
	if success {
		status = "ok"
	}
	AMQPPublishedTotal.WithLabelValues(status).Inc()
}

// RecordAMQPConnectionError counts one connection failure.
func RecordAMQPConnectionError() {
	if !enabled {
		return
	}
	AMQPConnectionErrors.Inc()
}
