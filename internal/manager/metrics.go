package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "predictions_total",
			Help:      "Completed predictions by animal type and breed",
		},
		[]string{"animal_type", "breed"},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "failures_total",
			Help:      "Failed identifications by reason",
		},
		[]string{"reason"},
	)

	stageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "stage_duration_seconds",
			Help:      "Classifier evaluation time per stage",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "model"},
	)

	processingSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "processing_seconds",
			Help:      "Time from receipt to assembled result",
			Buckets:   prometheus.DefBuckets,
		},
	)

	saliencyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "saliency_total",
			Help:      "Heatmap requests by outcome",
		},
		[]string{"outcome"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "rejections_total",
			Help:      "Admission rejections by classifier and wait stage",
		},
		[]string{"model", "stage"},
	)

	demoModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "breedd",
			Subsystem: "inference",
			Name:      "demo_models",
			Help:      "Classifiers currently serving untrained weights",
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, failuresTotal, stageSeconds, processingSeconds, saliencyTotal, rejectionsTotal, demoModels)
}
