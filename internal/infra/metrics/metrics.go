package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rc",
		Name:      "evaluations_total",
		Help:      "Unit expressions evaluated, by result (ok or the error kind).",
	}, []string{"result"})

	MaterialsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rc",
		Name:      "materials_saved_total",
		Help:      "Materials stored, by kind.",
	}, []string{"kind"})

	PlotsRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rc",
		Name:      "plots_rendered_total",
		Help:      "Plot workbooks sent to users.",
	})

	CurveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rc",
		Name:      "curve_failures_total",
		Help:      "Failed calls to the curve service.",
	})
)
