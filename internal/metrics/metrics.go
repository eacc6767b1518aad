package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentdesk_renders_total",
		Help: "Clip renders by result.",
	}, []string{"result"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contentdesk_render_duration_seconds",
		Help:    "Wall-clock time spent in the transcoder.",
		Buckets: []float64{1, 5, 10, 30, 60, 90, 120},
	})

	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentdesk_dispatch_total",
		Help: "Publication hand-offs by channel and result.",
	}, []string{"channel", "result"})

	PreferenceRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contentdesk_preference_recomputes_total",
		Help: "Completed weekday preference recomputes.",
	})
)

func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
