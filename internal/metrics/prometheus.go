package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/agro-advisor/internal/logger"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// advisory pipeline.
type Metrics struct {
	AnalysesTotal      *prometheus.CounterVec // labels: outcome={ok,degraded,failed}
	ModelPredictions   *prometheus.CounterVec // labels: model, outcome={success,failure}
	ModelLatency       *prometheus.HistogramVec
	AnalysisDuration   prometheus.Histogram
	ActiveAlerts       *prometheus.GaugeVec // labels: type
	AlertTransitions   *prometheus.CounterVec
	SchedulerRuns      prometheus.Counter
	SchedulerSkips     prometheus.Counter
	SchedulerRunning   prometheus.Gauge
	ProviderCircuit    prometheus.Gauge // 0=closed, 1=open, 2=half-open
	WebsocketClients   prometheus.Gauge
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them with the
// default registry on first call.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
		prometheus.MustRegister(
			instance.AnalysesTotal,
			instance.ModelPredictions,
			instance.ModelLatency,
			instance.AnalysisDuration,
			instance.ActiveAlerts,
			instance.AlertTransitions,
			instance.SchedulerRuns,
			instance.SchedulerSkips,
			instance.SchedulerRunning,
			instance.ProviderCircuit,
			instance.WebsocketClients,
		)
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "analyses_total",
			Help:      "Completed analysis runs by outcome.",
		}, []string{"outcome"}),
		ModelPredictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "model_predictions_total",
			Help:      "Model invocations by model name and outcome.",
		}, []string{"model", "outcome"}),
		ModelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "advisor",
			Name:      "model_latency_seconds",
			Help:      "Per-model prediction latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"model"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "advisor",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a full analysis run including both model phases.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ActiveAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "active_alerts",
			Help:      "Currently active alerts by type.",
		}, []string{"type"}),
		AlertTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "alert_transitions_total",
			Help:      "Alert state transitions by kind.",
		}, []string{"transition"}),
		SchedulerRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "scheduler_runs_total",
			Help:      "Scheduler cycles that were started.",
		}),
		SchedulerSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "scheduler_skips_total",
			Help:      "Ticks skipped because the previous cycle was still running.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "scheduler_running",
			Help:      "1 while a scheduler cycle is in progress.",
		}),
		ProviderCircuit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "provider_circuit_state",
			Help:      "Weather provider circuit breaker state (0=closed, 1=open, 2=half-open).",
		}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
	}
}

// NewForTesting creates Metrics backed by a fresh registry so tests
// can instantiate without "already registered" panics.
func NewForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) ObserveModel(name string, elapsed time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.ModelPredictions.WithLabelValues(name, outcome).Inc()
	m.ModelLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAnalysis(elapsed time.Duration, degraded bool, failed bool) {
	outcome := "ok"
	switch {
	case failed:
		outcome = "failed"
	case degraded:
		outcome = "degraded"
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
}

// StartServer exposes /metrics on its own port, separate from the API
// listener.
func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
