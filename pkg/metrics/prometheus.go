package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	polls       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	inFailure   prometheus.Gauge
	magnitude   prometheus.Gauge
	latency     *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
	settleHolds prometheus.Counter
	errorsTotal *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		polls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficlight_polls_total",
				Help: "Total number of poll cycles by outcome",
			},
			[]string{"outcome"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficlight_failure_transitions_total",
				Help: "Total number of transitions into failure mode by kind",
			},
			[]string{"kind"},
		),
		inFailure: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "trafficlight_in_failure",
				Help: "1 while the indicator shows the failure signal",
			},
		),
		magnitude: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "trafficlight_signal_magnitude",
				Help: "Magnitude (-3..3) of the last applied signal",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trafficlight_operation_duration_seconds",
				Help:    "Duration of upstream operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		tokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficlight_token_acquisitions_total",
				Help: "Client-credentials exchanges by result",
			},
			[]string{"result"},
		),
		settleHolds: f.NewCounter(
			prometheus.CounterOpts{
				Name: "trafficlight_settle_holds_total",
				Help: "Number of settle holds after applying a new state",
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficlight_errors_total",
				Help: "Non-loop errors such as status export failures",
			},
			[]string{"type"},
		),
	}
}

// RecordPoll counts a poll cycle with its outcome.
func (r *Recorder) RecordPoll(outcome string) {
	r.polls.WithLabelValues(outcome).Inc()
}

// RecordFailure counts a transition into failure mode.
func (r *Recorder) RecordFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

// RecordFailureState sets the failure gauge.
func (r *Recorder) RecordFailureState(inFailure bool) {
	if inFailure {
		r.inFailure.Set(1)
		return
	}
	r.inFailure.Set(0)
}

// RecordApplied records the magnitude of a newly applied signal.
func (r *Recorder) RecordApplied(magnitude int) {
	r.magnitude.Set(float64(magnitude))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTokenAcquired counts a token exchange.
func (r *Recorder) RecordTokenAcquired(result string) {
	r.tokens.WithLabelValues(result).Inc()
}

// RecordSettleHold counts a settle hold.
func (r *Recorder) RecordSettleHold() {
	r.settleHolds.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
