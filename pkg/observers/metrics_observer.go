package observers

import (
	"context"
	"sync"
	"time"

	"github.com/anggasct/tjunction"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsObserver exports junction activity as Prometheus metrics
type MetricsObserver struct {
	arrivals      *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	releases      *prometheus.CounterVec
	deferrals     *prometheus.CounterVec
	errors        *prometheus.CounterVec
	queueLength   *prometheus.GaugeVec
	cycleDuration prometheus.Histogram
	cycles        prometheus.Counter

	cycleStart map[uint64]time.Time
	mutex      sync.Mutex
}

// NewMetricsObserver registers the junction metrics on reg under namespace.
// Pass a fresh prometheus.Registry per junction; registering twice on the
// same registerer panics.
func NewMetricsObserver(reg prometheus.Registerer, namespace string) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		arrivals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrivals_total",
			Help:      "Vehicles accepted onto an approach queue",
		}, []string{"approach"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrivals_rejected_total",
			Help:      "Vehicles rejected at arrival by error code",
		}, []string{"approach", "code"}),
		releases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Vehicles released by approach and exit",
		}, []string{"approach", "exit"}),
		deferrals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deferrals_total",
			Help:      "Candidate deferrals by approach and blocking approach",
		}, []string{"approach", "blocked_by"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Cycle errors by error code",
		}, []string{"code"}),
		queueLength: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Vehicles waiting per approach at the start of the last cycle",
		}, []string{"approach"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time from snapshot to the last decision of a cycle",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed arbitration cycles",
		}),
		cycleStart: make(map[uint64]time.Time),
	}
}

// OnArrival counts an accepted arrival
func (o *MetricsObserver) OnArrival(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle) {
	o.arrivals.WithLabelValues(approach.String()).Inc()
}

// OnArrivalRejected counts a rejected arrival
func (o *MetricsObserver) OnArrivalRejected(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle, err error) {
	o.rejections.WithLabelValues(approach.String(), codeLabel(err)).Inc()
}

// OnCycleStarted records queue lengths and the cycle start time
func (o *MetricsObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap tjunction.Snapshot) {
	for _, a := range tjunction.Approaches {
		o.queueLength.WithLabelValues(a.String()).Set(float64(snap.Len(a)))
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.cycleStart[cycle] = time.Now()
}

// OnDecision counts releases and deferrals
func (o *MetricsObserver) OnDecision(ctx context.Context, cycle uint64, d tjunction.Decision) {
	switch {
	case d.Released():
		o.releases.WithLabelValues(d.Approach.String(), d.Exit.String()).Inc()
	case d.Deferred() && d.Err == nil:
		o.deferrals.WithLabelValues(d.Approach.String(), d.BlockedBy.String()).Inc()
	}
}

// OnCycleCompleted records the cycle duration
func (o *MetricsObserver) OnCycleCompleted(ctx context.Context, result *tjunction.CycleResult) {
	o.cycles.Inc()

	o.mutex.Lock()
	start, ok := o.cycleStart[result.Cycle]
	delete(o.cycleStart, result.Cycle)
	o.mutex.Unlock()

	if ok {
		o.cycleDuration.Observe(time.Since(start).Seconds())
	}
}

// OnError counts errors by code
func (o *MetricsObserver) OnError(ctx context.Context, err error) {
	o.errors.WithLabelValues(codeLabel(err)).Inc()
}

func codeLabel(err error) string {
	switch tjunction.GetErrorCode(err) {
	case tjunction.ErrCodeEmptyQueue:
		return "empty_queue"
	case tjunction.ErrCodeUnknownIntent:
		return "unknown_intent"
	case tjunction.ErrCodeNoMovement:
		return "no_movement"
	case tjunction.ErrCodeInvalidApproach:
		return "invalid_approach"
	case tjunction.ErrCodeSendFailed:
		return "send_failed"
	case tjunction.ErrCodeReleaseMismatch:
		return "release_mismatch"
	case tjunction.ErrCodeRegistrationFailed:
		return "registration_failed"
	case tjunction.ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case tjunction.ErrCodeDuplicateVehicle:
		return "duplicate_vehicle"
	default:
		return "other"
	}
}
