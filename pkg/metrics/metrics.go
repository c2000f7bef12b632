package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	ReasonCapacity   = "capacity"
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonIntegrity  = "integrity"
	ReasonTransient  = "transient"
)

// Metrics owns a private registry so tests can build as many instances as
// they like. All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	bookingsCreated     prometheus.Counter
	bookingsRejected    *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	lockContention      prometheus.Counter
	integrityViolations prometheus.Counter
	sweptBookings       *prometheus.CounterVec
	discountsPurged     prometheus.Counter
	jobRuns             *prometheus.CounterVec
	jobDurations        *prometheus.HistogramVec
	kafkaMessages       *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDurations       *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings committed as pending.",
		}),
		bookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts that did not commit, by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions applied.",
		}, []string{"from", "to"}),
		lockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temp_lock_contention_total",
			Help:      "Reservations that found the last unit already held by another user.",
		}),
		integrityViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_integrity_violations_total",
			Help:      "Availability computations that found negative remaining capacity.",
		}),
		sweptBookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_bookings_total",
			Help:      "Stale pending bookings handled by the expiry sweeper.",
		}, []string{"result"}),
		discountsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_purged_total",
			Help:      "Expired discounts deleted.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs.",
		}, []string{"job", "result"}),
		jobDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages published or consumed.",
		}, []string{"direction", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed.",
		}, []string{"method", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.bookingsCreated,
		m.bookingsRejected,
		m.transitions,
		m.lockContention,
		m.integrityViolations,
		m.sweptBookings,
		m.discountsPurged,
		m.jobRuns,
		m.jobDurations,
		m.kafkaMessages,
		m.httpRequests,
		m.httpDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.bookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) LockContended() {
	if m == nil {
		return
	}
	m.lockContention.Inc()
}

func (m *Metrics) IntegrityViolation() {
	if m == nil {
		return
	}
	m.integrityViolations.Inc()
}

func (m *Metrics) Swept(expired, failed int) {
	if m == nil {
		return
	}
	m.sweptBookings.WithLabelValues(ResultSuccess).Add(float64(expired))
	m.sweptBookings.WithLabelValues(ResultFailure).Add(float64(failed))
}

func (m *Metrics) DiscountsPurged(n int64) {
	if m == nil {
		return
	}
	m.discountsPurged.Add(float64(n))
}

func (m *Metrics) JobRun(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
	m.jobDurations.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) KafkaMessage(direction string, err error) {
	if m == nil {
		return
	}
	m.kafkaMessages.WithLabelValues(direction, result(err)).Inc()
}

func (m *Metrics) HTTPRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
