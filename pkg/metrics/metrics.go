package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wellness_booking"

// Metrics набор prometheus метрик сервиса.
// Все методы безопасны для nil получателя: при выключенных метриках
// вызывающий код передает nil и ничего не регистрируется.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec
	txRetriesTotal  prometheus.Counter

	bookingsTotal      *prometheus.CounterVec
	rejectionsTotal    *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	paymentsTotal      *prometheus.CounterVec
	remindersTotal     *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		dbConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: constLabels,
		}, []string{"state"}),
		txRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tx_serialization_retries_total",
			Help:        "Serializable transactions retried after a serialization failure",
			ConstLabels: constLabels,
		}),
		bookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bookings_total",
			Help:        "Booking attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "availability_rejections_total",
			Help:        "Availability checks rejected by reason kind",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		cancellationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cancellations_total",
			Help:        "Cancellations by type and refund percentage",
			ConstLabels: constLabels,
		}, []string{"type", "refund_percentage"}),
		paymentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "payments_total",
			Help:        "Payment attempts by method and resulting status",
			ConstLabels: constLabels,
		}, []string{"method", "status"}),
		remindersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reminders_total",
			Help:        "Reminders processed by the dispatcher",
			ConstLabels: constLabels,
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil && err != sql.ErrNoRows {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func (m *Metrics) SetDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	m.dbConnections.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
}

func (m *Metrics) IncTxRetry() {
	if m == nil {
		return
	}
	m.txRetriesTotal.Inc()
}

// IncBooking operation: create/reschedule/cancel, outcome: created/rescheduled/cancelled/rejected/failed
func (m *Metrics) IncBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncRejection(kind string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncCancellation(cancellationType string, refundPercentage int) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(cancellationType, strconv.Itoa(refundPercentage)).Inc()
}

func (m *Metrics) IncPayment(method, status string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(method, status).Inc()
}

func (m *Metrics) IncReminder(status string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(status).Inc()
}
