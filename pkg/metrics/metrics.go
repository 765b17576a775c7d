package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
// Все методы записи безопасно вызывать на nil (метрики выключены)
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal     *prometheus.CounterVec
	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BookingOperations *prometheus.CounterVec
	BookingConflicts  *prometheus.CounterVec
	PartialWrites     *prometheus.CounterVec
	RepairAttempts    *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry (его отдает promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в указанном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		DBQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"service", "operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),
		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),
		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),
		BookingOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking coordinator operations by result",
		}, []string{"service", "operation", "result"}),
		BookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Rejected candidates by resource kind and conflict kind",
		}, []string{"service", "resource_kind", "conflict_kind"}),
		PartialWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_partial_writes_total",
			Help: "Dual writes that left the mirrored pair inconsistent",
		}, []string{"service", "operation"}),
		RepairAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_repair_attempts_total",
			Help: "Reconciler attempts to repair mirrored pairs",
		}, []string{"service", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingOperations,
		m.BookingConflicts,
		m.PartialWrites,
		m.RepairAttempts,
	)

	return m
}

// ServiceName имя сервиса, которым помечаются метрики
func (m *Metrics) ServiceName() string {
	if m == nil {
		return ""
	}
	return m.serviceName
}

// RecordHTTPRequest записывает результат HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordDBQuery записывает выполнение SQL запроса
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(m.serviceName, operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// RecordBookingOperation считает операцию координатора (create, reschedule, cancel)
func (m *Metrics) RecordBookingOperation(operation, result string) {
	if m == nil {
		return
	}
	m.BookingOperations.WithLabelValues(m.serviceName, operation, result).Inc()
}

// RecordConflict считает отказ из-за занятости ресурса
func (m *Metrics) RecordConflict(resourceKind, conflictKind string) {
	if m == nil {
		return
	}
	m.BookingConflicts.WithLabelValues(m.serviceName, resourceKind, conflictKind).Inc()
}

// RecordPartialWrite считает частично выполненную двойную запись
func (m *Metrics) RecordPartialWrite(operation string) {
	if m == nil {
		return
	}
	m.PartialWrites.WithLabelValues(m.serviceName, operation).Inc()
}

// RecordRepair считает попытку восстановления пары записей
func (m *Metrics) RecordRepair(result string) {
	if m == nil {
		return
	}
	m.RepairAttempts.WithLabelValues(m.serviceName, result).Inc()
}
