package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор Prometheus метрик сервиса.
// Все методы безопасны для nil получателя: при выключенных метриках компоненты получают nil.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	reservationsCreated *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec

	notifications        *prometheus.CounterVec
	notificationsDropped prometheus.Counter

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec

	rateLimited *prometheus.CounterVec
}

// New создает и регистрирует метрики в собственном реестре
func New(serviceName string) *Metrics {
	ns := namespace(serviceName)
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reservationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reservations_created_total",
			Help:      "Count of reservation create attempts by result.",
		}, []string{"result"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reservation_status_transitions_total",
			Help:      "Count of reservation status transitions.",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "notifications_total",
			Help:      "Count of notification deliveries by event, recipient and result.",
		}, []string{"event", "recipient", "result"}),
		notificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "notifications_dropped_total",
			Help:      "Count of notifications dropped because the dispatch queue was full.",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency by operation.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "db_connections",
			Help:      "Database connection pool state.",
		}, []string{"state"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rate_limited_requests_total",
			Help:      "Count of requests rejected by the rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpRequestDuration,
		m.reservationsCreated,
		m.statusTransitions,
		m.notifications,
		m.notificationsDropped,
		m.dbQueryDuration,
		m.dbConnections,
		m.rateLimited,
	)

	return m
}

// Handler возвращает HTTP обработчик для экспорта метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает реестр (для тестов и дополнительных коллекторов)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncReservationCreated учитывает попытку создания бронирования (result: success, invalid, error)
func (m *Metrics) IncReservationCreated(result string) {
	if m == nil {
		return
	}
	m.reservationsCreated.WithLabelValues(result).Inc()
}

// IncStatusTransition учитывает смену статуса
func (m *Metrics) IncStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// IncNotification учитывает доставку уведомления (result: sent, failed, skipped)
func (m *Metrics) IncNotification(event, recipient, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, recipient, result).Inc()
}

// IncNotificationDropped учитывает уведомление, не попавшее в очередь
func (m *Metrics) IncNotificationDropped() {
	if m == nil {
		return
	}
	m.notificationsDropped.Inc()
}

// ObserveDBQuery учитывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBConnections выставляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(open))
	m.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(idle))
}

// IncRateLimited учитывает запрос, отклоненный лимитером
func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// namespace приводит имя сервиса к допустимому имени Prometheus
func namespace(serviceName string) string {
	name := strings.ToLower(strings.TrimSpace(serviceName))
	if name == "" {
		return "reservations"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)
}
