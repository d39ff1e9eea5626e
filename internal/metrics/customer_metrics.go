package metrics

import (
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метки исходов записи
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidVersion = "invalid_version"
	OutcomeEmailExists    = "email_exists"
	OutcomeValidation     = "validation"
	OutcomeNotFound       = "not_found"
	OutcomeError          = "error"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationPatch  = "patch"
	OperationDelete = "delete"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// CustomerMetrics интерфейс для метрик клиентов
type CustomerMetrics interface {
	IncWrite(operation, outcome string)
	IncNotification(status string)
	ObservePatchViolations(count int)
}

type customerMetrics struct {
	log             *logger.Logger
	writes          *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	patchViolations prometheus.Histogram
}

// NewCustomerMetrics создает метрики клиентов
func NewCustomerMetrics(registry prometheus.Registerer, log *logger.Logger) CustomerMetrics {
	writes := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_writes_total",
			Help: "The total number of customer writes by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	notifications := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_notifications_total",
			Help: "The total number of new customer notifications by status",
		},
		[]string{"status"},
	)

	patchViolations := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "customer_patch_violations",
			Help:    "Number of violations per rejected patch",
			Buckets: prometheus.LinearBuckets(1, 1, 5), // 1..5
		},
	)

	return &customerMetrics{
		log:             log,
		writes:          writes,
		notifications:   notifications,
		patchViolations: patchViolations,
	}
}

// IncWrite увеличивает счетчик операций записи
func (m *customerMetrics) IncWrite(operation, outcome string) {
	m.writes.WithLabelValues(operation, outcome).Inc()
}

// IncNotification увеличивает счетчик уведомлений
func (m *customerMetrics) IncNotification(status string) {
	m.notifications.WithLabelValues(status).Inc()
}

// ObservePatchViolations записывает число нарушений в отклоненном патче
func (m *customerMetrics) ObservePatchViolations(count int) {
	m.patchViolations.Observe(float64(count))
}

// NopCustomerMetrics ничего не записывает
type NopCustomerMetrics struct{}

func (NopCustomerMetrics) IncWrite(string, string) {}
func (NopCustomerMetrics) IncNotification(string) {}
func (NopCustomerMetrics) ObservePatchViolations(int) {}
