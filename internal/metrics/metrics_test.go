package metrics

import (
	"testing"
	"time"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCustomerMetrics(registry, logger.NewNop()).(*customerMetrics)

	m.IncWrite(OperationUpdate, OutcomeInvalidVersion)
	m.IncWrite(OperationUpdate, OutcomeInvalidVersion)
	m.IncWrite(OperationCreate, OutcomeSuccess)
	m.IncNotification(NotificationFailed)
	m.ObservePatchViolations(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.writes.WithLabelValues(OperationUpdate, OutcomeInvalidVersion)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues(OperationCreate, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.patchViolations))
}

func TestCustomerMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewCustomerMetrics(registry, logger.NewNop())

	assert.Panics(t, func() { NewCustomerMetrics(registry, logger.NewNop()) })
}

func TestSystemMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSystemMetrics(registry, logger.NewNop()).(*systemMetrics)

	m.RecordGoroutines()
	m.RecordMemory()

	assert.Greater(t, testutil.ToFloat64(m.goroutines), 0.0)
	assert.Greater(t, testutil.ToFloat64(m.memoryAlloc), 0.0)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestSystemMetrics_StopIsIdempotent(t *testing.T) {
	m := NewSystemMetrics(prometheus.NewRegistry(), logger.NewNop())
	m.StartRecording(10 * time.Millisecond)

	assert.NotPanics(t, func() {
		m.Stop()
		m.Stop()
	})
}
