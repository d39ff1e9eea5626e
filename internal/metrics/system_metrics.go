package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SystemMetrics интерфейс для системных метрик
type SystemMetrics interface {
	RecordGoroutines()
	RecordMemory()
	StartRecording(interval time.Duration)
	Stop()
}

type systemMetrics struct {
	log          *logger.Logger
	goroutines   prometheus.Gauge
	memoryAlloc  prometheus.Gauge
	memoryTotal  prometheus.Gauge
	memorySystem prometheus.Gauge
	memoryGC     prometheus.Counter
	gcMu         sync.Mutex
	lastNumGC    uint32
	stopCh       chan struct{}
	stopOnce     sync.Once
}

const (
	namespace       = "customer_service"
	systemSubsystem = "system"
)

// NewSystemMetrics создает новые системные метрики
func NewSystemMetrics(registry prometheus.Registerer, log *logger.Logger) SystemMetrics {
	factory := promauto.With(registry)
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: systemSubsystem,
			Name:      name,
			Help:      help,
		})
	}

	memoryGC := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: systemSubsystem,
		Name:      "gc_cycles_total",
		Help:      "Completed GC cycles since start",
	})

	return &systemMetrics{
		log:          log,
		goroutines:   gauge("goroutines", "Current number of goroutines"),
		memoryAlloc:  gauge("memory_alloc_bytes", "Currently allocated heap memory in bytes"),
		memoryTotal:  gauge("memory_total_alloc_bytes", "Cumulative heap allocations in bytes"),
		memorySystem: gauge("memory_system_bytes", "Memory obtained from the OS in bytes"),
		memoryGC:     memoryGC,
		stopCh:       make(chan struct{}),
	}
}

// RecordGoroutines записывает количество горутин
func (m *systemMetrics) RecordGoroutines() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// RecordMemory записывает метрики памяти
func (m *systemMetrics) RecordMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.memoryAlloc.Set(float64(memStats.Alloc))
	m.memoryTotal.Set(float64(memStats.TotalAlloc))
	m.memorySystem.Set(float64(memStats.Sys))
	m.gcMu.Lock()
	defer m.gcMu.Unlock()
	// NumGC накопительный, в счетчик добавляем только прирост
	m.memoryGC.Add(float64(memStats.NumGC - m.lastNumGC))
	m.lastNumGC = memStats.NumGC
}

// StartRecording начинает запись метрик с заданным интервалом
func (m *systemMetrics) StartRecording(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.RecordGoroutines()
				m.RecordMemory()
			case <-m.stopCh:
				return
			}
		}
	}()
	m.log.Info("System metrics recording started with interval %s", interval)
}

// Stop останавливает запись метрик
func (m *systemMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.log.Info("System metrics recording stopped")
	})
}
