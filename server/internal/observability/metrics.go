package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request counts and latencies per route.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	routeMetrics map[string]*RouteMetrics

	// samples is a bounded FIFO of recent requests used for windowed views.
	samples    []Sample
	maxSamples int
}

// RouteMetrics represents metrics for a single route.
type RouteMetrics struct {
	requestCount  atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// Sample is one recorded request.
type Sample struct {
	At       time.Time
	Duration time.Duration
	Failed   bool
}

// NewMetrics creates a new metrics collector keeping at most maxSamples recent requests.
func NewMetrics(maxSamples int) *Metrics {
	if maxSamples <= 0 {
		maxSamples = 10000
	}
	return &Metrics{
		routeMetrics: make(map[string]*RouteMetrics),
		samples:      make([]Sample, 0, 64),
		maxSamples:   maxSamples,
	}
}

// Record records one finished request.
func (m *Metrics) Record(route string, at time.Time, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	rm := m.getRouteMetrics(route)
	rm.requestCount.Add(1)
	rm.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		rm.errorCount.Add(1)
	}

	m.mu.Lock()
	if len(m.samples) >= m.maxSamples {
		// Remove oldest sample (FIFO)
		m.samples = m.samples[1:]
	}
	m.samples = append(m.samples, Sample{At: at, Duration: duration, Failed: failed})
	m.mu.Unlock()
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getRouteMetrics(route string) *RouteMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routeMetrics[route]; !ok {
		m.routeMetrics[route] = &RouteMetrics{}
	}
	return m.routeMetrics[route]
}

// GetAllRoutes returns all routes that have been recorded, sorted.
func (m *Metrics) GetAllRoutes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make([]string, 0, len(m.routeMetrics))
	for route := range m.routeMetrics {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.routeMetrics = make(map[string]*RouteMetrics)
	m.samples = make([]Sample, 0, 64)
	m.mu.Unlock()
}

// Snapshot returns the per-route totals and a summary of the samples recorded at or after since.
func (m *Metrics) Snapshot(since time.Time) *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make(map[string]*RouteMetricsSnapshot, len(m.routeMetrics))
	for route, rm := range m.routeMetrics {
		count := rm.requestCount.Load()
		snapshot := &RouteMetricsSnapshot{
			RequestCount:  count,
			TotalDuration: rm.totalDuration.Load(),
			ErrorCount:    rm.errorCount.Load(),
		}
		if count > 0 {
			snapshot.AverageDuration = snapshot.TotalDuration / count
		}
		routes[route] = snapshot
	}

	var durations []time.Duration
	var failed int64
	var total time.Duration
	for _, s := range m.samples {
		if s.At.Before(since) {
			continue
		}
		durations = append(durations, s.Duration)
		total += s.Duration
		if s.Failed {
			failed++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	snapshot := &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Routes:        routes,
		WindowCount:   int64(len(durations)),
		WindowFailed:  failed,
	}
	if n := len(durations); n > 0 {
		snapshot.WindowAvg = total / time.Duration(n)
		snapshot.WindowP50 = percentile(durations, 0.50)
		snapshot.WindowP95 = percentile(durations, 0.95)
	}
	return snapshot
}

// percentile returns the nearest-rank percentile of sorted durations.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.999999) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64
	RequestFailed int64
	Routes        map[string]*RouteMetricsSnapshot

	// Window* summarize the samples inside the requested window.
	WindowCount  int64
	WindowFailed int64
	WindowAvg    time.Duration
	WindowP50    time.Duration
	WindowP95    time.Duration
}

// RouteMetricsSnapshot represents metrics for a specific route.
type RouteMetricsSnapshot struct {
	RequestCount    int64
	TotalDuration   int64
	ErrorCount      int64
	AverageDuration int64
}

// WindowSuccessRate returns the success rate inside the window as a percentage (0-100).
func (s *MetricsSnapshot) WindowSuccessRate() float64 {
	if s.WindowCount == 0 {
		return 100.0
	}
	return float64(s.WindowCount-s.WindowFailed) / float64(s.WindowCount) * 100.0
}
