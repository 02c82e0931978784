package techhatch

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter slot.
type MetricID uint16

const (
	// MetricRequest counts logical REST calls, independent of retries.
	MetricRequest MetricID = iota
	// MetricRequestFailure counts logical calls that returned an error.
	MetricRequestFailure
	// MetricAttempt counts network attempts, including retries.
	MetricAttempt
	// MetricRetry counts scheduled retries.
	MetricRetry
	// MetricRetryExhausted counts calls that failed after the last retry.
	MetricRetryExhausted
	// MetricUnauthorized counts 401 responses that tore down the session.
	MetricUnauthorized
	// MetricTokenExpired counts calls aborted locally on an expired credential.
	MetricTokenExpired
	// MetricSessionInvalidated counts session teardowns of either kind.
	MetricSessionInvalidated
	// MetricOTPIssued counts login and registration challenges issued.
	MetricOTPIssued
	// MetricOTPRejected counts credential submissions that did not issue a challenge.
	MetricOTPRejected
	// MetricOTPResent counts successful resends.
	MetricOTPResent
	// MetricOTPResendBlocked counts resends blocked by the cooldown.
	MetricOTPResendBlocked
	// MetricLoginSuccess counts verified logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed login verifications.
	MetricLoginFailure
	// MetricRegistrationSuccess counts verified registrations.
	MetricRegistrationSuccess
	// MetricRegistrationFailure counts failed registration verifications.
	MetricRegistrationFailure
	// MetricValidationRejected counts inputs rejected before any network call.
	MetricValidationRejected
	// MetricLogout counts logouts.
	MetricLogout
	// MetricSessionRestored counts sessions restored from the persisted credential.
	MetricSessionRestored
	// MetricRequestLatency is the per-attempt latency histogram.
	MetricRequestLatency
	metricIDCount
)

// latencyBounds are the inclusive upper bounds of every bucket but the last.
var latencyBounds = [...]time.Duration{
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
	2500 * time.Millisecond,
}

const histBucketCount = len(latencyBounds) + 1

// slot keeps each counter on its own cache line.
type slot struct {
	atomic.Uint64
	_ [56]byte
}

// Metrics is a fixed set of lock-free counters and one latency histogram.
// A nil or disabled Metrics ignores every update.
type Metrics struct {
	enabled bool
	latency bool
	slots   [metricIDCount]slot
	buckets [histBucketCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool { return m != nil && m.enabled }

func (m *Metrics) LatencyEnabled() bool { return m != nil && m.latency }

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m.Enabled() && id < metricIDCount {
		m.slots[id].Add(1)
	}
}

// Observe records d in the histogram id. Only MetricRequestLatency has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricRequestLatency {
		return
	}
	m.buckets[bucketIndex(d)].Add(1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.slots[id].Load()
}

// Snapshot copies every counter and, when latency is enabled, the histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}
	for id := range metricIDCount {
		s.Counters[id] = m.slots[id].Load()
	}
	if m.latency {
		hist := make([]uint64, histBucketCount)
		for i := range hist {
			hist[i] = m.buckets[i].Load()
		}
		s.Histograms[MetricRequestLatency] = hist
	}
	return s
}

// bucketIndex compares at millisecond precision, so 25.4ms still lands in the first bucket.
func bucketIndex(d time.Duration) int {
	d = d.Truncate(time.Millisecond)
	for i, bound := range latencyBounds {
		if d <= bound {
			return i
		}
	}
	return len(latencyBounds)
}
