package internaldefs

import (
	"github.com/MrEthical07/techhatch"
)

// CounterDef maps a client counter to its exported name.
type CounterDef struct {
	ID   techhatch.MetricID
	Name string
	Help string
}

// HistogramDef maps a client histogram to its exported name.
type HistogramDef struct {
	ID   techhatch.MetricID
	Name string
	Help string
}

// BucketCount is the number of latency buckets, +Inf included.
const BucketCount = 8

var CounterDefs = []CounterDef{
	{ID: techhatch.MetricRequest, Name: "techhatch_requests_total", Help: "Logical REST calls."},
	{ID: techhatch.MetricRequestFailure, Name: "techhatch_request_failures_total", Help: "Logical REST calls that returned an error."},
	{ID: techhatch.MetricAttempt, Name: "techhatch_attempts_total", Help: "Network attempts, retries included."},
	{ID: techhatch.MetricRetry, Name: "techhatch_retries_total", Help: "Scheduled retries."},
	{ID: techhatch.MetricRetryExhausted, Name: "techhatch_retry_exhausted_total", Help: "Calls that failed after the last retry."},
	{ID: techhatch.MetricUnauthorized, Name: "techhatch_unauthorized_total", Help: "401 responses that tore down the session."},
	{ID: techhatch.MetricTokenExpired, Name: "techhatch_token_expired_total", Help: "Calls aborted locally on an expired credential."},
	{ID: techhatch.MetricSessionInvalidated, Name: "techhatch_session_invalidated_total", Help: "Session teardowns."},
	{ID: techhatch.MetricOTPIssued, Name: "techhatch_otp_issued_total", Help: "Login and registration OTP challenges issued."},
	{ID: techhatch.MetricOTPRejected, Name: "techhatch_otp_rejected_total", Help: "Credential submissions that did not issue a challenge."},
	{ID: techhatch.MetricOTPResent, Name: "techhatch_otp_resent_total", Help: "Successful OTP resends."},
	{ID: techhatch.MetricOTPResendBlocked, Name: "techhatch_otp_resend_blocked_total", Help: "OTP resends blocked by the cooldown."},
	{ID: techhatch.MetricLoginSuccess, Name: "techhatch_login_success_total", Help: "Verified logins."},
	{ID: techhatch.MetricLoginFailure, Name: "techhatch_login_failure_total", Help: "Failed login OTP verifications."},
	{ID: techhatch.MetricRegistrationSuccess, Name: "techhatch_registration_success_total", Help: "Verified registrations."},
	{ID: techhatch.MetricRegistrationFailure, Name: "techhatch_registration_failure_total", Help: "Failed registration OTP verifications."},
	{ID: techhatch.MetricValidationRejected, Name: "techhatch_validation_rejected_total", Help: "Inputs rejected before any network call."},
	{ID: techhatch.MetricLogout, Name: "techhatch_logout_total", Help: "Logouts."},
	{ID: techhatch.MetricSessionRestored, Name: "techhatch_session_restored_total", Help: "Sessions restored from the persisted credential."},
}

var HistogramDefs = []HistogramDef{
	{ID: techhatch.MetricRequestLatency, Name: "techhatch_request_latency_seconds", Help: "Per-attempt request latency."},
}

// AuditDroppedName is the counter of audit events discarded on a full buffer.
const AuditDroppedName = "techhatch_audit_dropped_total"

// HistogramBounds are the upper bounds in seconds, matching the client buckets.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundValues are HistogramBounds without +Inf, for exporters that take
// explicit boundaries.
var HistogramBoundValues = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// NormalizeBuckets pads or truncates raw to BucketCount entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
