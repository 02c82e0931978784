package techhatch

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/techhatch/guard"
	internalaudit "github.com/MrEthical07/techhatch/internal/audit"
	"github.com/MrEthical07/techhatch/internal/cooldown"
	"github.com/MrEthical07/techhatch/internal/flows"
	"github.com/MrEthical07/techhatch/session"
	"github.com/MrEthical07/techhatch/transport"
	"github.com/redis/go-redis/v9"
)

// Client is the job-board client: auth flows, session, route guard and REST
// services share one credential. It is safe for concurrent use.
type Client struct {
	config    Config
	logger    *slog.Logger
	now       func() time.Time
	transport *transport.Client
	store     *session.Store
	cooldown  cooldown.Timer
	machine   *flows.Machine
	navigator *guard.Navigator
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	redis     redis.UniversalClient
	deps      flows.AuthDeps

	closed atomic.Bool
}

// Close flushes pending audit events and releases a redis client dialed by Build.
// Calls made after Close fail with ErrClientClosed.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.audit.Close()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Config returns the validated configuration the client was built with.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

// State is the auth flow position.
func (c *Client) State() AuthState {
	return c.machine.State()
}

// Challenge returns the pending OTP challenge, if any.
func (c *Client) Challenge() (Challenge, bool) {
	return c.machine.Challenge()
}

// Session returns a copy of the authenticated identity.
func (c *Client) Session() (*Session, bool) {
	return c.store.Current()
}

// Loading reports whether the persisted credential has not been restored yet. Guarded
// routes wait while it is true.
func (c *Client) Loading() bool {
	return c.store.Loading()
}

// Navigator is the route guard bound to this client's session.
func (c *Client) Navigator() *guard.Navigator {
	return c.navigator
}

// Transport exposes the gateway for endpoints without a typed wrapper.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// AuditDropped is the number of audit events discarded on a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// AuditDelivered is the number of audit events handed to the sink.
func (c *Client) AuditDelivered() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Delivered()
}

// MetricsSnapshot copies the current counters and histograms.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c.metrics != nil {
		c.metrics.Inc(id)
	}
}

// do is the single entry point of every typed REST call.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.metricInc(MetricRequest)
	if err := c.transport.DoJSON(ctx, method, path, query, in, out); err != nil {
		c.metricInc(MetricRequestFailure)
		return err
	}
	return nil
}

func (c *Client) transportHooks() transport.Hooks {
	return transport.Hooks{
		OnSessionInvalid: func(ctx context.Context, reason transport.InvalidationReason) {
			if reason == transport.ReasonTokenExpired {
				c.metricInc(MetricTokenExpired)
			} else {
				c.metricInc(MetricUnauthorized)
			}
			flows.RunSessionInvalidated(ctx, string(reason), c.deps)
			if c.navigator.RedirectToLogin() {
				c.logger.InfoContext(ctx, "redirected to login", "reason", string(reason))
			}
		},
		OnRetry: func(context.Context, transport.RetryEvent) {
			c.metricInc(MetricRetry)
		},
		OnRetryExhausted: func(ctx context.Context, ev transport.RetryEvent) {
			c.metricInc(MetricRetryExhausted)
			c.emitAudit(ctx, AuditRetryExhausted, false, "", "", ErrTransient, func() map[string]string {
				md := map[string]string{
					"method":   ev.Method,
					"path":     ev.Path,
					"attempts": strconv.Itoa(ev.Attempt + 1),
				}
				if ev.Status != 0 {
					md["status"] = strconv.Itoa(ev.Status)
				}
				return md
			})
		},
		OnAttempt: func(_ context.Context, ev transport.AttemptEvent) {
			c.metricInc(MetricAttempt)
			if c.metrics != nil {
				c.metrics.Observe(MetricRequestLatency, ev.Latency)
			}
		},
	}
}

func (c *Client) authDeps() flows.AuthDeps {
	return flows.AuthDeps{
		API:            authAPI{c: c},
		Machine:        c.machine,
		Cooldown:       c.cooldown,
		ResendCooldown: c.config.OTP.ResendCooldown,
		Now:            c.now,

		SetSession:     c.store.Set,
		ClearSession:   c.store.Clear,
		RestoreSession: c.store.Restore,
		CurrentSession: c.store.Current,

		MetricInc: func(id int) { c.metricInc(MetricID(id)) },
		EmitAudit: c.emitAudit,
		Warn: func(msg string, args ...any) {
			c.logger.Warn(msg, args...)
		},

		Metrics: flows.AuthMetrics{
			OTPIssued:           int(MetricOTPIssued),
			OTPRejected:         int(MetricOTPRejected),
			LoginSuccess:        int(MetricLoginSuccess),
			LoginFailure:        int(MetricLoginFailure),
			RegistrationSuccess: int(MetricRegistrationSuccess),
			RegistrationFailure: int(MetricRegistrationFailure),
			ResendSuccess:       int(MetricOTPResent),
			ResendBlocked:       int(MetricOTPResendBlocked),
			ValidationRejected:  int(MetricValidationRejected),
			Logout:              int(MetricLogout),
			SessionRestored:     int(MetricSessionRestored),
			SessionInvalidated:  int(MetricSessionInvalidated),
		},
		Events: flows.AuthEvents{
			LoginOTPIssued:        AuditLoginOTPIssued,
			RegistrationOTPIssued: AuditRegistrationOTPIssued,
			OTPRejected:           AuditOTPRejected,
			LoginSuccess:          AuditLoginSuccess,
			LoginFailure:          AuditLoginFailure,
			RegistrationSuccess:   AuditRegistrationSuccess,
			RegistrationFailure:   AuditRegistrationFailure,
			OTPResent:             AuditOTPResent,
			ResendBlocked:         AuditOTPResendBlocked,
			Logout:                AuditLogout,
			SessionRestored:       AuditSessionRestored,
			SessionInvalidated:    AuditSessionInvalidated,
		},
	}
}
