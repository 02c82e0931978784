package techhatch

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/techhatch/guard"
	internalaudit "github.com/MrEthical07/techhatch/internal/audit"
	"github.com/MrEthical07/techhatch/internal/cooldown"
	"github.com/MrEthical07/techhatch/internal/flows"
	"github.com/MrEthical07/techhatch/internal/logging"
	"github.com/MrEthical07/techhatch/session"
	"github.com/MrEthical07/techhatch/transport"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a Client. Configure it during initialization, call Build once,
// and discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	httpClient *http.Client
	creds      session.CredentialStore
	auditSink  AuditSink
	logger     *slog.Logger
	now        func() time.Time
	sleep      transport.Sleeper
	history    guard.History
	routes     *guard.Table

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used by the redis credential and cooldown backends.
// Without it Build dials Config.Redis when a redis backend is selected.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the HTTP client. Its Timeout wins over API.Timeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithCredentials overrides the credential backend selected by Config.Credentials.
func (b *Builder) WithCredentials(store session.CredentialStore) *Builder {
	b.creds = store
	return b
}

// WithAuditSink sets the audit destination. Auditing still requires Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger overrides the logger built from Config.Log.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithSleeper replaces the retry backoff wait. Tests use it to skip real delays.
func (b *Builder) WithSleeper(sleep transport.Sleeper) *Builder {
	b.sleep = sleep
	return b
}

// WithHistory sets the location history driven by the route guard. The default is an
// in-memory history starting at "/".
func (b *Builder) WithHistory(history guard.History) *Builder {
	b.history = history
	return b
}

// WithRoutes replaces the default route table.
func (b *Builder) WithRoutes(table *guard.Table) *Builder {
	b.routes = table
	return b
}

// WithMetricsEnabled toggles the counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles per-attempt latency recording.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- REDIS --------
	rdb := b.redis
	ownsRedis := false
	needsRedis := cfg.OTP.CooldownBackend == "redis" ||
		(b.creds == nil && cfg.Credentials.Backend == CredentialsRedis)
	if needsRedis && rdb == nil {
		if cfg.Redis.Addr == "" {
			return nil, ErrRedisRequired
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ownsRedis = true
	}

	// -------- CREDENTIALS --------
	creds := b.creds
	if creds == nil {
		switch cfg.Credentials.Backend {
		case CredentialsFile:
			path := cfg.Credentials.Path
			if path == "" {
				p, err := session.DefaultCredentialsPath()
				if err != nil {
					return nil, err
				}
				path = p
			}
			creds = session.NewFileCredentials(path)
		case CredentialsRedis:
			creds = session.NewRedisCredentials(rdb, cfg.Credentials.RedisKey)
		default:
			creds = session.NewMemoryCredentials()
		}
	}

	// -------- OTP COOLDOWN --------
	var timer cooldown.Timer
	if cfg.OTP.CooldownBackend == "redis" {
		timer = cooldown.NewRedis(rdb, cfg.OTP.RedisPrefix)
	} else {
		timer = cooldown.NewMemory(now)
	}

	store := session.NewStore(creds).WithClock(now)

	routes := b.routes
	if routes == nil {
		routes = guard.DefaultTable()
	}
	history := b.history
	if history == nil {
		history = guard.NewMemoryHistory(guard.PathHome)
	}

	c := &Client{
		config:    cfg,
		logger:    logger,
		now:       now,
		store:     store,
		cooldown:  timer,
		machine:   flows.NewMachine(),
		navigator: guard.NewNavigator(history, routes, store),
		metrics:   NewMetrics(cfg.Metrics),
	}
	if ownsRedis {
		c.redis = rdb
	}

	sink := b.auditSink
	if sink == nil && cfg.Audit.Enabled {
		sink = NewLogSink(logger)
	}
	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		OnDrop: func(ev AuditEvent) {
			logger.Debug("audit event dropped", "event", ev.EventType)
		},
	}, sink)

	// -------- TRANSPORT --------
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}
	tr, err := transport.New(transport.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: httpClient,
		Retry: transport.RetryPolicy{
			Limit:     cfg.Retry.Limit,
			BaseDelay: cfg.Retry.BaseDelay,
		},
		Tokens:    store,
		Logger:    logger,
		Now:       now,
		Sleep:     b.sleep,
		UserAgent: cfg.API.UserAgent,
		Hooks:     c.transportHooks(),
	})
	if err != nil {
		c.audit.Close()
		if ownsRedis {
			_ = rdb.Close()
		}
		return nil, err
	}
	c.transport = tr
	c.deps = c.authDeps()

	b.built = true

	return c, nil
}
